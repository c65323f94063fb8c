package sqlite

import (
	"context"
	"database/sql"
)

// schema mirrors the PostgreSQL migrations. Money is kept as TEXT so decimals
// round-trip exactly and instants are unix nanoseconds.
const schema = `
CREATE TABLE IF NOT EXISTS till_sessions (
    session_id     INTEGER PRIMARY KEY AUTOINCREMENT,
    opened_at      INTEGER NOT NULL,
    closed_at      INTEGER,
    opening_float  TEXT    NOT NULL,
    status         TEXT    NOT NULL CHECK (status IN ('OPEN', 'CLOSED')),
    operator       TEXT    NOT NULL,
    cash_in        TEXT    NOT NULL DEFAULT '0',
    cash_out       TEXT    NOT NULL DEFAULT '0',
    qr_in          TEXT    NOT NULL DEFAULT '0',
    credit_in      TEXT    NOT NULL DEFAULT '0',
    total_in       TEXT    NOT NULL DEFAULT '0',
    total_out      TEXT    NOT NULL DEFAULT '0',
    expected_cash  TEXT    NOT NULL DEFAULT '0',
    counted_cash   TEXT    NOT NULL DEFAULT '0',
    variance       TEXT    NOT NULL DEFAULT '0'
);

CREATE UNIQUE INDEX IF NOT EXISTS till_sessions_single_open ON till_sessions (status) WHERE status = 'OPEN';
CREATE INDEX IF NOT EXISTS till_sessions_opened_at ON till_sessions (opened_at DESC, session_id DESC);

CREATE TABLE IF NOT EXISTS movements (
    movement_id     INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id      INTEGER NOT NULL REFERENCES till_sessions (session_id),
    direction       TEXT    NOT NULL CHECK (direction IN ('IN', 'OUT')),
    concept         TEXT    NOT NULL,
    amount          TEXT    NOT NULL,
    method          TEXT,
    reference_kind  TEXT,
    reference_id    INTEGER,
    created_at      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS movements_session ON movements (session_id, movement_id DESC);

CREATE TABLE IF NOT EXISTS products (
    product_id  INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT    NOT NULL UNIQUE COLLATE NOCASE,
    category    TEXT    NOT NULL DEFAULT '',
    price       TEXT    NOT NULL,
    stock       INTEGER NOT NULL DEFAULT 0,
    min_stock   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sales (
    sale_id        INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id     INTEGER NOT NULL REFERENCES till_sessions (session_id),
    total          TEXT    NOT NULL,
    method         TEXT    NOT NULL,
    cash_amount    TEXT    NOT NULL DEFAULT '0',
    qr_amount      TEXT    NOT NULL DEFAULT '0',
    customer       TEXT    NOT NULL DEFAULT '',
    customer_phone TEXT    NOT NULL DEFAULT '',
    created_at     INTEGER NOT NULL,
    created_by     TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS sales_created_at ON sales (created_at);

CREATE TABLE IF NOT EXISTS sale_items (
    sale_id     INTEGER NOT NULL REFERENCES sales (sale_id) ON DELETE CASCADE,
    line_no     INTEGER NOT NULL,
    product_id  INTEGER NOT NULL REFERENCES products (product_id),
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    unit_price  TEXT    NOT NULL,
    subtotal    TEXT    NOT NULL,
    PRIMARY KEY (sale_id, line_no)
);

CREATE TABLE IF NOT EXISTS purchases (
    purchase_id  INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id   INTEGER REFERENCES till_sessions (session_id),
    kind         TEXT    NOT NULL CHECK (kind IN ('GOODS', 'SUPPLIES', 'EXPENSE')),
    total        TEXT    NOT NULL,
    method       TEXT    NOT NULL,
    supplier     TEXT    NOT NULL DEFAULT '',
    description  TEXT    NOT NULL DEFAULT '',
    created_at   INTEGER NOT NULL,
    created_by   TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS purchases_created_at ON purchases (created_at);

CREATE TABLE IF NOT EXISTS purchase_items (
    purchase_id  INTEGER NOT NULL REFERENCES purchases (purchase_id) ON DELETE CASCADE,
    line_no      INTEGER NOT NULL,
    product_id   INTEGER NOT NULL REFERENCES products (product_id),
    quantity     INTEGER NOT NULL CHECK (quantity > 0),
    unit_cost    TEXT    NOT NULL,
    PRIMARY KEY (purchase_id, line_no)
);

CREATE TABLE IF NOT EXISTS credit_accounts (
    credit_id      INTEGER PRIMARY KEY AUTOINCREMENT,
    sale_id        INTEGER NOT NULL UNIQUE REFERENCES sales (sale_id),
    customer       TEXT    NOT NULL,
    customer_phone TEXT    NOT NULL DEFAULT '',
    total          TEXT    NOT NULL,
    paid           TEXT    NOT NULL DEFAULT '0',
    outstanding    TEXT    NOT NULL,
    status         TEXT    NOT NULL CHECK (status IN ('PENDING', 'PARTIAL', 'PAID')),
    opened_at      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS credit_accounts_opened_at ON credit_accounts (opened_at DESC, credit_id DESC);

CREATE TABLE IF NOT EXISTS credit_payments (
    payment_id  INTEGER PRIMARY KEY AUTOINCREMENT,
    credit_id   INTEGER NOT NULL REFERENCES credit_accounts (credit_id),
    session_id  INTEGER REFERENCES till_sessions (session_id),
    amount      TEXT    NOT NULL,
    method      TEXT    NOT NULL,
    notes       TEXT    NOT NULL DEFAULT '',
    created_at  INTEGER NOT NULL,
    created_by  TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS credit_payments_created_at ON credit_payments (created_at);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
