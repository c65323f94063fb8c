package repositories

import (
	"context"
)

// TxFunc is a unit of work executed inside one storage transaction.
type TxFunc func(ctx context.Context, tx Tx) error

// TransactionManager runs units of work atomically. The transaction is
// committed when fn returns nil and rolled back otherwise.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// Tx is every write capability available inside a transaction.
type Tx interface {
	LedgerTx
	CommerceTx
}
