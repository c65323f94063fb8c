package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/core/services"
	"github.com/SscSPs/licoreria_pos/internal/dto"
	"github.com/SscSPs/licoreria_pos/internal/notify"
	"github.com/SscSPs/licoreria_pos/internal/platform/config"
	"github.com/SscSPs/licoreria_pos/internal/platform/storage"
	"github.com/SscSPs/licoreria_pos/internal/utils"
	"github.com/SscSPs/licoreria_pos/pkg/logging"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

var commands = []subcommands.Command{
	&statusCmd{},
	&historyCmd{},
	&summaryCmd{},
	&closeCmd{},
}

// out is where command results go; tests swap it.
var out io.Writer = os.Stdout

// app is the configured service layer a command works against.
type app struct {
	cfg      *config.Config
	services *portssvc.ServiceContainer
	close    func()
}

// openApp wires config, storage and services the same way the server does,
// without live event delivery.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.IsProduction)
	repos, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:      cfg,
		services: services.NewServiceContainer(cfg, repos, notify.Nop{}, nil),
		close:    repos.Close,
	}, nil
}

func fail(err error) subcommands.ExitStatus {
	slog.Error("tillctl failed", slog.String("error", err.Error()))
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}

func printSummary(w io.Writer, s *domain.Summary, currency string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(label string, amount decimal.Decimal) {
		fmt.Fprintf(tw, "%s\t%s\n", label, utils.FormatMoney(amount, currency))
	}
	fmt.Fprintf(tw, "Session\t#%d\n", s.SessionID)
	row("Opening float", s.OpeningFloat)
	row("Cash in", s.CashIn)
	row("QR in", s.QRIn)
	row("Mixed in", s.MixedIn)
	row("Credit in", s.CreditIn)
	row("Other in", s.OtherIn)
	row("Cash out", s.CashOut)
	row("Other out", s.OtherOut)
	row("Total in", s.TotalIn)
	row("Total out", s.TotalOut)
	row("Balance", s.Balance)
	row("Expected cash", s.ExpectedCash)
	fmt.Fprintf(tw, "Movements\t%d (sales %d, purchases %d, credit payments %d, withdrawals %d)\n",
		s.MovementCount, s.SaleCount, s.PurchaseCount, s.CreditPaymentCount, s.WithdrawalCount)
	tw.Flush()
}

type statusCmd struct{}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show the open session and its live summary" }
func (*statusCmd) Usage() string {
	return `tillctl status

  Prints the open till session with its expected cash, or says the till is closed.
`
}
func (*statusCmd) SetFlags(*flag.FlagSet) {}

func (*statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.close()

	session, err := a.services.Till.GetOpenSession(ctx)
	if err != nil {
		return fail(err)
	}
	if session == nil {
		fmt.Fprintln(out, "The till is closed.")
		return subcommands.ExitSuccess
	}
	summary, err := a.services.Reconciliation.Summarize(ctx, session.SessionID)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(out, "Open since %s by %s\n", session.OpenedAt.In(a.cfg.StoreLocation).Format(time.DateTime), session.Operator)
	printSummary(out, summary, a.cfg.CurrencyCode)
	return subcommands.ExitSuccess
}

type historyCmd struct {
	from  string
	to    string
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list closed sessions, newest first" }
func (*historyCmd) Usage() string {
	return `tillctl history [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-limit n]

  Lists closed sessions opened within the inclusive day range, following
  every page.
`
}

func (h *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&h.from, "from", "", "First opening day (YYYY-MM-DD).")
	f.StringVar(&h.to, "to", "", "Last opening day (YYYY-MM-DD).")
	f.IntVar(&h.limit, "limit", 50, "Sessions fetched per page.")
}

func (h *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.close()

	params := dto.ListSessionsParams{Limit: h.limit}
	if params.From, err = parseDay(h.from, a.cfg.StoreLocation); err != nil {
		return fail(err)
	}
	if params.To, err = parseDay(h.to, a.cfg.StoreLocation); err != nil {
		return fail(err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\tOpened\tClosed\tExpected\tCounted\tVariance\tOperator\t")
	for {
		sessions, next, err := a.services.Till.ListClosedSessions(ctx, params)
		if err != nil {
			return fail(err)
		}
		for _, s := range sessions {
			closedAt := ""
			if s.ClosedAt != nil {
				closedAt = s.ClosedAt.In(a.cfg.StoreLocation).Format(time.DateTime)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				s.SessionID,
				s.OpenedAt.In(a.cfg.StoreLocation).Format(time.DateTime),
				closedAt,
				utils.FormatMoney(s.Totals.ExpectedCash, a.cfg.CurrencyCode),
				utils.FormatMoney(s.Totals.CountedCash, a.cfg.CurrencyCode),
				utils.FormatMoney(s.Totals.Variance, a.cfg.CurrencyCode),
				s.Operator)
		}
		if next == nil {
			break
		}
		params.NextToken = next
	}
	tw.Flush()
	return subcommands.ExitSuccess
}

func parseDay(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return &t, nil
}

type summaryCmd struct {
	sessionID int64
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "summarize one session" }
func (*summaryCmd) Usage() string {
	return `tillctl summary -id <session>

  Folds the movements of any session, open or closed.
`
}

func (s *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&s.sessionID, "id", 0, "Session ID.")
}

func (s *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if s.sessionID <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.close()

	summary, err := a.services.Reconciliation.Summarize(ctx, s.sessionID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return fail(fmt.Errorf("session %d not found", s.sessionID))
	}
	if err != nil {
		return fail(err)
	}
	printSummary(out, summary, a.cfg.CurrencyCode)
	return subcommands.ExitSuccess
}

type closeCmd struct {
	counted  string
	operator string
}

func (*closeCmd) Name() string     { return "close" }
func (*closeCmd) Synopsis() string { return "close the open session against counted cash" }
func (*closeCmd) Usage() string {
	return `tillctl close -counted <amount> -operator <name>

  Closes the open session, freezing its totals, and prints the variance.
`
}

func (c *closeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.counted, "counted", "", "Cash counted in the drawer.")
	f.StringVar(&c.operator, "operator", "", "Operator closing the till.")
}

func (c *closeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	counted, err := decimal.NewFromString(c.counted)
	if err != nil || c.operator == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.close()

	session, err := a.services.Till.GetOpenSession(ctx)
	if err != nil {
		return fail(err)
	}
	if session == nil {
		return fail(apperrors.ErrNoOpenSession)
	}
	result, err := a.services.Reconciliation.CloseSession(ctx, session.SessionID, counted, c.operator)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(out, "Closed session #%d\n", result.Session.SessionID)
	fmt.Fprintf(out, "Expected %s, counted %s, variance %s\n",
		utils.FormatMoney(result.Totals.ExpectedCash, a.cfg.CurrencyCode),
		utils.FormatMoney(result.Totals.CountedCash, a.cfg.CurrencyCode),
		utils.FormatMoney(result.Totals.Variance, a.cfg.CurrencyCode))
	return subcommands.ExitSuccess
}

type tokenCmd struct {
	operator string
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "mint an operator token for the API" }
func (*tokenCmd) Usage() string {
	return `tillctl token -operator <name>

  Prints a bearer token signed with JWT_SECRET whose subject is the operator.
`
}

func (t *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&t.operator, "operator", "", "Operator the token is issued to.")
}

func (t *tokenCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if t.operator == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fail(err)
	}
	token, err := utils.GenerateJWT(t.operator, cfg.JWTSecret, cfg.JWTExpiryDuration, cfg.JWTIssuer)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(out, token)
	return subcommands.ExitSuccess
}
