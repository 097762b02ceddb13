package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"monotributo/internal/backend"
	"monotributo/internal/cli"
	"monotributo/internal/config"
	"monotributo/internal/services"
	"monotributo/internal/storage"
)

var version = "1.0.0"

// app carries the state shared by every subcommand.
type app struct {
	out     io.Writer
	session string

	logger  *slog.Logger
	store   backend.Backend
	cleanup backend.CleanupFunc
	repo    *storage.Repository
}

// use wires the commands to an already open store.
func (a *app) use(store backend.Backend) {
	a.store = store
	a.repo = storage.NewRepository(store)
}

func (a *app) open(ctx context.Context, logLevel string) error {
	if a.logger == nil {
		a.logger = cli.SetupLogger(logLevel).Logger
	}
	if a.repo != nil {
		return nil
	}
	cli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	res, err := cli.OpenBackend(ctx, a.logger, cfg)
	if err != nil {
		return err
	}
	a.use(res.Backend)
	a.cleanup = res.Cleanup
	return nil
}

func (a *app) close() error {
	if a.cleanup == nil {
		return nil
	}
	return a.cleanup()
}

func (a *app) scope(clientID string) storage.Scope {
	return storage.Scope{SessionEmail: a.session, ClientID: clientID}
}

func (a *app) invoices() *services.InvoiceService {
	return services.NewInvoiceService(a.repo, a.store, nil)
}

func newRootCmd(a *app) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Monotributo ledger tool",
		Long: `ledgerctl works on the same storage as the monotributo server.

It imports ARCA invoice exports (CSV, fixed-width TXT, XLSX) into a client's
ledger and prints totals, category usage and the public report.

Storage is selected with DATA_BACKEND (memory or sqlite) and SQLITE_DB_PATH.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.session = strings.ToLower(strings.TrimSpace(a.session))
			return a.open(cmd.Context(), logLevel)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVarP(&a.session, "session", "s", "", "account email that owns the clients")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newClientsCmd(a),
		newImportCmd(a),
		newListCmd(a),
		newSummaryCmd(a),
		newReportCmd(a),
		newCategoriesCmd(a),
	)
	return root
}

func requireSession(a *app) error {
	if a.session == "" {
		return fmt.Errorf("--session is required")
	}
	return nil
}
