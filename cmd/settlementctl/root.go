package main

import (
	"context"

	"github.com/SscSPs/settlement_engine/internal/core/services"
	portssvc "github.com/SscSPs/settlement_engine/internal/core/ports/services"
	"github.com/SscSPs/settlement_engine/internal/platform/config"
	"github.com/SscSPs/settlement_engine/internal/platform/lock"
	"github.com/SscSPs/settlement_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/settlement_engine/pkg/database"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "settlementctl",
		Short: "Operator tooling for the settlement engine",
		Long: `settlementctl runs schema migrations and balance maintenance against the
settlement database configured through PGSQL_URL (or a .env file).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newBalancesCmd())
	return root
}

// openLedger builds the ledger service for one command run; the returned func releases it.
var openLedger = openServices

// openServices connects to the database and builds the ledger service.
func openServices(ctx context.Context) (portssvc.LedgerSvcFacade, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		return nil, nil, err
	}
	container := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(pool), lock.NoopLocker{}, nil)
	return container.Ledger, pool.Close, nil
}
