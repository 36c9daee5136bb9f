package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/wrenchworks/torqbill/internal/apikey"
	"github.com/wrenchworks/torqbill/internal/audit"
	"github.com/wrenchworks/torqbill/internal/billing"
	"github.com/wrenchworks/torqbill/internal/clock"
	"github.com/wrenchworks/torqbill/internal/config"
	"github.com/wrenchworks/torqbill/internal/counterparty"
	"github.com/wrenchworks/torqbill/internal/events"
	"github.com/wrenchworks/torqbill/internal/ledger"
	"github.com/wrenchworks/torqbill/internal/migration"
	"github.com/wrenchworks/torqbill/internal/observability/logger"
	"github.com/wrenchworks/torqbill/internal/observability/tracing"
	"github.com/wrenchworks/torqbill/internal/recurring"
	recurringdomain "github.com/wrenchworks/torqbill/internal/recurring/domain"
	recurringworker "github.com/wrenchworks/torqbill/internal/recurring/worker"
	"github.com/wrenchworks/torqbill/internal/seed"
	"github.com/wrenchworks/torqbill/internal/server"
	"github.com/wrenchworks/torqbill/pkg/db"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "torqbill",
		Short:   "Workshop billing backend",
		Version: version,
	}
	root.AddCommand(serveCmd(), migrateCmd(), generateDueCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// baseModules carries the pieces every subcommand needs: config, logging,
// the snowflake node, and the database pool.
func baseModules() fx.Option {
	return fx.Options(
		config.Module,
		logger.Module,
		fx.Provide(func() (*snowflake.Node, error) {
			return snowflake.NewNode(1)
		}),
		db.Module,
	)
}

func migrateAndSeed(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	if err := migration.RunMigrations(sqlDB); err != nil {
		return err
	}
	if cfg.Bootstrap.EnsureDefaultWorkshop {
		return seed.EnsureDefaultWorkshop(conn, node)
	}
	return nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server and recurring worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				baseModules(),
				tracing.Module,
				clock.Module,
				events.Module,
				ledger.Module,
				audit.Module,
				counterparty.Module,
				billing.Module,
				recurring.Module,
				recurringworker.Module,
				apikey.Module,
				fx.Invoke(migrateAndSeed),
				server.Module,
			)
			app.Run()
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(fx.Options(
				baseModules(),
				fx.Invoke(migrateAndSeed),
			))
		},
	}
}

func generateDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-due",
		Short: "Run one recurring bill generation sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(fx.Options(
				baseModules(),
				clock.Module,
				events.Module,
				recurring.Module,
				fx.Invoke(func(svc recurringdomain.Service, clk clock.Clock, cfg config.Config) error {
					result, err := svc.GenerateDue(cmd.Context(), clk.Now(), cfg.Recurring.BatchSize)
					if err != nil {
						return err
					}
					fmt.Printf("claimed=%d generated=%d skipped=%d expired=%d\n",
						result.Claimed, result.Generated, result.Skipped, result.Expired)
					return nil
				}),
			))
		},
	}
}

// runOneShot starts the fx graph, lets the invokes run, then tears it down.
func runOneShot(opts fx.Option) error {
	app := fx.New(opts)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancelStop()
	return app.Stop(stopCtx)
}
