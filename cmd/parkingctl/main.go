package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Parking/config"
	"Parking/internal/domain/credit"
	appfx "Parking/internal/fx"
	"Parking/internal/infrastructure"
	"Parking/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parkingctl",
		Short:         "Operational commands for the parking back end",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSweepCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Init(cfg)
			cfg.Database.AutoMigrate = false

			db, err := infrastructure.NewDb(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			return infrastructure.Migrate(db)
		},
	}
}

func newSweepCmd() *cobra.Command {
	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Run a credit sweep once, outside the scheduler",
	}

	var force bool
	charges := &cobra.Command{
		Use:   "charges",
		Short: "Charge auto-charge accounts that are due this month",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCredit(cmd.Context(), func(ctx context.Context, svc *credit.Service) error {
				res, err := svc.SweepDueAccounts(ctx, time.Now(), force)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	charges.Flags().BoolVar(&force, "force", false, "charge even if the account is not due or was already charged this month")

	notifications := &cobra.Command{
		Use:   "notifications",
		Short: "Re-evaluate balance alerts for every active account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCredit(cmd.Context(), func(ctx context.Context, svc *credit.Service) error {
				res, err := svc.CheckNotifications(ctx, time.Now(), force)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	notifications.Flags().BoolVar(&force, "force", false, "ignore the 24h duplicate window")

	sweep.AddCommand(charges, notifications)
	return sweep
}

// withCredit boots the core graph, hands the credit service to fn and tears
// everything down afterwards.
func withCredit(ctx context.Context, fn func(context.Context, *credit.Service) error) error {
	var svc *credit.Service
	app := fx.New(
		appfx.CoreModule,
		fx.NopLogger,
		fx.Populate(&svc),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.Stop(stopCtx); err != nil {
			logger.Warn().Err(err).Msg("shutdown incomplete")
		}
	}()

	return fn(ctx, svc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
