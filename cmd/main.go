package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yungbote/practice-backend/internal/app"
	"github.com/yungbote/practice-backend/internal/platform/logger"
	"github.com/yungbote/practice-backend/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "practice-backend",
		Short:         "Music practice tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newResetGoalsCmd())
	root.AddCommand(newLeaderboardCmd())
	return root
}

// withApp builds the full application, runs fn, and shuts it down.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	log, err := app.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()
	a, err := app.New(ctx, log)
	if err != nil {
		log.Error("app init failed", "error", err)
		return err
	}
	defer a.Shutdown(context.WithoutCancel(ctx))
	return fn(a)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, SSE fan-out and scheduled jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, func(a *app.App) error { return serve(ctx, a) })
		},
	}
}

func serve(ctx context.Context, a *app.App) error {
	if err := a.Start(); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.Log.Info("shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Cfg.ShutdownTimeout)
	defer cancel()
	a.Shutdown(shutdownCtx)
	return <-errCh
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			defer log.Sync()
			return migrate(log)
		},
	}
}

func migrate(log *logger.Logger) error {
	cfg := app.LoadConfig(log)
	if err := cfg.Validate(); err != nil {
		return err
	}
	dbs, err := app.OpenDatabase(log, cfg)
	if err != nil {
		return err
	}
	defer dbs.Close()
	log.Info("schema migrated", "driver", dbs.Driver())
	return nil
}

func newResetGoalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-goals",
		Short: "Reset stale daily and weekly goals for every user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.Services.Goals.ResetStaleGoalsForAllUsers(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reset daily=%d weekly=%d\n", res.Daily, res.Weekly)
				return nil
			})
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard <weekly|monthly|allTime>",
		Short: "Print the global leaderboard for a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, ok := services.ParsePeriod(args[0])
			if !ok {
				return fmt.Errorf("unknown period %q", args[0])
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				rows, err := a.Services.Leaderboard.TopPerformers(cmd.Context(), period, limit)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "RANK\tPLAYER\tMINUTES\tSESSIONS")
				for _, r := range rows {
					_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", r.Rank, r.UserName, r.TotalTime, r.Sessions)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of rows")
	return cmd
}
