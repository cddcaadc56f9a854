package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"marketdash/internal/api"
	"marketdash/internal/session"
)

func newServeCmd(app *App) *cobra.Command {
	var listen string
	var autoRefresh bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		Long: `Starts a session over the configured asset universe and serves the
dashboard JSON API until interrupted. The first refresh runs immediately;
pass --auto-refresh to keep prices updating on the configured interval.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if autoRefresh {
				app.Config.Refresh.AutoOn = true
			}
			if listen != "" {
				app.Config.API.Listen = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sess := session.NewDefault(app.Config, app.Logger)
			defer sess.Close()

			if err := sess.Start(ctx); err != nil {
				// Prior data stays visible on the API; keep serving.
				output.Warning("Initial load failed: %v", err)
			}

			server := api.NewServer(sess, app.Logger)
			output.Info("Serving dashboard API on %s", app.Config.API.Listen)
			if err := server.ListenAndServe(ctx, app.Config.API.Listen); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&autoRefresh, "auto-refresh", false, "enable periodic refresh")
	return cmd
}

// runOneShot spins up a session, performs one refresh, and hands the session
// to fn. Shared by the one-shot prices and insight commands.
func runOneShot(ctx context.Context, app *App, fn func(*session.Session) error) error {
	sess := session.NewDefault(app.Config, app.Logger)
	defer sess.Close()

	if err := sess.Refresh(ctx); err != nil {
		return err
	}
	return fn(sess)
}
