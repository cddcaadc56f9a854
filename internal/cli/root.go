package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"marketdash/internal/config"
	"marketdash/internal/logging"
	"marketdash/pkg/utils"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "marketdash",
		Short: "MarketDash - live crypto market dashboard",
		Long: `MarketDash serves live cryptocurrency prices, one-shot price alerts,
and AI-generated market summaries.

Run 'marketdash serve' to start the dashboard API, or use 'prices' and
'insight' for one-shot output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			} else {
				logging.SetInfoLevel()
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/marketdash)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newPricesCmd(app))
	rootCmd.AddCommand(newInsightCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("MarketDash v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Market Data")
	output.Printf("  Base URL:   %s\n", cfg.Market.BaseURL)
	output.Printf("  Cache TTL:  %s\n", cfg.Market.CacheTTL)
	output.Printf("  Assets:     %d tracked\n", len(cfg.Market.Assets))
	output.Println()

	output.Bold("Refresh")
	output.Printf("  Interval:   %s\n", cfg.Refresh.Interval)
	output.Printf("  Auto on:    %v\n", cfg.Refresh.AutoOn)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Display TTL: %s\n", cfg.Notifications.DisplayTTL)
	output.Printf("  Webhook:     %v\n", cfg.Notifications.Webhook.Enabled)
	output.Println()

	output.Bold("Insight")
	output.Printf("  Model:      %s\n", cfg.Insight.Model)
	output.Printf("  Language:   %s\n", cfg.Insight.Language)
	output.Println()

	output.Bold("API")
	output.Printf("  Listen:     %s\n", cfg.API.Listen)
	output.Println()

	output.Bold("Credentials")
	if cfg.Credentials.OpenAI.APIKey == "" {
		output.Printf("  OpenAI key: not configured\n")
	} else {
		output.Printf("  OpenAI key: %s\n", utils.MaskCredential(cfg.Credentials.OpenAI.APIKey))
	}

	return nil
}
