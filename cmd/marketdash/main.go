package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"marketdash/internal/cli"
	"marketdash/internal/config"
	"marketdash/internal/logging"
)

// configDirFromArgs pre-scans the arguments for the --config flag, which has
// to be honored before cobra parses anything because the config file feeds
// the command construction itself. Both "--config DIR" and "--config=DIR"
// are accepted.
func configDirFromArgs(args []string) string {
	configDir := ""
	for i, arg := range args {
		switch {
		case arg == "--config" && i+1 < len(args):
			configDir = args[i+1]
		case strings.HasPrefix(arg, "--config="):
			configDir = strings.TrimPrefix(arg, "--config=")
		}
	}
	return configDir
}

func main() {
	// A local .env is optional; environment variables win over config files.
	_ = godotenv.Load()

	cfg, err := config.Load(configDirFromArgs(os.Args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger()

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
