package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leadscout/leadscout/internal/config"
)

var (
	configDir    string
	dbPath       string
	providerFlag string
	modelFlag    string
	apiKeyFlag   string
	verbose      bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "leadscout",
	Short: "Find new B2B leads without ever seeing the same company twice",
	Long: `leadscout asks a web-grounded AI model for companies in an industry and
city, drops every company it has returned before, checks the rest and lets
you export them to Excel or CSV.

Companies are remembered by their registry identifier in .leadscout/ in the
current directory.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)

		loaded, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ./.leadscout or $LEADSCOUT_HOME)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "history database path")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "AI provider: anthropic or gemini")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "model for both discovery and validation")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "API key (default: environment, then OS keyring)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig layers defaults, the config file, the environment and flags.
func loadConfig() (*config.Config, error) {
	dir := configDir
	if dir == "" {
		d, err := config.Dir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	c, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	if providerFlag != "" {
		c.Provider = providerFlag
	}
	if modelFlag != "" {
		c.DiscoveryModel = modelFlag
		c.ValidationModel = modelFlag
	}
	if dbPath != "" {
		c.StoragePath = dbPath
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}
