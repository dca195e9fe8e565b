package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/leadscout/leadscout/internal/ai"
	"github.com/leadscout/leadscout/internal/secrets"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("Configuration"))
		fmt.Printf("  Provider:        %s\n", cfg.Provider)
		fmt.Printf("  Models:          discovery=%s validation=%s\n", orDefault(cfg.DiscoveryModel), orDefault(cfg.ValidationModel))
		fmt.Printf("  Web searches:    %d per discovery\n", cfg.MaxSearches)
		fmt.Printf("  Call timeout:    %v (min interval %v, circuit breaker %t)\n",
			cfg.Gate.Timeout, cfg.Gate.MinInterval, cfg.Gate.CircuitBreakerEnabled)
		fmt.Printf("  Default limit:   %d\n", cfg.DefaultLimit)
		fmt.Printf("  Prompt excludes: up to %d identifiers\n", cfg.MaxExcludedInPrompt)
		fmt.Printf("  Batch dedup:     %t\n", cfg.WithinBatchDedup)
		fmt.Printf("  Market:          %s (%s, phones %v)\n", cfg.Market.Country, cfg.Market.RegistryName, cfg.Market.PhonePrefixes)
		fmt.Printf("  History:         %s %s\n", cfg.StorageBackend, cfg.StoragePath)
		fmt.Printf("  Export:          %s/%s_<date>.%s (labels %s)\n", cfg.ExportDir, cfg.ExportPrefix, cfg.ExportFormat, cfg.ExportLabels)

		if _, source, err := secrets.ResolveAPIKey(cfg.Provider, apiKeyFlag); err != nil {
			fmt.Printf("  API key:         %s\n", yellow("not set (" + ai.APIKeyEnv(cfg.Provider) + " or 'leadscout auth set')"))
		} else {
			fmt.Printf("  API key:         %s\n", gray("from "+string(source)))
		}
		fmt.Println()
	},
}

func orDefault(s string) string {
	if s == "" {
		return "default"
	}
	return s
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
