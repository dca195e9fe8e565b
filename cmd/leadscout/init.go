package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/leadscout/leadscout/internal/config"
)

const configTemplate = `# leadscout configuration. Every setting is optional.
# LEADSCOUT_* environment variables override this file.

provider: anthropic          # anthropic or gemini
# models:
#   discovery: claude-sonnet-4-5-20250929
#   validation: claude-3-5-haiku-20241022
max_searches: 5

limits:
  timeout: 2m
  min_interval: 1s
  circuit_breaker: true

discovery:
  default_limit: 50          # 50, 100 or 200
  max_excluded_in_prompt: 100
  within_batch_dedup: false # also drop repeats inside one answer

market:
  country: Bulgaria
  demonym: Bulgarian
  phone_prefixes: ["+359", "08"]
  registry_name: EIK
  registry_label: Unified Identification Code

storage:
  backend: sqlite            # sqlite, file or memory
  path: leadscout.db         # relative to this directory

export:
  dir: .
  prefix: B2B_Leads
  format: xlsx               # xlsx or csv
  labels: en                 # en or bg
`

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .leadscout/ with a commented config file",
	Long: `Create the leadscout directory (./.leadscout by default) with a
config.yaml listing every setting and its default.

Example:
  cd ~/leads/bulgaria
  leadscout init`,
	// Runs before a config exists, so skip the root config loading
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
	Run: func(cmd *cobra.Command, args []string) {
		dir := configDir
		if dir == "" {
			d, err := config.Dir()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			dir = d
		}

		path := filepath.Join(dir, config.FileName)
		if _, err := os.Stat(path); err == nil && !initForce {
			fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
			os.Exit(1)
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create %s: %v\n", dir, err)
			os.Exit(1)
		}
		if err := os.WriteFile(path, []byte(configTemplate), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write config: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("\n%s Initialized leadscout\n\n", green("✓"))
		fmt.Printf("  Config: %s\n", cyan(path))
		fmt.Println()
		fmt.Println("Next: leadscout auth set anthropic, then leadscout shell")
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config.yaml")
	rootCmd.AddCommand(initCmd)
}
