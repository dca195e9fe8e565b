package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leadscout/leadscout/internal/export"
	"github.com/leadscout/leadscout/internal/repl"
)

var shellCmd = &cobra.Command{
	Use:     "shell",
	Aliases: []string{"repl"},
	Short:   "Start the interactive shell",
	Long: `Start an interactive shell that keeps the current lead list between
searches. Type 'help' in the shell for available commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		a, err := openSession(ctx, repl.NewPrinter(os.Stdout, verbose))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer a.close()

		exp, err := cfg.Exporter()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		format, err := export.ParseFormat(cfg.ExportFormat)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		r, err := repl.New(&repl.Config{
			Session:      a.session,
			Exporter:     exp,
			ExportDir:    cfg.ExportDir,
			ExportPrefix: cfg.ExportPrefix,
			ExportFormat: format,
			DefaultLimit: cfg.DefaultLimit,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create shell: %v\n", err)
			os.Exit(1)
		}

		if err := r.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			a.close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
