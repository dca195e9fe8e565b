package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/leadscout/leadscout/internal/export"
	"github.com/leadscout/leadscout/internal/repl"
	"github.com/leadscout/leadscout/internal/types"
)

var (
	searchIndustry string
	searchCity     string
	searchLimit    int
	searchExport   bool
	searchFormat   string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the new leads",
	Long: `Run one discovery and validation pass for an industry and city.

Companies already in history are never shown again. New companies are added
to history once the run completes.

Example:
  leadscout search --industry construction --city Sofia
  leadscout search --industry "web design" --city Plovdiv --limit 100 --export --format csv`,
	Run: func(cmd *cobra.Command, args []string) {
		limit := searchLimit
		if limit == 0 {
			limit = cfg.DefaultLimit
		}
		filters := types.SearchFilters{Industry: searchIndustry, City: searchCity, Limit: limit}
		if err := filters.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		format := cfg.ExportFormat
		if searchFormat != "" {
			format = searchFormat
		}
		exportFormat, err := export.ParseFormat(format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openSession(ctx, repl.NewPrinter(os.Stdout, verbose))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer a.close()

		gray := color.New(color.FgHiBlack).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s\n", gray(fmt.Sprintf("Searching %d %s companies in %s (%d already seen)...",
			filters.Limit, filters.Industry, filters.City, a.session.HistoryCount())))

		if err := a.session.Search(ctx, filters); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			a.close()
			os.Exit(1)
		}

		leads := a.session.Leads()
		fmt.Println()
		if len(leads) > 0 {
			repl.PrintLeads(os.Stdout, leads)
		}
		if run := a.session.LastRun(); run != nil {
			fmt.Printf("\n%s %s\n", green("✓"), run.String())
		}

		if !searchExport {
			return
		}
		exp, err := cfg.Exporter()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			a.close()
			os.Exit(1)
		}
		path, err := exp.ToFile(cfg.ExportDir, cfg.ExportPrefix, leads, exportFormat, time.Now())
		if errors.Is(err, export.ErrNothingToExport) {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Printf("%s Nothing to export\n", yellow("⚠"))
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: export failed: %v\n", err)
			a.close()
			os.Exit(1)
		}
		fmt.Printf("%s Exported %d leads to %s\n", green("✓"), len(leads), path)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchIndustry, "industry", "", "industry to search (required)")
	searchCmd.Flags().StringVar(&searchCity, "city", "", "city to search (required)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, fmt.Sprintf("results to request, one of %v (default from config)", types.AllowedLimits))
	searchCmd.Flags().BoolVar(&searchExport, "export", false, "export the new leads after the run")
	searchCmd.Flags().StringVar(&searchFormat, "format", "", "export format: xlsx or csv (default from config)")
	_ = searchCmd.MarkFlagRequired("industry")
	_ = searchCmd.MarkFlagRequired("city")
	rootCmd.AddCommand(searchCmd)
}
