package repl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/leadscout/leadscout/internal/export"
	"github.com/leadscout/leadscout/internal/types"
)

// ParseSearch parses "industry | city [| limit]". A trailing number after
// the city is also accepted as the limit ("construction | Sofia 100").
func ParseSearch(line string, defaultLimit int) (types.SearchFilters, error) {
	parts := strings.Split(line, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return types.SearchFilters{}, fmt.Errorf("usage: search <industry> | <city> [| limit]")
	}

	filters := types.SearchFilters{
		Industry: strings.TrimSpace(parts[0]),
		City:     strings.TrimSpace(parts[1]),
		Limit:    defaultLimit,
	}

	if len(parts) == 3 {
		n, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return types.SearchFilters{}, fmt.Errorf("invalid limit %q", strings.TrimSpace(parts[2]))
		}
		filters.Limit = n
	} else if fields := strings.Fields(filters.City); len(fields) > 1 {
		if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
			filters.Limit = n
			filters.City = strings.Join(fields[:len(fields)-1], " ")
		}
	}

	if err := filters.Validate(); err != nil {
		return types.SearchFilters{}, err
	}
	return filters, nil
}

// cmdSearch runs one discovery pipeline. Ctrl+C cancels it.
func (r *REPL) cmdSearch(args []string) error {
	filters, err := ParseSearch(strings.Join(args, " "), r.config.DefaultLimit)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(r.ctx, os.Interrupt)
	defer stop()

	gray := color.New(color.FgHiBlack).SprintFunc()
	fmt.Fprintf(r.out, "%s\n", gray(fmt.Sprintf("Searching %d %s companies in %s (Ctrl+C to cancel)...",
		filters.Limit, filters.Industry, filters.City)))

	searchErr := r.session.Search(ctx, filters)
	if searchErr != nil && errors.Is(ctx.Err(), context.Canceled) && r.ctx.Err() == nil {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(r.out, "%s Search cancelled\n", yellow("⚠"))
		return nil
	}
	if searchErr != nil {
		return searchErr
	}

	if run := r.session.LastRun(); run != nil {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(r.out, "%s %s\n", green("✓"), run.String())
	}
	return nil
}

// cmdList shows the working set
func (r *REPL) cmdList(args []string) error {
	leads := r.session.Leads()
	if len(leads) == 0 {
		fmt.Fprintln(r.out, "No leads. Run 'search <industry> | <city>' first.")
		return nil
	}
	PrintLeads(r.out, leads)
	return nil
}

// cmdDelete removes one lead from the working set
func (r *REPL) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <id>")
	}
	if !r.session.DeleteLead(args[0]) {
		return fmt.Errorf("no lead with id %s", args[0])
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Removed %s\n", green("✓"), args[0])
	return nil
}

// cmdClear empties the working set
func (r *REPL) cmdClear(args []string) error {
	n := len(r.session.Leads())
	r.session.ClearLeads()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Cleared %d leads (history kept)\n", green("✓"), n)
	return nil
}

// cmdExport writes the working set to a file
func (r *REPL) cmdExport(args []string) error {
	format := r.config.ExportFormat
	if len(args) > 0 {
		f, err := export.ParseFormat(args[0])
		if err != nil {
			return err
		}
		format = f
	}

	path, err := r.exporter.ToFile(r.config.ExportDir, r.config.ExportPrefix, r.session.Leads(), format, r.config.Now())
	if errors.Is(err, export.ErrNothingToExport) {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(r.out, "%s Nothing to export\n", yellow("⚠"))
		return nil
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Exported %d leads to %s\n", green("✓"), len(r.session.Leads()), path)
	return nil
}

// cmdHistory shows the History size
func (r *REPL) cmdHistory(args []string) error {
	fmt.Fprintf(r.out, "%d companies seen so far\n", r.session.HistoryCount())
	return nil
}

// cmdReset forgets History after confirmation ("reset -y" skips it)
func (r *REPL) cmdReset(args []string) error {
	skip := len(args) > 0 && (args[0] == "-y" || args[0] == "--yes")
	if !skip {
		ok, err := r.confirm(fmt.Sprintf("Forget all %d companies seen so far?", r.session.HistoryCount()))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(r.out, "Reset cancelled")
			return nil
		}
	}

	if err := r.session.ResetHistory(r.ctx); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s History cleared\n", green("✓"))
	return nil
}

// cmdStatus shows session state and the last run
func (r *REPL) cmdStatus(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(r.out, "\n%s\n\n", cyan("Session Status"))
	fmt.Fprintf(r.out, "  State:    %s\n", r.session.State())
	fmt.Fprintf(r.out, "  Leads:    %d\n", len(r.session.Leads()))
	fmt.Fprintf(r.out, "  History:  %d\n", r.session.HistoryCount())
	if msg := r.session.LastError(); msg != "" {
		fmt.Fprintf(r.out, "  Error:    %s\n", red(msg))
	}
	if run := r.session.LastRun(); run != nil {
		fmt.Fprintf(r.out, "  Last run: %s | %s: %s\n", run.Filters.Industry, run.Filters.City, run.String())
	}
	fmt.Fprintln(r.out)
	return nil
}
