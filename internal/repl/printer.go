package repl

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/leadscout/leadscout/internal/events"
	"github.com/leadscout/leadscout/internal/types"
)

// Printer renders session events as progress lines. It implements
// session.Observer.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewPrinter returns a Printer writing to out. Without verbose, only state
// changes, warnings and errors are shown.
func NewPrinter(out io.Writer, verbose bool) *Printer {
	return &Printer{out: out, verbose: verbose}
}

// OnEvent prints one event.
func (p *Printer) OnEvent(ev *events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	gray := color.New(color.FgHiBlack).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	// run_failed carries the reason; the error transition itself is not shown
	if ev.Type == events.EventTypeStateChange {
		data, err := ev.GetStateChangeData()
		if err == nil {
			switch types.SessionState(data.To) {
			case types.StateSearching:
				fmt.Fprintf(p.out, "%s\n", gray("  discovering..."))
			case types.StateValidating:
				fmt.Fprintf(p.out, "%s\n", gray("  validating..."))
			}
		}
		return
	}

	switch ev.Severity {
	case events.SeverityError:
		fmt.Fprintf(p.out, "%s %s\n", red("✗"), ev.Message)
	case events.SeverityWarning:
		fmt.Fprintf(p.out, "%s %s\n", yellow("⚠"), ev.Message)
	default:
		if p.verbose {
			fmt.Fprintf(p.out, "%s\n", gray("  "+detail(ev)))
		}
	}
}

// detail renders the typed payload of an info event, falling back to the
// event message.
func detail(ev *events.Event) string {
	if ev.Data == nil {
		return ev.Message
	}
	switch ev.Type {
	case events.EventTypeDeduplicationCompleted:
		if d, err := ev.GetDeduplicationCompletedData(); err == nil {
			s := fmt.Sprintf("kept %d of %d (%d seen before", d.Kept, d.Candidates, d.SeenBefore)
			if d.WithinBatchDuplicates > 0 {
				s += fmt.Sprintf(", %d repeats", d.WithinBatchDuplicates)
			}
			return s + ")"
		}
	case events.EventTypeValidationCompleted:
		if d, err := ev.GetValidationCompletedData(); err == nil {
			return fmt.Sprintf("validated %d of %d, %d status changes", d.Matched, d.Total, d.Changed)
		}
	case events.EventTypeHistoryUpdated:
		if d, err := ev.GetHistoryUpdatedData(); err == nil {
			return fmt.Sprintf("history +%d (total %d)", d.Added, d.Total)
		}
	}
	return ev.Message
}

// PrintLeads writes leads as an aligned table.
func PrintLeads(out io.Writer, leads []*types.Lead) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tIDENTIFIER\tPHONE\tEMAIL\tSTATUS\tUPDATED")
	for _, l := range leads {
		status := string(l.Status)
		switch l.Status {
		case types.StatusActive:
			status = green(status)
		case types.StatusInactive:
			status = red(status)
		}
		updated := ""
		if !l.LastUpdated.IsZero() {
			updated = l.LastUpdated.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, orDash(truncate(l.Name, 40)), orDash(l.Identifier), orDash(l.Phone), orDash(l.Email), status, updated)
	}
	w.Flush()
	fmt.Fprintf(out, "\n%d leads\n", len(leads))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}
