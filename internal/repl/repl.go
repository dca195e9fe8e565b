// Package repl is the interactive leadscout shell.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/leadscout/leadscout/internal/export"
	"github.com/leadscout/leadscout/internal/session"
	"github.com/leadscout/leadscout/internal/types"
)

// REPL represents the interactive shell
type REPL struct {
	session  *session.Session
	exporter *export.Exporter
	config   Config
	out      io.Writer
	rl       *readline.Instance
	ctx      context.Context
	commands map[string]CommandHandler
}

// CommandHandler handles a specific command
type CommandHandler func(args []string) error

// Config holds REPL configuration
type Config struct {
	Session  *session.Session
	Exporter *export.Exporter

	ExportDir    string
	ExportPrefix string
	ExportFormat export.Format
	DefaultLimit int

	// Out receives all output; defaults to stdout.
	Out io.Writer

	// Confirm asks a yes/no question; defaults to a readline prompt.
	Confirm func(question string) (bool, error)

	// Now is the clock used for export file names.
	Now func() time.Time
}

// New creates a new REPL instance
func New(cfg *Config) (*REPL, error) {
	if cfg.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if cfg.Exporter == nil {
		return nil, fmt.Errorf("exporter is required")
	}
	if cfg.DefaultLimit == 0 {
		cfg.DefaultLimit = types.DefaultLimit
	}
	if cfg.ExportFormat == "" {
		cfg.ExportFormat = export.FormatXLSX
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "."
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	r := &REPL{
		session:  cfg.Session,
		exporter: cfg.Exporter,
		config:   *cfg,
		out:      out,
		ctx:      context.Background(),
		commands: make(map[string]CommandHandler),
	}

	// Register built-in commands
	r.registerCommands()

	return r, nil
}

// Run starts the REPL loop
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("leadscout> "),
		AutoComplete:      r.completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	r.rl = rl
	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				// Ctrl+C at the prompt - just show prompt again
				continue
			} else if errors.Is(err, io.EOF) {
				// Ctrl+D - exit
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(r.out, "%s %v\n", red("Error:"), err)
		}
	}
}

// processInput processes a single line of input
func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	if handler, ok := r.commands[command]; ok {
		return handler(args)
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(r.out, "%s Unknown command %q. Use 'help' for available commands.\n", yellow("Note:"), command)
	return nil
}

// registerCommands registers all built-in commands
func (r *REPL) registerCommands() {
	r.commands["search"] = r.cmdSearch
	r.commands["list"] = r.cmdList
	r.commands["ls"] = r.cmdList
	r.commands["delete"] = r.cmdDelete
	r.commands["rm"] = r.cmdDelete
	r.commands["clear"] = r.cmdClear
	r.commands["export"] = r.cmdExport
	r.commands["history"] = r.cmdHistory
	r.commands["reset"] = r.cmdReset
	r.commands["status"] = r.cmdStatus
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
}

func (r *REPL) completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("search"),
		readline.PcItem("list"),
		readline.PcItem("delete"),
		readline.PcItem("clear"),
		readline.PcItem("export", readline.PcItem("xlsx"), readline.PcItem("csv")),
		readline.PcItem("history"),
		readline.PcItem("reset"),
		readline.PcItem("status"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

// printWelcome prints the welcome message
func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n", cyan("leadscout"))
	fmt.Fprintf(r.out, "%d identifiers in history\n", r.session.HistoryCount())
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'exit' to quit")
	fmt.Fprintln(r.out)
}

// confirm asks a yes/no question, defaulting to no.
func (r *REPL) confirm(question string) (bool, error) {
	if r.config.Confirm != nil {
		return r.config.Confirm(question)
	}
	if r.rl == nil {
		return false, fmt.Errorf("no terminal to confirm on")
	}
	prev := r.rl.Config.Prompt
	r.rl.SetPrompt(question + " [y/N] ")
	defer r.rl.SetPrompt(prev)

	answer, err := r.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return false, nil
		}
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// cmdHelp shows help information
func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"search <industry> | <city> [| limit]", fmt.Sprintf("Find new leads (limit %v, default %d)", types.AllowedLimits, r.config.DefaultLimit)},
		{"list, ls", "Show the current leads"},
		{"delete, rm <id>", "Remove a lead from the current list"},
		{"clear", "Empty the current list (history is kept)"},
		{"export [xlsx|csv]", "Write the current list to a file"},
		{"history", "Show how many companies have been seen"},
		{"reset", "Forget every company seen so far"},
		{"status", "Show session state and the last run"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Exit the shell"},
	}
	for _, cmd := range commands {
		fmt.Fprintf(r.out, "  %-38s %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Press Ctrl+C during a search to cancel it.")
	fmt.Fprintln(r.out)
	return nil
}

// cmdExit exits the REPL
func (r *REPL) cmdExit(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s Goodbye!\n", green("✓"))
	return io.EOF // Signal to exit the loop
}
