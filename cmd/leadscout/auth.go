package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/leadscout/leadscout/internal/secrets"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API keys in the OS keyring",
}

var authSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Store an API key (read from the terminal or stdin)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		provider := args[0]
		key, err := readKey(provider)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := secrets.Store(provider, key); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Stored %s key %s in the keyring\n", green("✓"), provider, secrets.Mask(strings.TrimSpace(key)))
	},
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete <provider>",
	Short: "Remove a stored API key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := secrets.Delete(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Removed %s key\n", green("✓"), args[0])
	},
}

// readKey prompts without echo on a terminal and reads a line otherwise.
func readKey(provider string) (string, error) {
	if readline.IsTerminal(int(os.Stdin.Fd())) {
		b, err := readline.Password(provider + " API key: ")
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading key: %w", err)
	}
	return line, nil
}

func init() {
	authCmd.AddCommand(authSetCmd, authDeleteCmd)
	rootCmd.AddCommand(authCmd)
}
