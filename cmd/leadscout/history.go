package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyResetYes bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or reset the companies seen so far",
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List every remembered identifier",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, err := openStore(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer a.close()

		ids, err := a.store.Load(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			a.close()
			os.Exit(1)
		}
		for _, id := range ids.Sorted() {
			fmt.Println(id)
		}
		gray := color.New(color.FgHiBlack).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s\n", gray(fmt.Sprintf("%d identifiers (%s)", ids.Len(), cfg.StoragePath)))
	},
}

var historyCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print how many identifiers are remembered",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, err := openStore(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer a.close()

		ids, err := a.store.Load(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			a.close()
			os.Exit(1)
		}
		fmt.Println(ids.Len())
	},
}

var historyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget every remembered identifier",
	Long: `Forget every remembered identifier. Later searches may return companies
you have already seen. Asks for confirmation unless --yes is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, err := openStore(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer a.close()

		ids, err := a.store.Load(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			a.close()
			os.Exit(1)
		}

		if !historyResetYes {
			fmt.Printf("Forget all %d companies seen so far? [y/N] ", ids.Len())
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				fmt.Println("Reset cancelled")
				return
			}
		}

		if err := a.store.Clear(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: clearing history: %v\n", err)
			a.close()
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s History cleared (%d identifiers removed)\n", green("✓"), ids.Len())
	},
}

func init() {
	historyResetCmd.Flags().BoolVarP(&historyResetYes, "yes", "y", false, "skip confirmation")
	historyCmd.AddCommand(historyShowCmd, historyCountCmd, historyResetCmd)
	rootCmd.AddCommand(historyCmd)
}
