/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/promptg/internal"
	"github.com/valpere/promptg/internal/store"
)

var (
	historyLimit  int
	historySearch string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the generation history",
	Long:  `List, inspect, search and clear previously generated prompts.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent generations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		var records []internal.GenerationRecord
		if historySearch != "" {
			records, err = db.SearchGenerations(ctx, historySearch, historyLimit)
		} else {
			records, err = db.ListGenerations(ctx, historyLimit)
		}
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No generations in history.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMODE\tMODEL\tLATENCY\tCREATED\tPROMPT")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%s\t%s\n",
				r.ID, r.Mode, r.Model, r.LatencyMs,
				r.Timestamp.Format("2006-01-02 15:04"), snippet(r.EnhancedPrompt, 50))
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one generation in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		r, err := db.GetGeneration(context.Background(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no generation with ID %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read generation: %w", err)
		}

		fmt.Printf("ID:        %s\n", r.ID)
		fmt.Printf("Mode:      %s\n", r.Mode)
		fmt.Printf("Model:     %s\n", r.Model)
		fmt.Printf("Latency:   %dms\n", r.LatencyMs)
		fmt.Printf("Created:   %s\n", r.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Printf("Selection: %s\n", r.Selection)
		if r.Advisory != "" {
			fmt.Printf("Advisory: %s\n", r.Advisory)
		}
		fmt.Printf("\nBase prompt:\n%s\n", r.BasePrompt)
		fmt.Printf("\nEnhanced prompt:\n%s\n", r.EnhancedPrompt)
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Total generations: %d\n", stats.Total)
		fmt.Printf("Images:            %d\n", stats.Images)
		fmt.Printf("Videos:            %d\n", stats.Videos)
		fmt.Printf("Non-English input: %d\n", stats.NonEnglish)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a generation by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteGeneration(context.Background(), args[0]); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no generation with ID %s", args[0])
			}
			return fmt.Errorf("failed to delete generation: %w", err)
		}
		fmt.Printf("Deleted generation: %s\n", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all generations from history",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ClearGenerations(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Printf("Cleared %d generations from history.\n", n)
		return nil
	},
}

func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of entries (0 for all)")
	historyListCmd.Flags().StringVarP(&historySearch, "search", "s", "", "Only show prompts containing this text")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}
