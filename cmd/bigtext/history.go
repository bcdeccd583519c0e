package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shivavenkatesh/bigtext/internal/store"
	"github.com/shivavenkatesh/bigtext/pkg/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Long: `List the operations recorded in the journal, newest first.

Examples:
  bigtext history
  bigtext history --op replace --limit 5
  bigtext history --clear`,
	RunE: runHistory,
}

var (
	historyLimit int
	historyOp    string
	historyPath  string
	historyClear bool
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum results")
	historyCmd.Flags().StringVar(&historyOp, "op", "", "Filter by operation")
	historyCmd.Flags().StringVar(&historyPath, "path", "", "Filter by source path")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete matching runs instead of listing them")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, _, err := initService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if historyClear {
		n, err := svc.ClearRuns(ctx, types.Op(historyOp))
		if err != nil {
			return fmt.Errorf("failed to clear runs: %w", err)
		}
		fmt.Printf("Deleted %d runs\n", n)
		return nil
	}

	runs, err := svc.Runs(ctx, store.ListOptions{
		Op:         types.Op(historyOp),
		Path:       historyPath,
		Limit:      historyLimit,
		Descending: true,
	})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	for _, r := range runs {
		status := "ok"
		if r.Error != "" {
			status = "failed: " + truncate(r.Error, 60)
		} else if r.Result != "" {
			status = "= " + r.Result
		}
		fmt.Printf("  %s  %-15s %s  %s\n", r.CreatedAt.Local().Format(time.DateTime), r.Op, r.Source.Path, status)
		for _, out := range r.Outputs {
			fmt.Printf("      -> %s\n", out)
		}
		fmt.Printf("    ID: %s (%s)\n\n", r.ID, r.Duration.Round(time.Millisecond))
	}

	return nil
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics",
	Long: `Show statistics about recorded runs and cached lengths.

Examples:
  bigtext stats`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, _, err := initService()
	if err != nil {
		return err
	}
	defer svc.Close()

	stats, err := svc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	fmt.Println("bigtext Statistics")
	fmt.Println("──────────────────")
	fmt.Printf("Total runs:      %d\n", stats.TotalRuns)
	fmt.Printf("Failed runs:     %d\n", stats.FailedRuns)
	fmt.Printf("Cached lengths:  %d\n", stats.CachedLengths)
	fmt.Printf("Storage size:    %.2f MB\n", float64(stats.StorageBytes)/1024/1024)
	fmt.Println()

	if len(stats.RunsByOp) > 0 {
		fmt.Println("By operation:")
		for op, count := range stats.RunsByOp {
			fmt.Printf("  %-15s %d\n", op, count)
		}
	}

	return nil
}
