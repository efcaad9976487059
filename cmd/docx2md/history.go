// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rtreit/document-converter/internal/ledger"
	"github.com/rtreit/document-converter/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List conversion runs recorded in the ledger",
	Long: `History reads the SQLite ledger written by "convert --ledger" and lists
recent runs. Use --run to show the per-file results of one run.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := viper.GetString("ledger")
	if path == "" {
		return fmt.Errorf("ledger path required: pass --ledger or set ledger in the config file")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("opening ledger %s: %w", path, err)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetInt64("run")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	l, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	if runID > 0 {
		run, err := l.Get(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(os.Stdout, run)
		}
		formatRun(os.Stdout, run)
		return nil
	}

	runs, err := l.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(os.Stdout, runs)
	}
	formatRuns(os.Stdout, runs)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatRuns(w io.Writer, runs []types.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-20s  %-9s  %-7s  %-6s  %s\n",
		"Run", "Started", "Converted", "Skipped", "Failed", "Directory")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range runs {
		fmt.Fprintf(w, "%-5d  %-20s  %-9d  %-7d  %-6d  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Converted, r.Skipped, r.Failed, r.Dir)
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
}

func formatRun(w io.Writer, run types.Run) {
	fmt.Fprintf(w, "Run %d: %s\n", run.ID, run.Dir)
	fmt.Fprintf(w, "Converter: %s (%s)\n", run.Version, run.Backend)
	fmt.Fprintf(w, "Duration:  %s\n\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))

	for _, f := range run.Files {
		line := fmt.Sprintf("%-9s  %-9s  %s", f.Status, f.Fix, f.Source)
		if f.Error != "" {
			line += " (" + f.Error + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Int64("run", 0, "show file results for this run ID")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}
