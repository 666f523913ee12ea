package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/david-erel/short-tube/internal/highlight"
)

func run(cmd *cobra.Command, inputPath string) error {
	duration, _ := cmd.Flags().GetFloat64("duration")
	videoID, _ := cmd.Flags().GetString("video")
	asJSON, _ := cmd.Flags().GetBool("json")
	withAudit, _ := cmd.Flags().GetBool("audit")

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read results: %w", err)
	}

	var results []highlight.EngineResult
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("parse results: %w", err)
	}

	logs := make([]highlight.EngineLog, 0, len(results))
	for _, res := range results {
		logs = append(logs, highlight.BuildEngineLog(res))
	}

	report, err := highlight.Consolidate(videoID, duration, results, logs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if asJSON || !isatty.IsTerminal(os.Stdout.Fd()) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintln(out, renderPlanTable(report.Highlights))

	var total float64
	for _, h := range report.Highlights {
		total += h.Duration()
	}
	fmt.Fprintf(out, "%d jumps, %.1fs selected\n", len(report.Highlights), total)

	if withAudit {
		fmt.Fprintln(out)
		for _, entry := range report.ConsensusLog {
			fmt.Fprintf(out, "%-10s %s\n", entry.Step, entry.Detail)
		}
	}
	return nil
}
