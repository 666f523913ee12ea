package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCommand()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "shorttube <results.json>",
		Short:         "Merge captured engine results into one playback plan",
		Long:          "Reads a JSON file of engine results captured for one video and runs the\nconsensus pass offline: merge, quota selection, and audit trail.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.Flags().Float64("duration", 0, "Video duration in seconds (required)")
	root.Flags().String("video", "local", "Video identifier used in the audit trail")
	root.Flags().Bool("json", false, "Print the full report as JSON")
	root.Flags().Bool("audit", false, "Include the consensus audit trail")
	_ = root.MarkFlagRequired("duration")

	return root
}
