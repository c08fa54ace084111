package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kuberbomber/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded event log",
	Long:  "replay reads a JSONL event log produced with --log-file and re-emits the events, preserving relative timing scaled by --speed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("--input is required")
		}
		if replaySpeed <= 0 {
			return fmt.Errorf("--speed must be positive")
		}
		writer, err := newReplayWriter(replayPrintOnly)
		if err != nil {
			return err
		}
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to the JSONL event log to replay")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Replay speed multiplier (2 = twice as fast)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print events to STDOUT instead of writing to DB")
}
