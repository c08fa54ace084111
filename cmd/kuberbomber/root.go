package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "kuberbomber",
	Short: "Cluster reliability simulation toolkit",
	Long:  "KuberBomber injects failures into a (simulated) cluster on statistically distributed schedules and derives live MTTF/MTBF/MTTR/availability metrics.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
}
