// Command loadtest hammers one actor from many goroutines and verifies that
// every message was dispatched exactly once, in per-producer order, and never
// concurrently with another.
//
//	loadtest run -n 1000000 -p 64 --scheduler lanes
//	loadtest run --config hub.yaml --metrics-addr :2121
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "loadtest",
	Short:        "Actor runtime load test",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newRunCmd(), newConfigCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
