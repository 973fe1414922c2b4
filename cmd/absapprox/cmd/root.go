package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	logLevel string
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:           "absapprox",
	Short:         "Analysis-by-synthesis phase transition experiments",
	Long:          "Generates cosparse recovery problems over a (delta, rho) grid, solves them with GAP and with synthesis solvers on the aggregate system, and saves success maps.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Interrupts cancel the running experiment.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		rootCmd.PrintErrln("error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runParallelCmd)
	rootCmd.AddCommand(plotCmd)
}
