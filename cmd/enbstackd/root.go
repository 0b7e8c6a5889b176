package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands,
// grounded on akita/cmd's root-command + subcommand-registration pattern.
var rootCmd = &cobra.Command{
	Use:   "enbstackd",
	Short: "enbstackd runs an LTE eNB control-plane station.",
	Long: `enbstackd runs the RRC and MAC scheduler control plane for one ` +
		`LTE eNB station: per-user RRC state machines, the time/frequency ` +
		`scheduler, PUCCH resource management, measurement-config handling ` +
		`and mobility orchestration.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
