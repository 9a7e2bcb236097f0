package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scangate",
	Short: "CI gate for the remote vulnerability scan service",
	Long: `Scangate submits a repository to a remote vulnerability scan service,
waits for the per-unit verdicts, renders a report artifact, and fails the
pipeline when too many units come back vulnerable.`,
}

var (
	DebugMode  bool
	ConfigFile string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file path (default .scangate.yaml)")
}
