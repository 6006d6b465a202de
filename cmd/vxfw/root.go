package main

import (
	"github.com/spf13/cobra"

	"github.com/vxfw/vxfw/logging"
)

var (
	verbosity int
	log       logging.Logger = logging.Nop()
)

var rootCmd = &cobra.Command{
	Use:           "vxfw",
	Short:         "Firmware tool for Vortex-family keyboards",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logging.NewLogrusLogger(verbosity)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")
}
