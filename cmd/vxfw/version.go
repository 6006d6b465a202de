package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vxfw/vxfw/flasher"
)

var versionIndex int

var versionCmd = &cobra.Command{
	Use:   "version [VER]",
	Short: "Print the device's firmware version, or write a new one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(versionIndex, func(f *flasher.Flasher) error {
			if len(args) == 1 {
				if err := f.SetVersion(args[0]); err != nil {
					return err
				}
			}
			version, err := f.Version()
			if err != nil {
				return err
			}
			fmt.Printf("%s - %s\n", f.Name(), version)
			return nil
		})
	},
}

func init() {
	versionCmd.Flags().IntVarP(&versionIndex, "device", "n", -1, "device index from `vxfw list`")
	rootCmd.AddCommand(versionCmd)
}
