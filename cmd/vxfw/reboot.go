package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vxfw/vxfw/flasher"
)

var (
	rebootIndex      int
	rebootBootloader bool
)

var rebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the device into application or bootloader mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(rebootIndex, func(f *flasher.Flasher) error {
			if err := f.Reboot(rebootBootloader); err != nil {
				return err
			}
			mode := "application"
			if f.Handle().InBootloader() {
				mode = "bootloader"
			}
			fmt.Printf("%s - now in %s mode (pid 0x%04X)\n", f.Name(), mode, f.Handle().ProductID)
			return nil
		})
	},
}

func init() {
	rebootCmd.Flags().IntVarP(&rebootIndex, "device", "n", -1, "device index from `vxfw list`")
	rebootCmd.Flags().BoolVar(&rebootBootloader, "bootloader", false, "reboot into the bootloader")
	rootCmd.AddCommand(rebootCmd)
}
