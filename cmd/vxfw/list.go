package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vxfw/vxfw/device"
	"github.com/vxfw/vxfw/flasher"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected devices and their firmware versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevices(func(handles []*device.Handle) error {
			for i, h := range handles {
				f := flasher.New(h, flasher.WithLogger(log))
				version, err := f.Version()
				if err != nil {
					log.Debug("version read failed", "device", f.Name(), "err", err)
					version = "?"
				}
				mode := ""
				if h.InBootloader() {
					mode = " (bootloader)"
				}
				fmt.Printf("%d: %s - %s%s\n", i, f.Name(), version, mode)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
