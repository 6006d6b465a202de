package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vxfw/vxfw/flasher"
)

var dumpIndex int

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Dump the device's flash to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(dumpIndex, func(f *flasher.Flasher) error {
			data, err := f.Dump()
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("write dump: %w", err)
			}
			fmt.Printf("%s - dumped %d bytes to %s\n", f.Name(), len(data), args[0])
			return nil
		})
	},
}

func init() {
	dumpCmd.Flags().IntVarP(&dumpIndex, "device", "n", -1, "device index from `vxfw list`")
	rootCmd.AddCommand(dumpCmd)
}
