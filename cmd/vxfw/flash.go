package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vxfw/vxfw/flasher"
)

var flashCmd = &cobra.Command{
	Use:   "flash VERSION FILE",
	Short: "Flash a firmware image and set its version string",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, path := args[0], args[1]

		fw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read firmware: %w", err)
		}

		return withDevice(-1, func(f *flasher.Flasher) error {
			if err := f.Flash(fw, version); err != nil {
				return err
			}
			fmt.Printf("%s - flashed %d bytes, version %s\n", f.Name(), len(fw), version)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(flashCmd)
}
