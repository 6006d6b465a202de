package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vxfw/vxfw/installer"
)

var extractCmd = &cobra.Command{
	Use:   "extract FORMAT FILE [DIR]",
	Short: "Extract firmware images from a vendor installer",
	Long: `Extract decodes the firmware images embedded in a vendor updater
executable without any device attached. FORMAT is one of: maajonsn,
maav101, maav102, maav105, maav106, kbp_cykb. Decoded images are written
to DIR (default: the current directory).`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := installer.ParseFormat(args[0])
		if err != nil {
			return err
		}
		outDir := "."
		if len(args) == 3 {
			outDir = args[2]
		}

		ex := installer.New(
			installer.WithLogger(log),
			installer.WithProgress(newBarReporter().report),
		)
		res, err := ex.ExtractFile(format, args[1], outDir)
		if err != nil {
			return err
		}

		fmt.Printf("%s %s: %d firmware image(s)\n", res.Company, res.Product, len(res.Firmwares))
		for _, fw := range res.Firmwares {
			fmt.Printf("  %s (%d bytes)\n", fw.Name, len(fw.Data))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
