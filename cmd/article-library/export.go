// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the cached article collection to YAML or JSON",
	Long: `Export writes the locally cached collection to stdout or --out. Run it
after list or sync for a current snapshot of the backend's state; offline
it exports whatever the cache holds, including unsynced records.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	lib, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	// Refresh the cache first so an online export reflects the backend.
	if _, err := lib.Articles(cmd.Context()); err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := lib.Cache().Export(w, format); err != nil {
		return err
	}
	if out != "" {
		fmt.Printf("Exported to %s\n", out)
	}
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("out", "", "write to this file instead of stdout")

	rootCmd.AddCommand(exportCmd)
}
