// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity, cache, and pending-operation state",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	status := lib.Status()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	mode := "online"
	if status.Offline {
		mode = "offline"
	}
	fmt.Printf("Mode:               %s\n", mode)
	fmt.Printf("Network:            %v\n", status.Connectivity.Online)
	fmt.Printf("Server available:   %v\n", status.Connectivity.ServerAvailable)
	fmt.Printf("Last health check:  %s\n", formatTime(status.Connectivity.LastChecked))
	fmt.Printf("Cached articles:    %d\n", status.Cached)
	fmt.Printf("Pending operations: %d\n", status.Pending)
	return nil
}

func init() {
	statusCmd.Flags().Bool("json", false, "output status as JSON")

	rootCmd.AddCommand(statusCmd)
}
