// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/article-library/internal/library"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay pending offline mutations against the backend",
	Long: `Sync runs one synchronization pass: it fetches the backend's current
collection, replays the pending-operation log against it in the order the
operations were made, and replaces the local cache with the backend's
post-sync state. With no pending operations it just refreshes the cache.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	summary, err := lib.SyncPending(cmd.Context())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if summary.State == library.SyncIdle {
		fmt.Println("Backend unreachable, nothing synced. Pending operations are kept.")
		return nil
	}
	if summary.Total == 0 {
		fmt.Println("No pending operations. Local cache refreshed from the backend.")
		return nil
	}

	fmt.Printf("Sync complete: %d operation(s) replayed, %d skipped, %d failed.\n",
		summary.Replayed, summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d operation(s) failed to replay", summary.Failed)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
