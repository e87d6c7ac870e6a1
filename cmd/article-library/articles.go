// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/article-library/pkg/types"
)

// --- get subcommand ---

var getCmd = &cobra.Command{
	Use:   "get <index>",
	Short: "Show one article by its index",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	var index int
	if _, err := fmt.Sscanf(args[0], "%d", &index); err != nil {
		return fmt.Errorf("index must be an integer, got %q", args[0])
	}

	lib, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	article, err := lib.ByIndex(cmd.Context(), index)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(article)
}

// --- add subcommand ---

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an article to the collection",
	Long: `Add creates an article from the field flags. While the backend is
reachable the article is posted there and the server assigns its index;
offline it is cached under a temporary id and queued for the next sync.`,
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	payload := payloadFromFlags(cmd)
	if payload.Title == "" || payload.Authors == "" {
		return fmt.Errorf("both --title and --authors are required")
	}

	lib, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	created, err := lib.Add(cmd.Context(), payload)
	if err != nil {
		return fmt.Errorf("adding article: %w", err)
	}

	if created.IsTemp() {
		fmt.Printf("Added %q locally (pending sync, temporary id %s)\n", created.Title, created.ID)
	} else {
		fmt.Printf("Added %q with index %d\n", created.Title, created.Index)
	}
	return nil
}

// --- update subcommand ---

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an article by index or temporary id",
	Long: `Update merges the given field flags into the article identified by its
server index or, for not-yet-synced records, its temporary id. Offline
updates are queued for the next sync.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	payload := payloadFromFlags(cmd)

	lib, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	updated, err := lib.Update(cmd.Context(), args[0], payload)
	if err != nil {
		return fmt.Errorf("updating article %s: %w", args[0], err)
	}

	fmt.Printf("Updated %q\n", updated.Title)
	return nil
}

// --- delete subcommand ---

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an article by index or temporary id",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting article %s: %w", args[0], err)
	}

	fmt.Printf("Deleted article %s\n", args[0])
	return nil
}

// --- shared helpers ---

func payloadFromFlags(cmd *cobra.Command) types.ArticlePayload {
	title, _ := cmd.Flags().GetString("title")
	authors, _ := cmd.Flags().GetString("authors")
	journal, _ := cmd.Flags().GetString("journal")
	abstract, _ := cmd.Flags().GetString("abstract")
	year, _ := cmd.Flags().GetInt("year")
	citations, _ := cmd.Flags().GetInt("citations")

	return types.ArticlePayload{
		Title:     title,
		Authors:   authors,
		Journal:   journal,
		Abstract:  abstract,
		Year:      year,
		Citations: citations,
	}
}

func addPayloadFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "article title")
	cmd.Flags().String("authors", "", "article authors")
	cmd.Flags().String("journal", "", "journal name")
	cmd.Flags().String("abstract", "", "article abstract")
	cmd.Flags().Int("year", 0, "publication year")
	cmd.Flags().Int("citations", 0, "citation count")
}

func init() {
	addPayloadFlags(addCmd)
	addPayloadFlags(updateCmd)

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
}
