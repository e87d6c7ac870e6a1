// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search articles by title, abstract, authors, or journal",
	Long: `Search runs a case-insensitive substring search across title, abstract,
authors, and journal. The backend handles the query while reachable; the
local cache answers it otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	query := strings.Join(args, " ")
	list, err := lib.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("searching for %q: %w", query, err)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatArticles(list, jsonOutput)
}

func init() {
	searchCmd.Flags().Bool("json", false, "output articles as JSON")

	rootCmd.AddCommand(searchCmd)
}
