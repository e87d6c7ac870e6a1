// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/article-library/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the article collection",
	Long: `List prints the article collection: the backend's view while it is
reachable, the local cache otherwise. Use --sort-by/--order for a sorted
view and --year to filter by publication year.`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	ctx := cmd.Context()
	sortBy, _ := cmd.Flags().GetString("sort-by")
	order, _ := cmd.Flags().GetString("order")

	var list []types.Article
	switch {
	case cmd.Flags().Changed("year"):
		year, _ := cmd.Flags().GetInt("year")
		list, err = lib.ByYear(ctx, year)
	case sortBy != "":
		list, err = lib.SortedBy(ctx, sortBy, order)
	default:
		list, err = lib.Articles(ctx)
	}
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatArticles(list, jsonOutput)
}

func formatArticles(list []types.Article, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Println("No articles found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-44s  %-24s  %-6s  %-5s\n",
		"Index", "Title", "Authors", "Year", "Cites")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 92))

	for _, a := range list {
		title := truncate(a.Title, 44)
		authors := truncate(a.Authors, 24)
		index := fmt.Sprint(a.Index)
		if a.IsTemp() {
			index = "temp"
		}
		fmt.Fprintf(os.Stdout, "%-6s  %-44s  %-24s  %-6d  %-5d\n",
			index, title, authors, a.Year, a.Citations)
	}

	fmt.Fprintf(os.Stdout, "\n%d articles\n", len(list))
	return nil
}

// truncate shortens s to max runes, ending in "..." when cut. Slicing on
// runes keeps a multi-byte character at the boundary intact.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func init() {
	listCmd.Flags().String("sort-by", "", "sort field: title, authors, journal, year, citations, index")
	listCmd.Flags().String("order", "asc", "sort order: asc or desc")
	listCmd.Flags().Int("year", 0, "only articles published in this year")
	listCmd.Flags().Bool("json", false, "output articles as JSON")

	rootCmd.AddCommand(listCmd)
}
