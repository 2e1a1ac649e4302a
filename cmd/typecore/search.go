package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/typecore/internal/adapter"
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/service"
	"github.com/oxhq/typecore/internal/types"
)

func searchCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the type repository, or print its statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(flags.platformArchive, flags.configArchive)
			if err != nil {
				return err
			}

			statsOnly, _ := cmd.Flags().GetBool("stats")
			if statsOnly {
				stats := e.svc.Statistics()
				asJSON, _ := cmd.Flags().GetBool("json")
				if asJSON {
					return printJSON(adapter.RenderStatistics(stats))
				}
				for _, line := range adapter.RenderStatisticsText(adapter.RenderStatistics(stats)) {
					fmt.Println(line)
				}
				return nil
			}

			name, _ := cmd.Flags().GetString("name")
			category, _ := cmd.Flags().GetString("category")
			source, _ := cmd.Flags().GetString("source")
			cursor, _ := cmd.Flags().GetString("cursor")
			limit, _ := cmd.Flags().GetInt("limit")

			result, err := e.svc.SearchTypes(service.SearchTypesOptions{
				Filters: repository.Filters{
					NameSubstring: name,
					Category:      category,
					Source:        types.SourceTag(source),
				},
				Cursor: cursor,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return printJSON(adapter.RenderSearchTypes(result))
			}
			for _, it := range result.Items {
				fmt.Printf("%s\t%s\t%s\n", it.Source, it.Category, it.Name.ASCII)
			}
			if result.NextCursor != nil {
				fmt.Printf("next cursor: %s\n", *result.NextCursor)
			}
			return nil
		},
	}
	cmd.Flags().String("name", "", "name substring filter")
	cmd.Flags().String("category", "", "category filter")
	cmd.Flags().String("source", "", "source tag filter (Platform|Configuration|BuiltIn|UserDefined)")
	cmd.Flags().String("cursor", "", "pagination cursor")
	cmd.Flags().Int("limit", 0, "page size (default 50, max 200)")
	cmd.Flags().Bool("stats", false, "print repository statistics instead of searching")
	cmd.Flags().Bool("json", false, "render as JSON instead of plain text")
	return cmd
}
