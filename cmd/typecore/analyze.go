package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/oxhq/typecore/internal/adapter"
	"github.com/oxhq/typecore/internal/service"
	"github.com/oxhq/typecore/internal/snapshot"
	"github.com/oxhq/typecore/internal/sourceast"
)

// discoverModules walks root and decodes every file matching include (and
// none of exclude) as a sourceast.Node module. Glob matching is doublestar
// (teacher: internal/scanner's include/exclude glob discovery), not
// filepath.Match, so patterns like "**/*.json" work across directories.
func discoverModules(root string, include, exclude []string) ([]*sourceast.Node, []string, error) {
	var modules []*sourceast.Node
	var failed []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		matched := len(include) == 0
		for _, pat := range include {
			if ok, _ := doublestar.Match(pat, rel); ok {
				matched = true
				break
			}
		}
		if !matched {
			return nil
		}
		for _, pat := range exclude {
			if ok, _ := doublestar.Match(pat, rel); ok {
				return nil
			}
		}

		b, readErr := os.ReadFile(path)
		if readErr != nil {
			failed = append(failed, path)
			return nil
		}
		var mod sourceast.Node
		if json.Unmarshal(b, &mod) != nil {
			failed = append(failed, path)
			return nil
		}
		if mod.Range.File == "" {
			mod.Range.File = rel
		}
		modules = append(modules, &mod)
		return nil
	})
	return modules, failed, err
}

func analyzeCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [project-dir]",
		Short: "Run the flow-sensitive and interprocedural analyzers over a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(flags.platformArchive, flags.configArchive)
			if err != nil {
				return err
			}
			include, _ := cmd.Flags().GetStringSlice("include")
			exclude, _ := cmd.Flags().GetStringSlice("exclude")
			if len(include) == 0 {
				include = []string{"**/*.json"}
			}

			modules, failedReads, err := discoverModules(args[0], include, exclude)
			if err != nil {
				return fmt.Errorf("walking project directory: %w", err)
			}
			for _, f := range failedReads {
				e.log.Warning("skipping unreadable/malformed module file", map[string]any{"path": f})
			}

			result := e.svc.AnalyzeProject(context.Background(), modules)
			result.FilesFail += len(failedReads)

			diffAgainst, _ := cmd.Flags().GetString("diff-against")
			if diffAgainst != "" {
				diffText, err := renderStatsDiff(diffAgainst, result)
				if err != nil {
					return err
				}
				fmt.Print(diffText)
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return printJSON(adapter.RenderAnalyzeProject(result))
			}
			fmt.Print(adapter.RenderAnalyzeProjectText(result))
			return nil
		},
	}
	cmd.Flags().StringSlice("include", nil, "glob patterns of module files to analyze (default **/*.json)")
	cmd.Flags().StringSlice("exclude", nil, "glob patterns of module files to skip")
	cmd.Flags().String("diff-against", "", "path to a previous snapshot; print a unified diff of repository statistics")
	cmd.Flags().Bool("json", false, "render as JSON instead of plain text")
	return cmd
}

// renderStatsDiff compares the statistics recorded in a previous snapshot
// file against this run's result, rendering a unified diff via go-difflib
// (teacher: its CLI's --diff dry-run rendering).
func renderStatsDiff(snapshotPath string, result service.AnalyzeProjectResult) (string, error) {
	f, err := os.Open(snapshotPath)
	if err != nil {
		return "", fmt.Errorf("opening snapshot for diff: %w", err)
	}
	defer f.Close()

	prevRepo, _, err := snapshot.Restore(f)
	if err != nil {
		return "", fmt.Errorf("restoring snapshot for diff: %w", err)
	}

	before := sortedLines(adapter.RenderStatisticsText(adapter.RenderStatistics(prevRepo.Statistics())))
	after := sortedLines(adapter.RenderStatisticsText(adapter.RenderStatistics(result.SummaryStats)))

	diff := difflib.UnifiedDiff{
		A:        before,
		B:        after,
		FromFile: "previous snapshot",
		ToFile:   "current analysis",
		Context:  2,
	}
	return difflib.GetUnifiedDiffString(diff)
}

func sortedLines(lines []string) []string {
	sorted := append([]string(nil), lines...)
	sort.Strings(sorted)
	for i, l := range sorted {
		sorted[i] = l + "\n"
	}
	return sorted
}
