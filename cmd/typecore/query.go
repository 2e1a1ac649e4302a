package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/typecore/internal/adapter"
	"github.com/oxhq/typecore/internal/service"
	"github.com/oxhq/typecore/internal/sourceast"
	"github.com/oxhq/typecore/internal/types"
)

// loadNode decodes one sourceast.Node from a JSON file. The parser itself
// is out of scope (spec §1); this is the CLI's chosen on-disk shape for
// "an AST + ranges produced by an external parser".
func loadNode(path string) (*sourceast.Node, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading AST file: %w", err)
	}
	var n sourceast.Node
	if err := json.Unmarshal(b, &n); err != nil {
		return nil, fmt.Errorf("decoding AST file: %w", err)
	}
	return &n, nil
}

func queryContextFlags(cmd *cobra.Command) (file string, activeFn string) {
	file, _ = cmd.Flags().GetString("file")
	activeFn, _ = cmd.Flags().GetString("active-function")
	return
}

func addQueryContextFlags(cmd *cobra.Command) {
	cmd.Flags().String("ast", "", "path to a JSON-encoded expression AST node (required)")
	cmd.Flags().String("file", "", "source file name for the query context")
	cmd.Flags().String("active-function", "", "enclosing function id, if any")
	_ = cmd.MarkFlagRequired("ast")
}

func buildQueryContext(expr *sourceast.Node, file, activeFn string) service.QueryContext {
	pos := sourceast.Range{File: file}
	if expr != nil {
		pos = expr.Range
	}
	return service.QueryContext{File: file, Position: pos, ActiveFunction: activeFn}
}

func resolveCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the type of one expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(flags.platformArchive, flags.configArchive)
			if err != nil {
				return err
			}
			astPath, _ := cmd.Flags().GetString("ast")
			expr, err := loadNode(astPath)
			if err != nil {
				return err
			}
			file, activeFn := queryContextFlags(cmd)
			res := e.svc.Resolve(expr, buildQueryContext(expr, file, activeFn))

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return printJSON(adapter.RenderResolution(res))
			}
			fmt.Println(adapter.RenderResolutionText(res))
			return nil
		},
	}
	addQueryContextFlags(cmd)
	cmd.Flags().Bool("json", false, "render as JSON instead of plain text")
	return cmd
}

func hoverCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hover",
		Short: "Render the hover text for one expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(flags.platformArchive, flags.configArchive)
			if err != nil {
				return err
			}
			astPath, _ := cmd.Flags().GetString("ast")
			expr, err := loadNode(astPath)
			if err != nil {
				return err
			}
			file, activeFn := queryContextFlags(cmd)
			h := e.svc.Hover(expr, buildQueryContext(expr, file, activeFn))

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return printJSON(adapter.RenderHover(h))
			}
			fmt.Print(adapter.RenderHoverText(h))
			return nil
		},
	}
	addQueryContextFlags(cmd)
	cmd.Flags().Bool("json", false, "render as JSON instead of plain text")
	return cmd
}

func completionsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completions",
		Short: "List completion candidates for a prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(flags.platformArchive, flags.configArchive)
			if err != nil {
				return err
			}
			prefix, _ := cmd.Flags().GetString("prefix")
			file, _ := cmd.Flags().GetString("file")
			items := e.svc.Completions(prefix, service.QueryContext{File: file})

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return printJSON(adapter.RenderCompletions(items))
			}
			fmt.Print(adapter.RenderCompletionsText(items))
			return nil
		},
	}
	cmd.Flags().String("prefix", "", "name prefix to complete")
	cmd.Flags().String("file", "", "source file name for the query context")
	cmd.Flags().Bool("json", false, "render as JSON instead of plain text")
	return cmd
}

func checkAssignmentCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-assignment",
		Short: "Check whether one resolved type is assignable to another",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(flags.platformArchive, flags.configArchive)
			if err != nil {
				return err
			}
			fromPath, _ := cmd.Flags().GetString("from")
			toPath, _ := cmd.Flags().GetString("to")
			from, err := loadResolution(fromPath)
			if err != nil {
				return err
			}
			to, err := loadResolution(toPath)
			if err != nil {
				return err
			}
			result := e.svc.CheckAssignment(from, to)
			if result.Compatible {
				fmt.Println("compatible")
				return nil
			}
			fmt.Printf("incompatible: %s\n", result.Reason)
			return nil
		},
	}
	cmd.Flags().String("from", "", "path to a JSON-encoded TypeResolution (source)")
	cmd.Flags().String("to", "", "path to a JSON-encoded TypeResolution (target)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func loadResolution(path string) (types.TypeResolution, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.TypeResolution{}, fmt.Errorf("reading resolution file: %w", err)
	}
	var r types.TypeResolution
	if err := json.Unmarshal(b, &r); err != nil {
		return types.TypeResolution{}, fmt.Errorf("decoding resolution file: %w", err)
	}
	return r, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
