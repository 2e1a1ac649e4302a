package main

import (
	"github.com/spf13/cobra"
)

// rootFlags holds the --platform-archive/--config-archive persistent
// flags every subcommand that touches the repository needs, grounded on
// the teacher's buildConfigFromFlags pattern of one shared flag set
// threaded through every subcommand's Run.
type rootFlags struct {
	platformArchive string
	configArchive   string
}

func rootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "typecore",
		Short: "Gradual type analyzer core for the source-language scripting environment",
		Long: "typecore resolves expression and identifier types against platform\n" +
			"documentation, configuration metadata, built-in primitives, and\n" +
			"source-code inference, with graded certainty.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.platformArchive, "platform-archive", "",
		"path to the extracted platform documentation archive (JSON array)")
	root.PersistentFlags().StringVar(&flags.configArchive, "config-archive", "",
		"path to the extracted configuration metadata archive (JSON array)")

	root.AddCommand(
		resolveCmd(&flags),
		hoverCmd(&flags),
		completionsCmd(&flags),
		checkAssignmentCmd(&flags),
		analyzeCmd(&flags),
		searchCmd(&flags),
		snapshotCmd(&flags),
		restoreCmd(&flags),
		serveMCPCmd(&flags),
	)
	return root
}
