package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/typecore/internal/adapter"
	"github.com/oxhq/typecore/internal/repository"
	"github.com/oxhq/typecore/internal/snapshot"
)

func snapshotCmd(flags *rootFlags) *cobra.Command {
	var storeDSN, remoteURL, archiveDigest string
	var cgo bool

	cmd := &cobra.Command{
		Use:   "snapshot [out-file]",
		Short: "Write a versioned snapshot of the repository and interprocedural summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(flags.platformArchive, flags.configArchive)
			if err != nil {
				return err
			}

			var envelope bytes.Buffer
			if err := snapshot.Snapshot(&envelope, e.repo, e.svc.Summary); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
			if err := os.WriteFile(args[0], envelope.Bytes(), 0o644); err != nil {
				return fmt.Errorf("creating snapshot file: %w", err)
			}

			// --store and --remote are independent persistence paths a
			// snapshot can additionally flow through beyond the plain file
			// (spec §6.4: the core treats persistence as opaque, the caller
			// picks the backend).
			if storeDSN != "" {
				store, err := snapshot.OpenStore(storeDSN, false, cgo)
				if err != nil {
					return fmt.Errorf("opening store %q: %w", storeDSN, err)
				}
				defer store.Close()
				if err := store.SaveEntities(archiveDigest, e.repo.All()); err != nil {
					return fmt.Errorf("persisting entities to store: %w", err)
				}
				if err := store.SaveSummaries(archiveDigest, e.svc.Summary); err != nil {
					return fmt.Errorf("persisting summaries to store: %w", err)
				}
				if err := store.SaveBlob(archiveDigest, snapshot.SchemaVersion, envelope.Bytes()); err != nil {
					return fmt.Errorf("persisting blob to store: %w", err)
				}
				fmt.Printf("persisted snapshot to store %s (digest %s)\n", storeDSN, archiveDigest)
			}
			if remoteURL != "" {
				client, err := snapshot.DialRemote(context.Background(), remoteURL)
				if err != nil {
					return fmt.Errorf("dialing remote store: %w", err)
				}
				defer client.Close()
				if err := client.Push(context.Background(), envelope.Bytes()); err != nil {
					return fmt.Errorf("pushing snapshot to remote store: %w", err)
				}
				fmt.Printf("pushed snapshot to remote store %s\n", remoteURL)
			}

			fmt.Printf("wrote snapshot (schema v%d, %d entities)\n",
				snapshot.SchemaVersion, e.repo.Statistics().TotalEntities)
			return nil
		},
	}
	cmd.Flags().StringVar(&storeDSN, "store", "",
		"DSN of a GORM-backed store to additionally persist into (sqlite path, mysql DSN, or libsql/https URL)")
	cmd.Flags().StringVar(&remoteURL, "remote", "",
		"websocket URL of a companion process to additionally push the snapshot to")
	cmd.Flags().StringVar(&archiveDigest, "archive-digest", "default",
		"key under which entities/summaries are persisted in --store")
	cmd.Flags().BoolVar(&cgo, "cgo", false,
		"use the cgo-accelerated sqlite driver for --store instead of the pure-Go default")
	return cmd
}

func restoreCmd(_ *rootFlags) *cobra.Command {
	var storeDSN, remoteURL, archiveDigest string
	var cgo bool

	cmd := &cobra.Command{
		Use:   "restore [in-file]",
		Short: "Restore a repository from a snapshot (file, --store, or --remote) and print its statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var repo *repository.Repository

			switch {
			case remoteURL != "":
				client, err := snapshot.DialRemote(context.Background(), remoteURL)
				if err != nil {
					return fmt.Errorf("dialing remote store: %w", err)
				}
				defer client.Close()
				r, err := client.ReaderFor(context.Background())
				if err != nil {
					return fmt.Errorf("pulling snapshot from remote store: %w", err)
				}
				repo, _, err = snapshot.Restore(r)
				if err != nil {
					return fmt.Errorf("restoring snapshot: %w", err)
				}
			case storeDSN != "":
				store, err := snapshot.OpenStore(storeDSN, false, cgo)
				if err != nil {
					return fmt.Errorf("opening store %q: %w", storeDSN, err)
				}
				defer store.Close()
				repo, err = store.LoadEntities(archiveDigest)
				if err != nil {
					return fmt.Errorf("restoring from store: %w", err)
				}
			default:
				if len(args) != 1 {
					return fmt.Errorf("restore requires an input file, --store, or --remote")
				}
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening snapshot file: %w", err)
				}
				defer f.Close()

				repo, _, err = snapshot.Restore(f)
				if err != nil {
					return fmt.Errorf("restoring snapshot: %w", err)
				}
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return printJSON(adapter.RenderStatistics(repo.Statistics()))
			}
			for _, line := range adapter.RenderStatisticsText(adapter.RenderStatistics(repo.Statistics())) {
				fmt.Println(line)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "render as JSON instead of plain text")
	cmd.Flags().StringVar(&storeDSN, "store", "",
		"DSN of a GORM-backed store to restore from instead of a file (sqlite path, mysql DSN, or libsql/https URL)")
	cmd.Flags().StringVar(&remoteURL, "remote", "",
		"websocket URL of a companion process to pull the snapshot from instead of a file")
	cmd.Flags().StringVar(&archiveDigest, "archive-digest", "default",
		"key under which entities were persisted in --store")
	cmd.Flags().BoolVar(&cgo, "cgo", false,
		"use the cgo-accelerated sqlite driver for --store instead of the pure-Go default")
	return cmd
}
