package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/b2breeze/internal/app"
	"github.com/joseph-ayodele/b2breeze/internal/entity"
)

// newBatchCommand scans a directory of cards against a local store and
// writes the resulting wallet to XLSX.
func newBatchCommand(root *rootOptions) *cobra.Command {
	var (
		dir         string
		out         string
		inmem       bool
		concurrency int
		skipHidden  bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Ingest and scan every card under a directory, then export XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := *root.cfg
			if inmem {
				cfg.Database.DSN = ":memory:"
			}
			if out == "" {
				out = filepath.Join(filepath.Dir(filepath.Clean(dir)), "contacts.xlsx")
			}

			a, err := app.New(ctx, &cfg, root.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			start := time.Now()
			results, stats, err := a.Ingestor.IngestDirectory(ctx, dir, skipHidden)
			if err != nil {
				return err
			}
			ids := make([]uuid.UUID, 0, len(results))
			for _, r := range results {
				if r.Err == "" {
					ids = append(ids, r.FileID)
				}
			}

			outcomes, err := a.Processor.ProcessAll(ctx, ids, concurrency)
			if err != nil {
				return err
			}
			var failed, review int
			for _, o := range outcomes {
				switch {
				case o.Err != nil:
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "scan failed: file %s: %v\n", o.FileID, o.Err)
				case o.NeedsReview:
					review++
				}
			}

			xlsx, err := a.Export.ExportContactsXLSX(ctx, entity.ContactFilter{})
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, xlsx, 0o644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"matched %d, ingested %d (%d duplicates, %d failed), scanned %d (%d failed, %d need review) in %s\nwrote %s\n",
				stats.Matched, stats.Succeeded, stats.Deduplicated, stats.Failed,
				len(outcomes), failed, review, time.Since(start).Round(time.Millisecond), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of card files (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output XLSX path (default <parent of dir>/contacts.xlsx)")
	cmd.Flags().BoolVar(&inmem, "inmem", false, "use a throwaway in-memory database")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "files scanned at once")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", true, "ignore dotfiles and dot-directories")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func newDBHealthCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dbhealth",
		Short: "Check database connectivity and report table counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(cmd.Context(), root.cfg, root.logger)
			if err != nil {
				return fmt.Errorf("DB health: FAIL (%w)", err)
			}
			defer a.Close()

			if err := a.DB.HealthCheck(cmd.Context(), 2*time.Second); err != nil {
				return fmt.Errorf("DB health: FAIL (%w)", err)
			}
			n, err := a.Contacts.Count(cmd.Context(), entity.ContactFilter{})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "DB health: OK (%s)\ncontacts: %d\n", a.DB.Dialect(), n)
			return nil
		},
	}
}
