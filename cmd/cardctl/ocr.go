package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/b2breeze/internal/app"
	"github.com/joseph-ayodele/b2breeze/internal/ocr"
)

// newOCRCommand runs the OCR engine alone over a local file.
func newOCRCommand(root *rootOptions) *cobra.Command {
	var (
		timeout  time.Duration
		progress bool
	)
	cmd := &cobra.Command{
		Use:   "ocr <card-file>",
		Short: "Recognize text in a card image or PDF without storing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.OCRConfig(root.cfg.OCR)
			if progress {
				errOut := cmd.ErrOrStderr()
				cfg.Progress = func(stage string, p float32) {
					fmt.Fprintf(errOut, "%-12s %3.0f%%\n", stage, p*100)
				}
			}
			x := ocr.NewExtractor(cfg, root.logger)
			if !x.Available() {
				return fmt.Errorf("tesseract not found (%s)", root.cfg.OCR.Tesseract)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			res, err := x.Extract(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "give up after this long")
	cmd.Flags().BoolVar(&progress, "progress", false, "print recognition progress to stderr")
	return cmd
}
