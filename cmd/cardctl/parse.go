package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/b2breeze/internal/app"
	"github.com/joseph-ayodele/b2breeze/internal/extract"
	"github.com/joseph-ayodele/b2breeze/internal/pipeline"
)

func newParseCommand(root *rootOptions) *cobra.Command {
	var (
		confidence float32
		refine     bool
	)
	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Extract contact fields from recognized card text",
		Long: `Runs the field extractor over plain text (a file, or stdin when the
argument is "-" or missing) and prints the result as JSON. Nothing is stored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			text, err := readInput(arg, cmd.InOrStdin())
			if err != nil {
				return err
			}

			opts := app.ExtractOptions(root.cfg)
			var refiner extract.FieldRefiner
			if refine {
				if refiner, err = app.NewRefiner(cmd.Context(), root.cfg.LLM, opts, root.logger); err != nil {
					return err
				}
			}
			an := pipeline.NewAnalyzer(opts, refiner, nil, root.logger)
			an.MinConfidence = root.cfg.Extract.MinConfidence
			res := an.Analyze(cmd.Context(), extract.Input{Text: string(text), Confidence: confidence})
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().Float32Var(&confidence, "confidence", 0, "OCR confidence (0..1) to attach to the text")
	cmd.Flags().BoolVar(&refine, "refine", false, "fill missing fields with the configured LLM")
	return cmd
}
