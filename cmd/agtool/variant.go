package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/aggregate"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/annotation"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/dnaclient"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/export"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

// variantFlags identifies a single substitution variant.
type variantFlags struct {
	chrom string
	pos   int64
	ref   string
	alt   string
}

func (v *variantFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&v.chrom, "chrom", "", "Chromosome (e.g. chr22)")
	cmd.Flags().Int64Var(&v.pos, "pos", 0, "Variant position")
	cmd.Flags().StringVar(&v.ref, "ref", "", "Reference bases")
	cmd.Flags().StringVar(&v.alt, "alt", "", "Alternate bases")
	cmd.MarkFlagRequired("chrom")
	cmd.MarkFlagRequired("pos")
	cmd.MarkFlagRequired("ref")
	cmd.MarkFlagRequired("alt")
}

func (v *variantFlags) variant() (genome.Variant, error) {
	return genome.NewVariant(v.chrom, v.pos, v.ref, v.alt)
}

func newVariantEffectCmd() *cobra.Command {
	var (
		vf      variantFlags
		width   int64
		outputs []string
		tissues []string
	)

	cmd := &cobra.Command{
		Use:   "variant-effect",
		Short: "Compare reference and alternate predictions for a variant",
		Example: `  agtool variant-effect --chrom chr22 --pos 36201698 --ref A --alt C --tissue Lung
  agtool variant-effect --chrom chr22 --pos 36201698 --ref A --alt C --width 1048576`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, err := vf.variant()
			if err != nil {
				return err
			}
			requested, err := parseOutputs(outputs)
			if err != nil {
				return err
			}
			ontologyIDs, err := mapTissues(tissues)
			if err != nil {
				return err
			}
			organism, err := configuredOrganism()
			if err != nil {
				return err
			}

			interval, err := variant.ReferenceInterval().Resize(width)
			if err != nil {
				return err
			}

			client, err := backendClient()
			if err != nil {
				return err
			}

			variantOutput, err := client.PredictVariant(cmd.Context(), interval, variant, organism, requested, ontologyIDs)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Variant: %s\nInterval: %s\n", variant, interval)
			if err := reportGenesAt(cmd, interval, variant.Position); err != nil {
				logger.Warn("transcript annotation unavailable", zap.Error(err))
			}
			for _, ot := range requested {
				ref := variantOutput.Reference.Get(ot)
				alt := variantOutput.Alternate.Get(ot)
				if ref == nil || alt == nil {
					return fmt.Errorf("backend response missing requested output %s", ot)
				}
				d, err := aggregate.Diff(ref, alt)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s: mean diff %.6f, max diff %.6f, min diff %.6f\n", ot, d.Mean, d.Max, d.Min)
			}
			return nil
		},
	}

	vf.register(cmd)
	cmd.Flags().Int64Var(&width, "width", 1048576, "Context window width")
	cmd.Flags().StringSliceVar(&outputs, "output", []string{"RNA_SEQ"}, "Output types to request")
	cmd.Flags().StringSliceVar(&tissues, "tissue", []string{"Lung"}, "Tissue labels")
	return cmd
}

func newScoreVariantCmd() *cobra.Command {
	var (
		vf          variantFlags
		width       int64
		output      string
		scorerWidth int
		agg         string
		csvPath     string
	)

	cmd := &cobra.Command{
		Use:   "score-variant",
		Short: "Score a variant with a center-mask scorer",
		Example: `  agtool score-variant --chrom chr22 --pos 36201698 --ref A --alt C
  agtool score-variant --chrom chr22 --pos 36201698 --ref A --alt C --output ATAC --csv scores.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, err := vf.variant()
			if err != nil {
				return err
			}
			scorer, err := buildScorer(output, scorerWidth, agg)
			if err != nil {
				return err
			}

			interval, err := variant.ReferenceInterval().Resize(width)
			if err != nil {
				return err
			}

			client, err := backendClient()
			if err != nil {
				return err
			}

			records, err := client.ScoreVariant(cmd.Context(), interval, variant, []dnaclient.CenterMaskScorer{scorer})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Variant: %s\nInterval: %s\n", variant, interval)
			for _, r := range records {
				fmt.Fprintf(w, "%s %s: %d tracks, score %.6f\n", r.Output, r.Aggregation, len(r.Values), r.Score())
			}

			if csvPath == "" {
				return nil
			}
			out, closer, err := openOutput(csvPath)
			if err != nil {
				return err
			}
			defer closer()
			return export.WriteScoresCSV(out, records)
		},
	}

	vf.register(cmd)
	cmd.Flags().Int64Var(&width, "width", 1048576, "Context window width")
	cmd.Flags().StringVar(&output, "output", "RNA_SEQ", "Output type to score")
	cmd.Flags().IntVar(&scorerWidth, "scoring-width", 501, "Scoring window width")
	cmd.Flags().StringVar(&agg, "aggregation", "DIFF_MEAN", "Aggregation type")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write scores as CSV to this file")
	return cmd
}

// reportGenesAt prints the genes whose transcripts cover pos.
func reportGenesAt(cmd *cobra.Command, interval genome.Interval, pos int64) error {
	transcripts, err := annotationClient().TranscriptsOverlapping(cmd.Context(), interval)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	w := cmd.OutOrStdout()
	for _, t := range annotation.BuildIntervalTree(transcripts).At(pos) {
		if t.GeneName == "" || seen[t.GeneID] {
			continue
		}
		seen[t.GeneID] = true
		fmt.Fprintf(w, "  in gene %s (%s)\n", t.GeneName, t.GeneID)
	}
	return nil
}

// buildScorer validates and assembles the scorer configuration.
func buildScorer(output string, width int, agg string) (dnaclient.CenterMaskScorer, error) {
	ot, err := dnaclient.ParseOutputType(output)
	if err != nil {
		return dnaclient.CenterMaskScorer{}, err
	}
	at, err := dnaclient.ParseAggregationType(agg)
	if err != nil {
		return dnaclient.CenterMaskScorer{}, err
	}
	if width <= 0 {
		return dnaclient.CenterMaskScorer{}, fmt.Errorf("%w: scoring width %d", genome.ErrInvalidWidth, width)
	}
	return dnaclient.CenterMaskScorer{Output: ot, Width: width, Aggregation: at}, nil
}
