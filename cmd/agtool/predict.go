package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/aggregate"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/annotation"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/dnaclient"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/export"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

func newPredictSequenceCmd() *cobra.Command {
	var (
		length  int
		outputs []string
		tissues []string
		csvPath string
	)

	cmd := &cobra.Command{
		Use:   "predict-sequence <sequence>",
		Short: "Predict genomic signals over a raw DNA sequence",
		Example: `  agtool predict-sequence --output RNA_SEQ --tissue Lung ACGTACGT...
  agtool predict-sequence --output ATAC --csv atac.csv $(cat seq.txt)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sequence := strings.ToUpper(args[0])
			for i := 0; i < len(sequence); i++ {
				if genome.BaseIndex(sequence[i]) < 0 && sequence[i] != 'N' {
					return fmt.Errorf("sequence contains invalid base %q at offset %d", sequence[i], i)
				}
			}
			sequence, err := genome.CenterPad(sequence, length)
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
			client, err := backendClient()
			if err != nil {
				return err
			}

			output, err := client.PredictSequence(cmd.Context(), sequence, organism, requested, ontologyIDs)
			if err != nil {
				return err
			}
			return reportPrediction(cmd, output, requested, csvPath)
		},
	}

	cmd.Flags().IntVar(&length, "length", 2048, "Model sequence length; shorter input is centered and padded with N")
	cmd.Flags().StringSliceVar(&outputs, "output", []string{"RNA_SEQ"}, "Output types to request")
	cmd.Flags().StringSliceVar(&tissues, "tissue", []string{"Lung"}, "Tissue labels")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write track values as CSV to this file")
	return cmd
}

func newPredictIntervalCmd() *cobra.Command {
	var (
		region  regionFlags
		width   int64
		outputs []string
		tissues []string
		csvPath string
	)

	cmd := &cobra.Command{
		Use:   "predict-interval",
		Short: "Predict genomic signals over a genomic interval",
		Example: `  agtool predict-interval --chrom chr22 --start 36100000 --end 36300000 --output RNA_SEQ --tissue Lung
  agtool predict-interval --gene KRAS --width 131072 --output ATAC`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			interval, err := region.resolve(cmd.Context())
			if err != nil {
				return err
			}
			interval, err = interval.Resize(width)
			if err != nil {
				return err
			}

			client, err := backendClient()
			if err != nil {
				return err
			}

			output, err := client.PredictInterval(cmd.Context(), interval, organism, requested, ontologyIDs)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Interval: %s\n", interval)
			if err := reportTranscripts(cmd, interval); err != nil {
				logger.Warn("transcript annotation unavailable", zap.Error(err))
			}
			return reportPrediction(cmd, output, requested, csvPath)
		},
	}

	region.register(cmd)
	cmd.Flags().Int64Var(&width, "width", 131072, "Context window width")
	cmd.Flags().StringSliceVar(&outputs, "output", []string{"RNA_SEQ"}, "Output types to request")
	cmd.Flags().StringSliceVar(&tissues, "tissue", []string{"Lung"}, "Tissue labels")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write track values as CSV to this file")
	return cmd
}

// reportPrediction prints per-track summary statistics and optionally
// exports the first track as CSV.
func reportPrediction(cmd *cobra.Command, output dnaclient.PredictionOutput, requested []dnaclient.OutputType, csvPath string) error {
	w := cmd.OutOrStdout()
	for _, ot := range requested {
		track := output.Get(ot)
		if track == nil {
			return fmt.Errorf("backend response missing requested output %s", ot)
		}
		s := aggregate.Summarize(track)
		fmt.Fprintf(w, "%s: %d positions, %d tracks, mean %.4f\n", ot, s.Positions, s.Channels, s.Mean)
	}

	if csvPath == "" {
		return nil
	}
	out, closer, err := openOutput(csvPath)
	if err != nil {
		return err
	}
	defer closer()
	return export.WriteTrackCSV(out, output.Get(requested[0]))
}

// reportTranscripts prints the longest transcript of each gene overlapping
// the interval.
func reportTranscripts(cmd *cobra.Command, interval genome.Interval) error {
	transcripts, err := annotationClient().TranscriptsOverlapping(cmd.Context(), interval)
	if err != nil {
		return err
	}

	var coding []annotation.Transcript
	for _, t := range transcripts {
		if t.IsProteinCoding() {
			coding = append(coding, t)
		}
	}

	w := cmd.OutOrStdout()
	for _, t := range annotation.LongestPerGene(coding) {
		fmt.Fprintf(w, "  gene %s (%s) %s:%d-%d\n", t.GeneName, t.ID, t.Chromosome, t.Start, t.End)
	}
	return nil
}
