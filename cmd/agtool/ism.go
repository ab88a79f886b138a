package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/export"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/ism"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/store"
)

func newISMCmd() *cobra.Command {
	var (
		region       regionFlags
		contextWidth int64
		sweepWidth   int64
		output       string
		scorerWidth  int
		agg          string
		topK         int
		csvPath      string
		dbPath       string
		noCache      bool
	)

	cmd := &cobra.Command{
		Use:   "ism",
		Short: "Run in-silico mutagenesis over a sweep window",
		Long: `Scores every single-base substitution in a sweep window centered on the
target region and reports which positions contribute most to the prediction.
Scores are cached in a local DuckDB file so repeated runs over the same window
skip the backend.`,
		Example: `  agtool ism --gene KRAS --sweep-width 256
  agtool ism --chrom chr22 --start 36201698 --end 36201699 --sweep-width 128 --csv matrix.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := region.resolve(cmd.Context())
			if err != nil {
				return err
			}
			scorer, err := buildScorer(output, scorerWidth, agg)
			if err != nil {
				return err
			}

			contextIV, err := base.Resize(contextWidth)
			if err != nil {
				return err
			}
			sweep, err := base.Resize(sweepWidth)
			if err != nil {
				return err
			}
			if !contextIV.ContainsInterval(sweep) {
				return fmt.Errorf("%w: sweep width %d exceeds context width %d",
					genome.ErrInvalidWidth, sweepWidth, contextWidth)
			}

			var db *store.Store
			if !noCache {
				db, err = store.Open(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()

				cached, err := db.SweepScores(sweep, scorer)
				if err != nil {
					return err
				}
				if matrix, err := ism.BuildMatrix(cached, sweep); err == nil {
					logger.Info("using cached sweep scores",
						zap.String("sweep", sweep.String()),
						zap.Int("records", len(cached)))
					return reportMatrix(cmd, sweep, matrix, topK, csvPath)
				}
			}

			client, err := backendClient()
			if err != nil {
				return err
			}
			pipe := ism.NewPipeline(client, annotationClient(), logger,
				ism.WithConcurrency(viper.GetInt("concurrency")),
				ism.WithBatchSize(viper.GetInt("batch_size")))

			result, err := pipe.Run(cmd.Context(), base, contextWidth, sweepWidth, scorer)
			if err != nil {
				var partial *ism.PartialSweepError
				if errors.As(err, &partial) && db != nil && len(partial.Records) > 0 {
					if werr := db.WriteScores(partial.Records, scorer); werr != nil {
						logger.Warn("caching partial sweep failed", zap.Error(werr))
					} else {
						logger.Info("cached partial sweep",
							zap.Int("records", len(partial.Records)))
					}
				}
				return err
			}

			if db != nil {
				if werr := db.WriteScores(result.Records, scorer); werr != nil {
					logger.Warn("caching sweep scores failed", zap.Error(werr))
				}
			}
			return reportMatrix(cmd, result.Sweep, result.Matrix, topK, csvPath)
		},
	}

	region.register(cmd)
	cmd.Flags().Int64Var(&contextWidth, "width", 131072, "Context window width")
	cmd.Flags().Int64Var(&sweepWidth, "sweep-width", 256, "Sweep window width")
	cmd.Flags().StringVar(&output, "output", "RNA_SEQ", "Output type to score")
	cmd.Flags().IntVar(&scorerWidth, "scoring-width", 501, "Scoring window width")
	cmd.Flags().StringVar(&agg, "aggregation", "DIFF_MEAN", "Aggregation type")
	cmd.Flags().IntVar(&topK, "top", 10, "Number of top positions to report")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the contribution matrix as CSV to this file")
	cmd.Flags().StringVar(&dbPath, "db", defaultStorePath(), "Score cache database")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the score cache")
	return cmd
}

func reportMatrix(cmd *cobra.Command, sweep genome.Interval, matrix *ism.ContributionMatrix, topK int, csvPath string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Sweep: %s (%d positions)\n", sweep, matrix.Width())
	fmt.Fprintf(w, "Max contribution: %.6f\n", matrix.MaxContribution())
	fmt.Fprintln(w, "Top positions:")
	for _, pc := range matrix.TopPositions(topK) {
		fmt.Fprintf(w, "  %s:%d %c -> %c  %.6f\n",
			sweep.Chromosome, pc.Position, matrix.ReferenceBase(pc.Offset), pc.Base, pc.Score)
	}

	if csvPath == "" {
		return nil
	}
	out, closer, err := openOutput(csvPath)
	if err != nil {
		return err
	}
	defer closer()
	return export.WriteMatrixCSV(out, matrix)
}
