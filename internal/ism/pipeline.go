package ism

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/dnaclient"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

// Result holds the output of a full ISM analysis.
type Result struct {
	Context genome.Interval
	Sweep   genome.Interval
	Records []dnaclient.ScoreRecord
	Matrix  *ContributionMatrix
}

// Pipeline runs the full ISM analysis: center the context and sweep windows,
// expand substitutions, score them in batches, and fold the scores into a
// contribution matrix.
type Pipeline struct {
	client dnaclient.VariantScorer
	seqs   SequenceProvider
	logger *zap.Logger
	sweep  []SweeperOption
}

// NewPipeline creates an ISM pipeline. Sweeper options control concurrency
// and batch size of the scoring stage.
func NewPipeline(client dnaclient.VariantScorer, seqs SequenceProvider, logger *zap.Logger, opts ...SweeperOption) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{client: client, seqs: seqs, logger: logger, sweep: opts}
}

// Run analyzes base with the given context and sweep widths. All input
// validation happens before the first backend call.
func (p *Pipeline) Run(ctx context.Context, base genome.Interval, contextWidth, sweepWidth int64, scorer dnaclient.CenterMaskScorer) (*Result, error) {
	if sweepWidth > contextWidth {
		return nil, fmt.Errorf("%w: sweep width %d exceeds context width %d",
			genome.ErrInvalidWidth, sweepWidth, contextWidth)
	}

	contextIV, err := base.Resize(contextWidth)
	if err != nil {
		return nil, fmt.Errorf("resize context window: %w", err)
	}

	sweep, variants, err := ExpandWindow(ctx, contextIV, sweepWidth, p.seqs)
	if err != nil {
		return nil, err
	}

	p.logger.Info("ism sweep expanded",
		zap.Stringer("context", contextIV),
		zap.Stringer("sweep", sweep),
		zap.Int("variants", len(variants)))

	opts := append([]SweeperOption{WithSweepLogger(p.logger)}, p.sweep...)
	records, err := NewSweeper(p.client, scorer, opts...).Run(ctx, contextIV, variants)
	if err != nil {
		return nil, err
	}

	matrix, err := BuildMatrix(records, sweep)
	if err != nil {
		return nil, err
	}

	return &Result{Context: contextIV, Sweep: sweep, Records: records, Matrix: matrix}, nil
}
