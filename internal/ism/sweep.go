package ism

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/dnaclient"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

// PartialSweepError carries the score records completed before a sweep was
// interrupted, either by cancellation or a backend failure.
type PartialSweepError struct {
	Records []dnaclient.ScoreRecord
	Err     error
}

func (e *PartialSweepError) Error() string {
	return fmt.Sprintf("ism sweep interrupted after %d records: %v", len(e.Records), e.Err)
}

func (e *PartialSweepError) Unwrap() error {
	return e.Err
}

// Sweeper dispatches scoring requests for an expanded variant set against
// the backend. Variants within a batch are scored concurrently by a bounded
// worker pool; batches run sequentially so cancellation takes effect between
// batches, never mid-batch.
type Sweeper struct {
	client      dnaclient.VariantScorer
	scorer      dnaclient.CenterMaskScorer
	concurrency int
	batchSize   int
	logger      *zap.Logger
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithConcurrency bounds the number of in-flight backend requests.
func WithConcurrency(n int) SweeperOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithBatchSize sets how many variants are scored between cancellation
// checks.
func WithBatchSize(n int) SweeperOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithSweepLogger sets the logger for batch progress.
func WithSweepLogger(l *zap.Logger) SweeperOption {
	return func(s *Sweeper) { s.logger = l }
}

// NewSweeper creates a sweep runner using the given backend client and
// scorer configuration.
func NewSweeper(client dnaclient.VariantScorer, scorer dnaclient.CenterMaskScorer, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		client:      client,
		scorer:      scorer,
		concurrency: 4,
		batchSize:   64,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scores every variant within the shared sequence context and returns
// the records in variant order. On cancellation or backend failure it
// returns a PartialSweepError holding the records of all completed batches.
func (s *Sweeper) Run(ctx context.Context, contextInterval genome.Interval, variants []genome.Variant) ([]dnaclient.ScoreRecord, error) {
	records := make([]dnaclient.ScoreRecord, 0, len(variants))

	for start := 0; start < len(variants); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, &PartialSweepError{Records: records, Err: err}
		}

		end := min(start+s.batchSize, len(variants))
		batch, err := s.scoreBatch(ctx, contextInterval, variants[start:end])
		records = append(records, batch...)
		if err != nil {
			return nil, &PartialSweepError{Records: records, Err: err}
		}

		s.logger.Debug("ism batch scored",
			zap.Int("completed", len(records)),
			zap.Int("total", len(variants)))
	}

	return records, nil
}

type sweepItem struct {
	seq     int
	variant genome.Variant
}

type sweepResult struct {
	seq     int
	records []dnaclient.ScoreRecord
	err     error
}

// scoreBatch scores one batch with a bounded worker pool and returns the
// records in variant order up to the first failure.
func (s *Sweeper) scoreBatch(ctx context.Context, contextInterval genome.Interval, batch []genome.Variant) ([]dnaclient.ScoreRecord, error) {
	workers := min(s.concurrency, len(batch))

	items := make(chan sweepItem, len(batch))
	for i, v := range batch {
		items <- sweepItem{seq: i, variant: v}
	}
	close(items)

	results := make(chan sweepResult, len(batch))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for item := range items {
				recs, err := s.client.ScoreVariant(ctx, contextInterval, item.variant, []dnaclient.CenterMaskScorer{s.scorer})
				if err != nil {
					err = fmt.Errorf("score variant %s: %w", item.variant, err)
				}
				results <- sweepResult{seq: item.seq, records: recs, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]sweepResult, len(batch))
	for r := range results {
		ordered[r.seq] = r
	}

	var records []dnaclient.ScoreRecord
	for _, r := range ordered {
		if r.err != nil {
			return records, r.err
		}
		records = append(records, r.records...)
	}
	return records, nil
}
