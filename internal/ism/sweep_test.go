package ism

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/dnaclient"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

// fakeScorer returns one record per call scoring the variant by its alt
// base index, failing on variants listed in failAt.
type fakeScorer struct {
	mu          sync.Mutex
	calls       int
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	failAt      map[string]error
}

func (f *fakeScorer) ScoreVariant(_ context.Context, _ genome.Interval, v genome.Variant, scorers []dnaclient.CenterMaskScorer) ([]dnaclient.ScoreRecord, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		prev := f.maxInFlight.Load()
		if cur <= prev || f.maxInFlight.CompareAndSwap(prev, cur) {
			break
		}
	}

	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if err, ok := f.failAt[v.String()]; ok {
		return nil, err
	}

	return []dnaclient.ScoreRecord{{
		Variant:     v,
		Output:      scorers[0].Output,
		Aggregation: scorers[0].Aggregation,
		Values:      []float64{float64(genome.BaseIndex(v.Alt[0]))},
	}}, nil
}

func testVariants(t *testing.T, width int64) (genome.Interval, []genome.Variant) {
	t.Helper()
	sweep, err := genome.NewInterval("chr1", 1000, 1000+width)
	require.NoError(t, err)

	seq := make([]byte, width)
	for i := range seq {
		seq[i] = genome.Bases[i%4]
	}
	variants, err := Expand(sweep, string(seq))
	require.NoError(t, err)
	return sweep, variants
}

var testScorer = dnaclient.CenterMaskScorer{
	Output:      dnaclient.OutputRNASeq,
	Width:       501,
	Aggregation: dnaclient.AggDiffMean,
}

func TestSweeper_Run(t *testing.T) {
	sweep, variants := testVariants(t, 16)
	contextIV, err := sweep.Resize(2048)
	require.NoError(t, err)

	scorer := &fakeScorer{}
	s := NewSweeper(scorer, testScorer, WithConcurrency(4), WithBatchSize(8))

	records, err := s.Run(context.Background(), contextIV, variants)
	require.NoError(t, err)
	require.Len(t, records, len(variants))
	assert.Equal(t, len(variants), scorer.calls, "one request per variant")

	// Records come back in variant order regardless of worker scheduling.
	for i, r := range records {
		assert.Equal(t, variants[i], r.Variant, "record %d", i)
	}

	// The result feeds straight into the matrix builder.
	m, err := BuildMatrix(records, sweep)
	require.NoError(t, err)
	assert.Equal(t, 16, m.Width())
}

func TestSweeper_ConcurrencyBound(t *testing.T) {
	_, variants := testVariants(t, 32)
	contextIV, _ := genome.NewInterval("chr1", 0, 4096)

	scorer := &fakeScorer{}
	s := NewSweeper(scorer, testScorer, WithConcurrency(3), WithBatchSize(32))

	_, err := s.Run(context.Background(), contextIV, variants)
	require.NoError(t, err)
	assert.LessOrEqual(t, scorer.maxInFlight.Load(), int32(3))
}

func TestSweeper_CancelledBeforeStart(t *testing.T) {
	_, variants := testVariants(t, 8)
	contextIV, _ := genome.NewInterval("chr1", 0, 4096)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSweeper(&fakeScorer{}, testScorer)
	_, err := s.Run(ctx, contextIV, variants)

	var partial *PartialSweepError
	require.ErrorAs(t, err, &partial)
	assert.Empty(t, partial.Records)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweeper_BackendFailureKeepsCompletedBatches(t *testing.T) {
	_, variants := testVariants(t, 8) // 24 variants
	contextIV, _ := genome.NewInterval("chr1", 0, 4096)

	backendErr := errors.New("backend unreachable")
	failing := variants[12] // first variant of the second batch
	scorer := &fakeScorer{failAt: map[string]error{failing.String(): backendErr}}

	s := NewSweeper(scorer, testScorer, WithConcurrency(2), WithBatchSize(12))
	_, err := s.Run(context.Background(), contextIV, variants)

	var partial *PartialSweepError
	require.ErrorAs(t, err, &partial)
	assert.ErrorIs(t, err, backendErr)
	assert.Len(t, partial.Records, 12, "first batch completed, failure stops the sweep")
	for i, r := range partial.Records {
		assert.Equal(t, variants[i], r.Variant)
	}
}

type pipelineSeqs struct{}

func (pipelineSeqs) SequenceFor(_ context.Context, iv genome.Interval) (string, error) {
	seq := make([]byte, iv.Width())
	for i := range seq {
		seq[i] = genome.Bases[i%4]
	}
	return string(seq), nil
}

func TestPipeline_Run(t *testing.T) {
	base, err := genome.NewInterval("chr20", 3753000, 3753400)
	require.NoError(t, err)

	p := NewPipeline(&fakeScorer{}, pipelineSeqs{}, nil, WithBatchSize(16))
	res, err := p.Run(context.Background(), base, 2048, 16, testScorer)
	require.NoError(t, err)

	assert.Equal(t, int64(2048), res.Context.Width())
	assert.Equal(t, int64(16), res.Sweep.Width())
	assert.True(t, res.Context.ContainsInterval(res.Sweep))
	assert.Len(t, res.Records, 48)
	assert.Equal(t, 16, res.Matrix.Width())
}

func TestPipeline_SweepWiderThanContext(t *testing.T) {
	base, _ := genome.NewInterval("chr20", 3753000, 3753400)

	p := NewPipeline(&fakeScorer{}, pipelineSeqs{}, nil)
	_, err := p.Run(context.Background(), base, 256, 2048, testScorer)
	assert.ErrorIs(t, err, genome.ErrInvalidWidth)
}
