package ism

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/dnaclient"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

// sweepRecords fabricates score records for a width-4 sweep over "ACGT"
// with hand-picked scores per (offset, alt base).
func sweepRecords(t *testing.T, sweep genome.Interval) []dnaclient.ScoreRecord {
	t.Helper()

	variants, err := Expand(sweep, "ACGT")
	require.NoError(t, err)

	scores := map[string]float64{
		"100:C": 0.1, "100:G": -0.5, "100:T": 0.2,
		"101:A": 0.3, "101:G": 0.1, "101:T": -0.1,
		"102:A": 0.5, "102:C": -0.5, "102:T": 0.0,
		"103:A": 0.4, "103:C": 0.2, "103:G": 0.1,
	}

	records := make([]dnaclient.ScoreRecord, len(variants))
	for i, v := range variants {
		records[i] = dnaclient.ScoreRecord{
			Variant:     v,
			Output:      dnaclient.OutputRNASeq,
			Aggregation: dnaclient.AggDiffMean,
			Values:      []float64{scores[fmt.Sprintf("%d:%s", v.Position, v.Alt)]},
		}
	}
	return records
}

func TestBuildMatrix(t *testing.T) {
	sweep, err := genome.NewInterval("chr1", 100, 104)
	require.NoError(t, err)

	m, err := BuildMatrix(sweepRecords(t, sweep), sweep)
	require.NoError(t, err)
	require.Equal(t, 4, m.Width())

	// Exactly one sentinel per row, sitting on the reference base.
	refBases := []byte{'A', 'C', 'G', 'T'}
	for i := 0; i < 4; i++ {
		nan := 0
		for _, s := range m.Scores[i] {
			if math.IsNaN(s) {
				nan++
			}
		}
		assert.Equal(t, 1, nan, "row %d", i)
		assert.Equal(t, refBases[i], m.ReferenceBase(i))
	}

	// Spot-check cells: offset 0, alt G carries -0.5.
	assert.Equal(t, -0.5, m.Scores[0][genome.BaseIndex('G')])
}

func TestMatrix_DominantBase(t *testing.T) {
	sweep, _ := genome.NewInterval("chr1", 100, 104)
	m, err := BuildMatrix(sweepRecords(t, sweep), sweep)
	require.NoError(t, err)

	base, score := m.DominantBase(0)
	assert.Equal(t, byte('G'), base)
	assert.Equal(t, -0.5, score, "dominance is by absolute value, sign preserved")

	base, score = m.DominantBase(1)
	assert.Equal(t, byte('A'), base)
	assert.Equal(t, 0.3, score)

	base, score = m.DominantBase(3)
	assert.Equal(t, byte('A'), base)
	assert.Equal(t, 0.4, score)
}

func TestMatrix_TopPositions(t *testing.T) {
	sweep, _ := genome.NewInterval("chr1", 100, 104)
	m, err := BuildMatrix(sweepRecords(t, sweep), sweep)
	require.NoError(t, err)

	// |dominant| per offset: 0.5, 0.3, 0.5, 0.4. Offsets 0 and 2 tie,
	// lower offset wins.
	top := m.TopPositions(3)
	require.Len(t, top, 3)
	assert.Equal(t, 0, top[0].Offset)
	assert.Equal(t, 2, top[1].Offset)
	assert.Equal(t, 3, top[2].Offset)
	assert.Equal(t, int64(103), top[2].Position)

	all := m.TopPositions(100)
	assert.Len(t, all, 4, "k beyond width returns every position")
}

func TestMatrix_TopPositions_OutOfRangeK(t *testing.T) {
	sweep, _ := genome.NewInterval("chr1", 100, 104)
	m, err := BuildMatrix(sweepRecords(t, sweep), sweep)
	require.NoError(t, err)

	assert.Empty(t, m.TopPositions(-1))
	assert.Empty(t, m.TopPositions(0))
	assert.Len(t, m.TopPositions(100), 4)
}

func TestMatrix_MaxContribution(t *testing.T) {
	sweep, _ := genome.NewInterval("chr1", 100, 104)
	m, err := BuildMatrix(sweepRecords(t, sweep), sweep)
	require.NoError(t, err)
	assert.Equal(t, 0.5, m.MaxContribution())
}

func TestBuildMatrix_WrongCount(t *testing.T) {
	sweep, _ := genome.NewInterval("chr1", 100, 104)
	records := sweepRecords(t, sweep)

	_, err := BuildMatrix(records[:11], sweep)
	var incErr *IncompleteSweepError
	require.ErrorAs(t, err, &incErr)
	assert.Equal(t, 12, incErr.Want)
	assert.Equal(t, 11, incErr.Got)
}

func TestBuildMatrix_DuplicateRecord(t *testing.T) {
	sweep, _ := genome.NewInterval("chr1", 100, 104)
	records := sweepRecords(t, sweep)
	records[1] = records[0] // same cell twice, count still 12

	_, err := BuildMatrix(records, sweep)
	var incErr *IncompleteSweepError
	require.ErrorAs(t, err, &incErr)
	assert.Contains(t, incErr.Reason, "duplicate")
}

func TestBuildMatrix_ConflictingReference(t *testing.T) {
	sweep, _ := genome.NewInterval("chr1", 100, 104)
	records := sweepRecords(t, sweep)
	// Offset 0 claims ref A elsewhere; fill its A slot under ref G instead.
	records[0].Variant.Ref = "G"
	records[0].Variant.Alt = "A"

	_, err := BuildMatrix(records, sweep)
	var incErr *IncompleteSweepError
	require.ErrorAs(t, err, &incErr)
	assert.Contains(t, incErr.Reason, "conflicting reference")
}

func TestBuildMatrix_VariantOutsideSweep(t *testing.T) {
	sweep, _ := genome.NewInterval("chr1", 100, 104)
	records := sweepRecords(t, sweep)
	records[0].Variant.Position = 99

	_, err := BuildMatrix(records, sweep)
	var incErr *IncompleteSweepError
	require.ErrorAs(t, err, &incErr)
	assert.Contains(t, incErr.Reason, "outside sweep")
}

func TestBuildMatrix_NonSNV(t *testing.T) {
	sweep, _ := genome.NewInterval("chr1", 100, 104)
	records := sweepRecords(t, sweep)
	records[0].Variant.Alt = "CC"

	_, err := BuildMatrix(records, sweep)
	var incErr *IncompleteSweepError
	require.ErrorAs(t, err, &incErr)
	assert.Contains(t, incErr.Reason, "single-base")
}
