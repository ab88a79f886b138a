package ism

import (
	"fmt"
	"math"
	"sort"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/dnaclient"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

// IncompleteSweepError reports a mismatch between the score records received
// and the 3 × width substitutions an ISM sweep must produce. It indicates
// records were dropped, duplicated, or mis-addressed by the dispatcher and
// is always fatal to the analysis.
type IncompleteSweepError struct {
	Want   int
	Got    int
	Reason string
}

func (e *IncompleteSweepError) Error() string {
	return fmt.Sprintf("incomplete ism sweep (want %d records, got %d): %s", e.Want, e.Got, e.Reason)
}

// ContributionMatrix holds one signed contribution score per (position
// offset, base) cell of an ISM sweep. The cell of each position's reference
// base is NaN: the reference base is never mutated, and NaN keeps "no score"
// distinguishable from a genuine zero effect. Immutable once built.
type ContributionMatrix struct {
	Interval genome.Interval
	Scores   [][4]float64
}

// PositionContribution is the dominant-base call for one sweep position.
type PositionContribution struct {
	Offset   int
	Position int64
	Base     byte
	Score    float64
}

// BuildMatrix folds per-variant score records back into a (width, 4) matrix.
// Each record's cell is recovered from its originating variant relative to
// sweep.Start. Exactly 3 × width records covering every non-reference cell
// are required.
func BuildMatrix(records []dnaclient.ScoreRecord, sweep genome.Interval) (*ContributionMatrix, error) {
	width := int(sweep.Width())
	want := 3 * width
	if len(records) != want {
		return nil, &IncompleteSweepError{Want: want, Got: len(records), Reason: "wrong record count"}
	}

	scores := make([][4]float64, width)
	refs := make([]int, width)
	for i := range scores {
		scores[i] = [4]float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}
		refs[i] = -1
	}

	for _, r := range records {
		v := r.Variant
		if !v.IsSNV() {
			return nil, &IncompleteSweepError{Want: want, Got: len(records),
				Reason: fmt.Sprintf("variant %s is not a single-base substitution", v)}
		}
		if v.Chromosome != sweep.Chromosome || !sweep.Contains(v.Position) {
			return nil, &IncompleteSweepError{Want: want, Got: len(records),
				Reason: fmt.Sprintf("variant %s outside sweep %s", v, sweep)}
		}
		altIdx := genome.BaseIndex(v.Alt[0])
		refIdx := genome.BaseIndex(v.Ref[0])
		if altIdx < 0 || refIdx < 0 || altIdx == refIdx {
			return nil, &IncompleteSweepError{Want: want, Got: len(records),
				Reason: fmt.Sprintf("variant %s has invalid alleles", v)}
		}

		offset := int(v.Position - sweep.Start)
		if refs[offset] >= 0 && refs[offset] != refIdx {
			return nil, &IncompleteSweepError{Want: want, Got: len(records),
				Reason: fmt.Sprintf("conflicting reference base at position %d", v.Position)}
		}
		refs[offset] = refIdx
		if !math.IsNaN(scores[offset][altIdx]) {
			return nil, &IncompleteSweepError{Want: want, Got: len(records),
				Reason: fmt.Sprintf("duplicate record for %s", v)}
		}
		scores[offset][altIdx] = r.Score()
	}

	// With the count, duplicate, and reference-consistency checks above,
	// each row now has exactly one NaN: the reference base slot.
	return &ContributionMatrix{Interval: sweep, Scores: scores}, nil
}

// Width returns the number of sweep positions.
func (m *ContributionMatrix) Width() int {
	return len(m.Scores)
}

// ReferenceBase returns the reference base at a sweep offset, identified by
// its sentinel slot.
func (m *ContributionMatrix) ReferenceBase(offset int) byte {
	for i, s := range m.Scores[offset] {
		if math.IsNaN(s) {
			return genome.Bases[i]
		}
	}
	return 0
}

// DominantBase returns the alternate base with the largest absolute
// contribution at a sweep offset, together with its signed score.
func (m *ContributionMatrix) DominantBase(offset int) (byte, float64) {
	best := -1
	for i, s := range m.Scores[offset] {
		if math.IsNaN(s) {
			continue
		}
		if best < 0 || math.Abs(s) > math.Abs(m.Scores[offset][best]) {
			best = i
		}
	}
	if best < 0 {
		return 0, math.NaN()
	}
	return genome.Bases[best], m.Scores[offset][best]
}

// TopPositions returns the k positions with the largest absolute dominant
// contribution, ties broken by lower offset. Negative k returns no
// positions; k larger than the width returns all positions.
func (m *ContributionMatrix) TopPositions(k int) []PositionContribution {
	all := make([]PositionContribution, m.Width())
	for i := range m.Scores {
		base, score := m.DominantBase(i)
		all[i] = PositionContribution{
			Offset:   i,
			Position: m.Interval.Start + int64(i),
			Base:     base,
			Score:    score,
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		ai, aj := math.Abs(all[i].Score), math.Abs(all[j].Score)
		if ai != aj {
			return ai > aj
		}
		return all[i].Offset < all[j].Offset
	})

	if k < 0 {
		k = 0
	}
	if k < len(all) {
		all = all[:k]
	}
	return all
}

// MaxContribution returns the largest score in the matrix, ignoring
// sentinel entries.
func (m *ContributionMatrix) MaxContribution() float64 {
	max := math.Inf(-1)
	for _, row := range m.Scores {
		for _, s := range row {
			if !math.IsNaN(s) && s > max {
				max = s
			}
		}
	}
	return max
}
