// Package aggregate computes summary and differential statistics over
// prediction tracks.
package aggregate

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/dnaclient"
)

// ErrEmptyTrack is returned when a differential is requested over tracks
// with no values.
var ErrEmptyTrack = errors.New("empty track")

// ShapeMismatchError reports reference/alternate tracks whose shapes differ.
// Mismatched shapes indicate a contract breach upstream and are always fatal
// to the analysis, never broadcast or truncated.
type ShapeMismatchError struct {
	RefPositions, RefChannels int
	AltPositions, AltChannels int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("track shape mismatch: reference (%d, %d) vs alternate (%d, %d)",
		e.RefPositions, e.RefChannels, e.AltPositions, e.AltChannels)
}

// Summary holds per-track summary statistics.
type Summary struct {
	Positions int
	Channels  int
	Mean      float64
}

// DiffStats holds element-wise alternate-minus-reference statistics.
type DiffStats struct {
	Mean float64
	Max  float64
	Min  float64
}

// Summarize computes the shape and grand mean of a track.
func Summarize(track *dnaclient.Track) Summary {
	s := Summary{Positions: track.Positions(), Channels: track.Channels()}
	n := s.Positions * s.Channels
	if n == 0 {
		return s
	}

	flat := make([]float64, 0, n)
	for _, row := range track.Values {
		flat = append(flat, row...)
	}
	s.Mean = stat.Mean(flat, nil)
	return s
}

// Diff computes element-wise alternate − reference statistics. Both tracks
// must have identical shapes; Diff(t, t) is exactly zero.
func Diff(ref, alt *dnaclient.Track) (DiffStats, error) {
	if ref.Positions() != alt.Positions() || ref.Channels() != alt.Channels() {
		return DiffStats{}, &ShapeMismatchError{
			RefPositions: ref.Positions(), RefChannels: ref.Channels(),
			AltPositions: alt.Positions(), AltChannels: alt.Channels(),
		}
	}

	n := ref.Positions() * ref.Channels()
	if n == 0 {
		return DiffStats{}, ErrEmptyTrack
	}

	diff := make([]float64, 0, n)
	for i, row := range ref.Values {
		altRow := alt.Values[i]
		if len(altRow) != len(row) {
			return DiffStats{}, &ShapeMismatchError{
				RefPositions: ref.Positions(), RefChannels: len(row),
				AltPositions: alt.Positions(), AltChannels: len(altRow),
			}
		}
		for j, rv := range row {
			diff = append(diff, altRow[j]-rv)
		}
	}

	return DiffStats{
		Mean: stat.Mean(diff, nil),
		Max:  floats.Max(diff),
		Min:  floats.Min(diff),
	}, nil
}
