// Package genome provides genomic interval and variant value types.
//
// Coordinates follow the prediction backend's convention: Interval.Start is
// the coordinate of the first base and End is exclusive (End = Start + Width).
// Variant.Position uses the same numbering, so a variant's reference interval
// starts exactly at its position. All types are immutable after construction;
// Resize returns a new Interval.
package genome

import (
	"errors"
	"fmt"
)

// Sentinel errors for interval and width validation.
var (
	ErrInvalidInterval = errors.New("invalid interval")
	ErrInvalidWidth    = errors.New("invalid width")
)

// Interval is a contiguous genomic range on one chromosome.
type Interval struct {
	Chromosome string `json:"chromosome"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
}

// NewInterval validates and creates an Interval.
func NewInterval(chrom string, start, end int64) (Interval, error) {
	if chrom == "" {
		return Interval{}, fmt.Errorf("%w: empty chromosome", ErrInvalidInterval)
	}
	if start < 0 {
		return Interval{}, fmt.Errorf("%w: negative start %d", ErrInvalidInterval, start)
	}
	if start >= end {
		return Interval{}, fmt.Errorf("%w: start %d >= end %d", ErrInvalidInterval, start, end)
	}
	return Interval{Chromosome: chrom, Start: start, End: end}, nil
}

// Width returns the number of bases covered by the interval.
func (i Interval) Width() int64 {
	return i.End - i.Start
}

// Center returns the interval midpoint, rounding toward Start.
func (i Interval) Center() int64 {
	return (i.Start + i.End) / 2
}

// Resize returns a new interval of the given width centered on the midpoint
// of the receiver. When the width change is odd the extra base goes to the
// right side. Resizing to the current width returns an equal interval.
func (i Interval) Resize(width int64) (Interval, error) {
	if width <= 0 {
		return Interval{}, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	start := i.Center() - width/2
	if start < 0 {
		return Interval{}, fmt.Errorf("%w: resized interval extends past chromosome start (start %d)", ErrInvalidInterval, start)
	}
	return Interval{Chromosome: i.Chromosome, Start: start, End: start + width}, nil
}

// Contains reports whether pos falls inside the interval.
func (i Interval) Contains(pos int64) bool {
	return pos >= i.Start && pos < i.End
}

// ContainsInterval reports whether other lies entirely inside the interval.
func (i Interval) ContainsInterval(other Interval) bool {
	return i.Chromosome == other.Chromosome && other.Start >= i.Start && other.End <= i.End
}

// Overlaps reports whether the two intervals share at least one base.
func (i Interval) Overlaps(other Interval) bool {
	return i.Chromosome == other.Chromosome && i.Start < other.End && other.Start < i.End
}

// String formats the interval as chrom:start-end.
func (i Interval) String() string {
	return fmt.Sprintf("%s:%d-%d", i.Chromosome, i.Start, i.End)
}
