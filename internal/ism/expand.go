// Package ism implements the in-silico mutagenesis pipeline: enumerating
// every single-base substitution over a sweep window, dispatching scoring
// requests against the prediction backend, and folding the per-variant
// scores into a position-by-base contribution matrix.
package ism

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

// AmbiguousBaseError reports a reference base outside ACGT (typically N)
// inside the sweep window. Such positions cannot be mutagenized.
type AmbiguousBaseError struct {
	Position int64
	Base     byte
}

func (e *AmbiguousBaseError) Error() string {
	return fmt.Sprintf("ambiguous reference base %q at position %d", e.Base, e.Position)
}

// SequenceProvider fetches the reference sequence for an interval.
type SequenceProvider interface {
	SequenceFor(ctx context.Context, interval genome.Interval) (string, error)
}

// Expand enumerates every single-base substitution over the sweep window.
// sequence must be the reference sequence of exactly that window. The
// enumeration order is deterministic: ascending position, then the fixed
// A, C, G, T base order with the reference base skipped, so the result
// always holds 3 × width variants and downstream matrix folding can recover
// (position, base) from the sequential index.
func Expand(sweep genome.Interval, sequence string) ([]genome.Variant, error) {
	if int64(len(sequence)) != sweep.Width() {
		return nil, fmt.Errorf("%w: sequence length %d does not match sweep width %d",
			genome.ErrInvalidWidth, len(sequence), sweep.Width())
	}

	variants := make([]genome.Variant, 0, 3*len(sequence))
	for i := 0; i < len(sequence); i++ {
		ref := sequence[i]
		if genome.BaseIndex(ref) < 0 {
			return nil, &AmbiguousBaseError{Position: sweep.Start + int64(i), Base: ref}
		}
		for _, alt := range genome.Bases {
			if alt == ref {
				continue
			}
			variants = append(variants, genome.Variant{
				Chromosome: sweep.Chromosome,
				Position:   sweep.Start + int64(i),
				Ref:        string(ref),
				Alt:        string(alt),
			})
		}
	}
	return variants, nil
}

// ExpandWindow centers a sweep window of sweepWidth inside base, fetches its
// reference sequence, and expands it into substitution variants. The sweep
// window must fit inside the enclosing context interval.
func ExpandWindow(ctx context.Context, base genome.Interval, sweepWidth int64, seqs SequenceProvider) (genome.Interval, []genome.Variant, error) {
	if sweepWidth <= 0 || sweepWidth > base.Width() {
		return genome.Interval{}, nil, fmt.Errorf("%w: sweep width %d must be in [1, %d]",
			genome.ErrInvalidWidth, sweepWidth, base.Width())
	}

	sweep, err := base.Resize(sweepWidth)
	if err != nil {
		return genome.Interval{}, nil, err
	}

	seq, err := seqs.SequenceFor(ctx, sweep)
	if err != nil {
		return genome.Interval{}, nil, fmt.Errorf("fetch sweep sequence %s: %w", sweep, err)
	}

	variants, err := Expand(sweep, strings.ToUpper(seq))
	if err != nil {
		return genome.Interval{}, nil, err
	}
	return sweep, variants, nil
}
