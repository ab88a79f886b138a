package genome

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidVariant is returned for malformed variant definitions.
var ErrInvalidVariant = errors.New("invalid variant")

// Bases lists the four DNA bases in the fixed order used everywhere a
// (position, base) pair must round-trip through a flat index.
var Bases = [4]byte{'A', 'C', 'G', 'T'}

// BaseIndex returns the index of b in Bases, or -1 for any other byte.
func BaseIndex(b byte) int {
	switch b {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	}
	return -1
}

// Variant is a substitution of Ref by Alt at Position on Chromosome.
type Variant struct {
	Chromosome string `json:"chromosome"`
	Position   int64  `json:"position"`
	Ref        string `json:"reference_bases"`
	Alt        string `json:"alternate_bases"`
}

// NewVariant validates and creates a Variant. Ref and Alt must be non-empty
// uppercase ACGT strings and must differ.
func NewVariant(chrom string, pos int64, ref, alt string) (Variant, error) {
	if chrom == "" {
		return Variant{}, fmt.Errorf("%w: empty chromosome", ErrInvalidVariant)
	}
	if pos < 1 {
		return Variant{}, fmt.Errorf("%w: position %d < 1", ErrInvalidVariant, pos)
	}
	for _, s := range []string{ref, alt} {
		if s == "" {
			return Variant{}, fmt.Errorf("%w: empty allele", ErrInvalidVariant)
		}
		for i := 0; i < len(s); i++ {
			if BaseIndex(s[i]) < 0 {
				return Variant{}, fmt.Errorf("%w: allele %q contains non-ACGT base", ErrInvalidVariant, s)
			}
		}
	}
	if ref == alt {
		return Variant{}, fmt.Errorf("%w: ref equals alt (%s)", ErrInvalidVariant, ref)
	}
	return Variant{Chromosome: chrom, Position: pos, Ref: ref, Alt: alt}, nil
}

// IsSNV reports whether the variant is a single nucleotide substitution.
func (v Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// ReferenceInterval returns the interval spanned by the reference allele.
func (v Variant) ReferenceInterval() Interval {
	return Interval{Chromosome: v.Chromosome, Start: v.Position, End: v.Position + int64(len(v.Ref))}
}

// NormalizeChrom returns the chromosome name without a "chr" prefix.
func (v Variant) NormalizeChrom() string {
	return strings.TrimPrefix(v.Chromosome, "chr")
}

// String formats the variant as chrom:pos:ref>alt.
func (v Variant) String() string {
	return fmt.Sprintf("%s:%d:%s>%s", v.Chromosome, v.Position, v.Ref, v.Alt)
}
