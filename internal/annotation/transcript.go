package annotation

import "sort"

// Transcript is one gene isoform overlapping an analysis window. Coordinates
// follow the genome package convention (exclusive End).
type Transcript struct {
	ID          string
	GeneID      string
	GeneName    string
	Chromosome  string
	Start       int64
	End         int64
	Strand      int8
	Biotype     string
	IsCanonical bool
}

// Width returns the transcript length in bases.
func (t Transcript) Width() int64 {
	return t.End - t.Start
}

// IsProteinCoding reports whether the transcript has a coding biotype.
func (t Transcript) IsProteinCoding() bool {
	return t.Biotype == "protein_coding"
}

// LongestPerGene keeps only the longest transcript of each gene, preferring
// canonical transcripts on equal length, and returns them sorted by start
// position. This mirrors the conventional display filter for annotation
// panels over wide windows.
func LongestPerGene(transcripts []Transcript) []Transcript {
	best := make(map[string]Transcript)
	for _, t := range transcripts {
		cur, ok := best[t.GeneID]
		if !ok || t.Width() > cur.Width() || (t.Width() == cur.Width() && t.IsCanonical && !cur.IsCanonical) {
			best[t.GeneID] = t
		}
	}

	result := make([]Transcript, 0, len(best))
	for _, t := range best {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Start != result[j].Start {
			return result[i].Start < result[j].Start
		}
		return result[i].ID < result[j].ID
	})
	return result
}
