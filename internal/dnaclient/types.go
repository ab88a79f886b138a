package dnaclient

import (
	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

// TrackMetadata describes one channel of a track.
type TrackMetadata struct {
	Name       string `json:"name"`
	OntologyID string `json:"ontology_id"`
	Assay      string `json:"assay"`
	Strand     string `json:"strand,omitempty"`
}

// Track is a numeric signal over genomic positions and channels. The core
// only reads track values, never mutates them.
type Track struct {
	Interval genome.Interval `json:"interval"`
	// Values has one row per sequence position and one column per channel.
	Values   [][]float64     `json:"values"`
	Metadata []TrackMetadata `json:"metadata"`
}

// Positions returns the number of sequence positions in the track.
func (t *Track) Positions() int {
	return len(t.Values)
}

// Channels returns the number of channels in the track.
func (t *Track) Channels() int {
	if len(t.Values) == 0 {
		return len(t.Metadata)
	}
	return len(t.Values[0])
}

// PredictionOutput maps each requested output type to its track.
type PredictionOutput map[OutputType]*Track

// Get returns the track for an output type, or nil if absent.
func (p PredictionOutput) Get(ot OutputType) *Track {
	return p[ot]
}

// VariantOutput pairs the reference and alternate predictions for one
// variant. Both sides share the same interval and channel layout; every
// differential computation depends on that pairing.
type VariantOutput struct {
	Reference PredictionOutput `json:"reference"`
	Alternate PredictionOutput `json:"alternate"`
}

// ScoreRecord is one scorer result for a single variant: one scalar per
// channel, with a back-reference to the originating variant.
type ScoreRecord struct {
	Variant     genome.Variant  `json:"variant"`
	Output      OutputType      `json:"output"`
	Aggregation AggregationType `json:"aggregation"`
	Values      []float64       `json:"values"`
	Metadata    []TrackMetadata `json:"metadata,omitempty"`
}

// Score returns the scalar for the first channel, the conventional choice
// when a single per-variant number is needed.
func (r ScoreRecord) Score() float64 {
	if len(r.Values) == 0 {
		return 0
	}
	return r.Values[0]
}

// CenterMaskScorer configures variant scoring: track values inside a window
// of Width bases centered on the variant are folded by Aggregation.
type CenterMaskScorer struct {
	Output      OutputType      `json:"requested_output"`
	Width       int             `json:"width"`
	Aggregation AggregationType `json:"aggregation_type"`
}
