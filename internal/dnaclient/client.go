package dnaclient

import (
	"context"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

// Client is the prediction backend contract. All calls are potentially
// high-latency remote operations; callers must treat every call as fallible
// and must not assume retries are free of side effects.
type Client interface {
	// PredictSequence runs prediction over a raw DNA sequence.
	PredictSequence(ctx context.Context, sequence string, organism Organism, outputs []OutputType, ontologyIDs []string) (PredictionOutput, error)

	// PredictInterval runs prediction over a genomic interval.
	PredictInterval(ctx context.Context, interval genome.Interval, organism Organism, outputs []OutputType, ontologyIDs []string) (PredictionOutput, error)

	// PredictVariant predicts both the reference and alternate haplotypes of
	// a variant within its context interval.
	PredictVariant(ctx context.Context, interval genome.Interval, variant genome.Variant, organism Organism, outputs []OutputType, ontologyIDs []string) (*VariantOutput, error)

	// ScoreVariant scores a single variant with the given scorers, one
	// record per scorer.
	ScoreVariant(ctx context.Context, interval genome.Interval, variant genome.Variant, scorers []CenterMaskScorer) ([]ScoreRecord, error)

	// ScoreISMVariants scores every single-base substitution inside
	// ismInterval in one batched call, reusing interval as the shared
	// sequence context.
	ScoreISMVariants(ctx context.Context, interval, ismInterval genome.Interval, scorers []CenterMaskScorer) ([]ScoreRecord, error)
}

// VariantScorer is the subset of Client the ISM sweep runner needs.
type VariantScorer interface {
	ScoreVariant(ctx context.Context, interval genome.Interval, variant genome.Variant, scorers []CenterMaskScorer) ([]ScoreRecord, error)
}
