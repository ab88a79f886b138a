// Package dnaclient defines the prediction backend contract: the request and
// response value types and the Client interface every pipeline stage depends
// on. The backend itself is remote and opaque; any implementation satisfying
// Client is substitutable.
package dnaclient

import (
	"errors"
	"fmt"
)

// ErrUnknownEnum is returned when parsing an output type, organism, or
// aggregation type that is not in the closed set.
var ErrUnknownEnum = errors.New("unknown value")

// OutputType identifies one prediction output modality.
type OutputType string

// The closed set of prediction output types the backend serves.
const (
	OutputATAC            OutputType = "ATAC"
	OutputCAGE            OutputType = "CAGE"
	OutputDNase           OutputType = "DNASE"
	OutputRNASeq          OutputType = "RNA_SEQ"
	OutputChIPHistone     OutputType = "CHIP_HISTONE"
	OutputChIPTF          OutputType = "CHIP_TF"
	OutputSpliceSites     OutputType = "SPLICE_SITES"
	OutputSpliceSiteUsage OutputType = "SPLICE_SITE_USAGE"
	OutputSpliceJunctions OutputType = "SPLICE_JUNCTIONS"
	OutputContactMaps     OutputType = "CONTACT_MAPS"
	OutputProCap          OutputType = "PROCAP"
)

// OutputTypes lists all output types in a fixed order.
var OutputTypes = []OutputType{
	OutputATAC, OutputCAGE, OutputDNase, OutputRNASeq,
	OutputChIPHistone, OutputChIPTF, OutputSpliceSites,
	OutputSpliceSiteUsage, OutputSpliceJunctions, OutputContactMaps,
	OutputProCap,
}

var outputTypeSet = func() map[OutputType]bool {
	m := make(map[OutputType]bool, len(OutputTypes))
	for _, ot := range OutputTypes {
		m[ot] = true
	}
	return m
}()

// ParseOutputType validates a user-supplied output type name.
func ParseOutputType(s string) (OutputType, error) {
	ot := OutputType(s)
	if !outputTypeSet[ot] {
		return "", fmt.Errorf("%w: output type %q", ErrUnknownEnum, s)
	}
	return ot, nil
}

// Organism identifies the genome the backend should model.
type Organism string

const (
	OrganismHuman Organism = "HOMO_SAPIENS"
	OrganismMouse Organism = "MUS_MUSCULUS"
)

// ParseOrganism validates a user-supplied organism name.
func ParseOrganism(s string) (Organism, error) {
	switch Organism(s) {
	case OrganismHuman:
		return OrganismHuman, nil
	case OrganismMouse:
		return OrganismMouse, nil
	}
	return "", fmt.Errorf("%w: organism %q", ErrUnknownEnum, s)
}

// AggregationType selects how a variant scorer folds track values into a
// scalar per channel.
type AggregationType string

const (
	AggDiffMean AggregationType = "DIFF_MEAN"
	AggDiffMax  AggregationType = "DIFF_MAX"
	AggAltMean  AggregationType = "ALT_MEAN"
)

// ParseAggregationType validates a user-supplied aggregation type name.
func ParseAggregationType(s string) (AggregationType, error) {
	switch AggregationType(s) {
	case AggDiffMean:
		return AggDiffMean, nil
	case AggDiffMax:
		return AggDiffMax, nil
	case AggAltMean:
		return AggAltMean, nil
	}
	return "", fmt.Errorf("%w: aggregation type %q", ErrUnknownEnum, s)
}
