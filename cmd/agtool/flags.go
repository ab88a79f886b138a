package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/dnaclient"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/ontology"
)

// regionFlags selects an analysis region either by coordinates or by gene
// symbol.
type regionFlags struct {
	gene  string
	chrom string
	start int64
	end   int64
}

func (r *regionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.gene, "gene", "", "Gene symbol to center the region on (e.g. KRAS)")
	cmd.Flags().StringVar(&r.chrom, "chrom", "", "Chromosome (e.g. chr22)")
	cmd.Flags().Int64Var(&r.start, "start", 0, "Region start")
	cmd.Flags().Int64Var(&r.end, "end", 0, "Region end (exclusive)")
}

// resolve returns the region, looking up the gene symbol when given.
// Validation happens before any backend call.
func (r *regionFlags) resolve(ctx context.Context) (genome.Interval, error) {
	if r.gene != "" {
		if r.chrom != "" {
			return genome.Interval{}, fmt.Errorf("--gene and --chrom are mutually exclusive")
		}
		return annotationClient().IntervalForGeneSymbol(ctx, r.gene)
	}
	if r.chrom == "" {
		return genome.Interval{}, fmt.Errorf("either --gene or --chrom/--start/--end is required")
	}
	return genome.NewInterval(r.chrom, r.start, r.end)
}

// parseOutputs validates the requested output types.
func parseOutputs(names []string) ([]dnaclient.OutputType, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one output type is required")
	}
	outputs := make([]dnaclient.OutputType, len(names))
	for i, name := range names {
		ot, err := dnaclient.ParseOutputType(name)
		if err != nil {
			return nil, err
		}
		outputs[i] = ot
	}
	return outputs, nil
}

// mapTissues translates tissue labels to ontology identifiers.
func mapTissues(labels []string) ([]string, error) {
	ids, err := ontology.Map(labels)
	if err != nil {
		return nil, fmt.Errorf("%w (run: agtool ontology list)", err)
	}
	return ids, nil
}
