// Package annotation provides the gene-annotation collaborators: gene symbol
// resolution, reference sequence fetch, and transcript overlap lookup backed
// by the Ensembl REST API.
package annotation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

// GeneNotFoundError reports a gene symbol that resolved to zero or multiple
// genes. Ambiguity is an error; the resolver never silently picks the first
// match.
type GeneNotFoundError struct {
	Symbol  string
	Matches int
}

func (e *GeneNotFoundError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("gene symbol %q not found", e.Symbol)
	}
	return fmt.Sprintf("gene symbol %q is ambiguous (%d matches)", e.Symbol, e.Matches)
}

// SequenceUnavailableError reports a failed reference sequence fetch.
type SequenceUnavailableError struct {
	Interval genome.Interval
	Err      error
}

func (e *SequenceUnavailableError) Error() string {
	return fmt.Sprintf("reference sequence unavailable for %s: %v", e.Interval, e.Err)
}

func (e *SequenceUnavailableError) Unwrap() error {
	return e.Err
}

// Client queries the Ensembl REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the Ensembl REST endpoint (used in tests).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates an Ensembl REST client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: "https://rest.ensembl.org",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IntervalForGeneSymbol resolves a gene symbol to its genomic interval.
// The symbol must match exactly one gene.
func (c *Client) IntervalForGeneSymbol(ctx context.Context, symbol string) (genome.Interval, error) {
	var xrefs []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	path := fmt.Sprintf("/xrefs/symbol/homo_sapiens/%s?object_type=gene;content-type=application/json", url.PathEscape(symbol))
	if err := c.get(ctx, path, &xrefs); err != nil {
		return genome.Interval{}, fmt.Errorf("resolve gene symbol %q: %w", symbol, err)
	}

	var geneIDs []string
	for _, x := range xrefs {
		if x.Type == "" || strings.EqualFold(x.Type, "gene") {
			geneIDs = append(geneIDs, x.ID)
		}
	}
	if len(geneIDs) != 1 {
		return genome.Interval{}, &GeneNotFoundError{Symbol: symbol, Matches: len(geneIDs)}
	}

	var gene struct {
		SeqRegionName string `json:"seq_region_name"`
		Start         int64  `json:"start"`
		End           int64  `json:"end"`
	}
	path = fmt.Sprintf("/lookup/id/%s?content-type=application/json", url.PathEscape(geneIDs[0]))
	if err := c.get(ctx, path, &gene); err != nil {
		return genome.Interval{}, fmt.Errorf("lookup gene %s: %w", geneIDs[0], err)
	}

	// Ensembl reports 1-based inclusive coordinates.
	return genome.NewInterval(ucscChrom(gene.SeqRegionName), gene.Start, gene.End+1)
}

// SequenceFor fetches the reference sequence covering an interval.
func (c *Client) SequenceFor(ctx context.Context, interval genome.Interval) (string, error) {
	var resp struct {
		Seq string `json:"seq"`
	}
	path := fmt.Sprintf("/sequence/region/human/%s:%d-%d?content-type=application/json",
		ensemblChrom(interval.Chromosome), interval.Start, interval.End-1)
	if err := c.get(ctx, path, &resp); err != nil {
		return "", &SequenceUnavailableError{Interval: interval, Err: err}
	}
	if int64(len(resp.Seq)) != interval.Width() {
		return "", &SequenceUnavailableError{Interval: interval,
			Err: fmt.Errorf("got %d bases, want %d", len(resp.Seq), interval.Width())}
	}
	return resp.Seq, nil
}

// TranscriptsOverlapping returns all transcripts overlapping an interval.
func (c *Client) TranscriptsOverlapping(ctx context.Context, interval genome.Interval) ([]Transcript, error) {
	var raw []struct {
		ID            string `json:"transcript_id"`
		GeneID        string `json:"gene_id"`
		ExternalName  string `json:"external_name"`
		Start         int64  `json:"start"`
		End           int64  `json:"end"`
		Strand        int    `json:"strand"`
		Biotype       string `json:"biotype"`
		IsCanonical   int    `json:"is_canonical"`
		SeqRegionName string `json:"seq_region_name"`
	}
	path := fmt.Sprintf("/overlap/region/human/%s:%d-%d?feature=transcript;content-type=application/json",
		ensemblChrom(interval.Chromosome), interval.Start, interval.End-1)
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, fmt.Errorf("transcripts overlapping %s: %w", interval, err)
	}

	transcripts := make([]Transcript, 0, len(raw))
	for _, rt := range raw {
		if rt.ID == "" {
			continue
		}
		transcripts = append(transcripts, Transcript{
			ID:          rt.ID,
			GeneID:      rt.GeneID,
			GeneName:    rt.ExternalName,
			Chromosome:  ucscChrom(rt.SeqRegionName),
			Start:       rt.Start,
			End:         rt.End + 1,
			Strand:      int8(rt.Strand),
			Biotype:     rt.Biotype,
			IsCanonical: rt.IsCanonical == 1,
		})
	}
	return transcripts, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ensembl request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("ensembl call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ensembl error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ensembl response: %w", err)
	}
	return nil
}

// ucscChrom adds the UCSC "chr" prefix Ensembl omits.
func ucscChrom(name string) string {
	if strings.HasPrefix(name, "chr") {
		return name
	}
	return "chr" + name
}

// ensemblChrom strips the "chr" prefix for Ensembl region queries.
func ensemblChrom(name string) string {
	return strings.TrimPrefix(name, "chr")
}
