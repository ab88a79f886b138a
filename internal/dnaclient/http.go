package dnaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

// ErrBackend wraps any failure reported by the remote prediction service.
var ErrBackend = errors.New("prediction backend error")

// DefaultBaseURL is the production prediction API endpoint.
const DefaultBaseURL = "https://api.alphagenome.google.com"

// HTTPClient talks JSON over HTTP to the prediction backend.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// NewHTTPClient creates a backend client. baseURL may be empty to use the
// production endpoint.
func NewHTTPClient(baseURL, apiKey string, opts ...Option) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type predictRequest struct {
	Sequence    string           `json:"sequence,omitempty"`
	Interval    *genome.Interval `json:"interval,omitempty"`
	Variant     *genome.Variant  `json:"variant,omitempty"`
	Organism    Organism         `json:"organism"`
	Outputs     []OutputType     `json:"requested_outputs"`
	OntologyIDs []string         `json:"ontology_terms,omitempty"`
}

type scoreRequest struct {
	Interval    genome.Interval    `json:"interval"`
	ISMInterval *genome.Interval   `json:"ism_interval,omitempty"`
	Variant     *genome.Variant    `json:"variant,omitempty"`
	Scorers     []CenterMaskScorer `json:"variant_scorers"`
}

// PredictSequence implements Client.
func (c *HTTPClient) PredictSequence(ctx context.Context, sequence string, organism Organism, outputs []OutputType, ontologyIDs []string) (PredictionOutput, error) {
	req := predictRequest{Sequence: sequence, Organism: organism, Outputs: outputs, OntologyIDs: ontologyIDs}
	var out PredictionOutput
	if err := c.post(ctx, "/v1/predict_sequence", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PredictInterval implements Client.
func (c *HTTPClient) PredictInterval(ctx context.Context, interval genome.Interval, organism Organism, outputs []OutputType, ontologyIDs []string) (PredictionOutput, error) {
	req := predictRequest{Interval: &interval, Organism: organism, Outputs: outputs, OntologyIDs: ontologyIDs}
	var out PredictionOutput
	if err := c.post(ctx, "/v1/predict_interval", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PredictVariant implements Client.
func (c *HTTPClient) PredictVariant(ctx context.Context, interval genome.Interval, variant genome.Variant, organism Organism, outputs []OutputType, ontologyIDs []string) (*VariantOutput, error) {
	req := predictRequest{Interval: &interval, Variant: &variant, Organism: organism, Outputs: outputs, OntologyIDs: ontologyIDs}
	var out VariantOutput
	if err := c.post(ctx, "/v1/predict_variant", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ScoreVariant implements Client.
func (c *HTTPClient) ScoreVariant(ctx context.Context, interval genome.Interval, variant genome.Variant, scorers []CenterMaskScorer) ([]ScoreRecord, error) {
	req := scoreRequest{Interval: interval, Variant: &variant, Scorers: scorers}
	var out struct {
		Scores []ScoreRecord `json:"scores"`
	}
	if err := c.post(ctx, "/v1/score_variant", req, &out); err != nil {
		return nil, err
	}
	return out.Scores, nil
}

// ScoreISMVariants implements Client.
func (c *HTTPClient) ScoreISMVariants(ctx context.Context, interval, ismInterval genome.Interval, scorers []CenterMaskScorer) ([]ScoreRecord, error) {
	req := scoreRequest{Interval: interval, ISMInterval: &ismInterval, Scorers: scorers}
	var out struct {
		Scores []ScoreRecord `json:"scores"`
	}
	if err := c.post(ctx, "/v1/score_ism_variants", req, &out); err != nil {
		return nil, err
	}
	return out.Scores, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBackend, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call",
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s returned %d: %s", ErrBackend, path, resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrBackend, path, err)
	}
	return nil
}
