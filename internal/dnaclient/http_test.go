package dnaclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

func TestHTTPClient_PredictInterval(t *testing.T) {
	interval, err := genome.NewInterval("chr22", 36136162, 36267234)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/predict_interval", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, OrganismHuman, req.Organism)
		require.NotNil(t, req.Interval)
		assert.Equal(t, interval, *req.Interval)
		assert.Equal(t, []OutputType{OutputRNASeq}, req.Outputs)
		assert.Equal(t, []string{"UBERON:0002048"}, req.OntologyIDs)

		resp := PredictionOutput{
			OutputRNASeq: &Track{
				Interval: interval,
				Values:   [][]float64{{0.1}, {0.2}},
				Metadata: []TrackMetadata{{Name: "RNA_SEQ lung", OntologyID: "UBERON:0002048", Assay: "RNA_SEQ"}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-key")
	out, err := client.PredictInterval(context.Background(), interval, OrganismHuman, []OutputType{OutputRNASeq}, []string{"UBERON:0002048"})
	require.NoError(t, err)

	track := out.Get(OutputRNASeq)
	require.NotNil(t, track)
	assert.Equal(t, 2, track.Positions())
	assert.Equal(t, 1, track.Channels())
	assert.Equal(t, "UBERON:0002048", track.Metadata[0].OntologyID)
}

func TestHTTPClient_ScoreVariant(t *testing.T) {
	variant, err := genome.NewVariant("chr22", 36201698, "A", "C")
	require.NoError(t, err)
	interval, err := variant.ReferenceInterval().Resize(131072)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/score_variant", r.URL.Path)

		var req scoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.Variant)
		assert.Equal(t, variant, *req.Variant)
		require.Len(t, req.Scorers, 1)
		assert.Equal(t, OutputRNASeq, req.Scorers[0].Output)

		resp := struct {
			Scores []ScoreRecord `json:"scores"`
		}{
			Scores: []ScoreRecord{{
				Variant:     variant,
				Output:      OutputRNASeq,
				Aggregation: AggDiffMean,
				Values:      []float64{0.42},
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "")
	scorer := CenterMaskScorer{Output: OutputRNASeq, Width: 501, Aggregation: AggDiffMean}
	records, err := client.ScoreVariant(context.Background(), interval, variant, []CenterMaskScorer{scorer})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, variant, records[0].Variant)
	assert.Equal(t, 0.42, records[0].Score())
}

func TestHTTPClient_ScoreISMVariants(t *testing.T) {
	interval, err := genome.NewInterval("chr22", 36136162, 36267234)
	require.NoError(t, err)
	ismInterval, err := genome.NewInterval("chr22", 36201570, 36201826)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/score_ism_variants", r.URL.Path)

		var req scoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, interval, req.Interval)
		require.NotNil(t, req.ISMInterval)
		assert.Equal(t, ismInterval, *req.ISMInterval)
		assert.Nil(t, req.Variant)
		require.Len(t, req.Scorers, 1)

		resp := struct {
			Scores []ScoreRecord `json:"scores"`
		}{
			Scores: []ScoreRecord{
				{
					Variant:     genome.Variant{Chromosome: "chr22", Position: 36201570, Ref: "A", Alt: "C"},
					Output:      OutputRNASeq,
					Aggregation: AggDiffMean,
					Values:      []float64{0.1},
				},
				{
					Variant:     genome.Variant{Chromosome: "chr22", Position: 36201570, Ref: "A", Alt: "G"},
					Output:      OutputRNASeq,
					Aggregation: AggDiffMean,
					Values:      []float64{-0.2},
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "")
	scorer := CenterMaskScorer{Output: OutputRNASeq, Width: 501, Aggregation: AggDiffMean}
	records, err := client.ScoreISMVariants(context.Background(), interval, ismInterval, []CenterMaskScorer{scorer})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "C", records[0].Variant.Alt)
	assert.Equal(t, -0.2, records[1].Score())
}

func TestHTTPClient_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "")
	interval, _ := genome.NewInterval("chr1", 100, 200)
	_, err := client.PredictInterval(context.Background(), interval, OrganismHuman, []OutputType{OutputATAC}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackend)
	assert.Contains(t, err.Error(), "429")
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	interval, _ := genome.NewInterval("chr1", 100, 200)
	_, err := client.PredictInterval(ctx, interval, OrganismHuman, []OutputType{OutputATAC}, nil)
	assert.Error(t, err)
}
