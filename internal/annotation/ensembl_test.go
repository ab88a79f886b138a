package annotation

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

func TestIntervalForGeneSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/xrefs/symbol/homo_sapiens/KRAS":
			fmt.Fprint(w, `[{"id": "ENSG00000133703", "type": "gene"}]`)
		case "/lookup/id/ENSG00000133703":
			fmt.Fprint(w, `{"seq_region_name": "12", "start": 25205246, "end": 25250936}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL))
	iv, err := c.IntervalForGeneSymbol(context.Background(), "KRAS")
	require.NoError(t, err)
	assert.Equal(t, "chr12", iv.Chromosome)
	assert.Equal(t, int64(25205246), iv.Start)
	assert.Equal(t, int64(25250937), iv.End, "inclusive end converted to exclusive")
}

func TestIntervalForGeneSymbol_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL))
	_, err := c.IntervalForGeneSymbol(context.Background(), "NOSUCHGENE")

	var notFound *GeneNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "NOSUCHGENE", notFound.Symbol)
	assert.Zero(t, notFound.Matches)
}

func TestIntervalForGeneSymbol_Ambiguous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": "ENSG01", "type": "gene"}, {"id": "ENSG02", "type": "gene"}]`)
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL))
	_, err := c.IntervalForGeneSymbol(context.Background(), "DUP")

	var notFound *GeneNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 2, notFound.Matches, "ambiguous symbols are an error, not first-match")
}

func TestSequenceFor(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"seq": "ACGTACGT"}`)
	}))
	defer server.Close()

	iv, err := genome.NewInterval("chr20", 3753100, 3753108)
	require.NoError(t, err)

	c := NewClient(WithBaseURL(server.URL))
	seq, err := c.SequenceFor(context.Background(), iv)
	require.NoError(t, err)
	assert.Equal(t, "ACGTACGT", seq)
	assert.Equal(t, "/sequence/region/human/20:3753100-3753107", gotPath, "chr prefix stripped, end made inclusive")
}

func TestSequenceFor_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such region", http.StatusBadRequest)
	}))
	defer server.Close()

	iv, _ := genome.NewInterval("chr99", 100, 200)
	c := NewClient(WithBaseURL(server.URL))
	_, err := c.SequenceFor(context.Background(), iv)

	var seqErr *SequenceUnavailableError
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, iv, seqErr.Interval)
}

func TestSequenceFor_LengthMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"seq": "ACG"}`)
	}))
	defer server.Close()

	iv, _ := genome.NewInterval("chr20", 100, 108)
	c := NewClient(WithBaseURL(server.URL))
	_, err := c.SequenceFor(context.Background(), iv)

	var seqErr *SequenceUnavailableError
	assert.ErrorAs(t, err, &seqErr)
}

func TestTranscriptsOverlapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"transcript_id": "ENST0001", "gene_id": "ENSG01", "external_name": "GENE1",
			 "start": 100, "end": 500, "strand": 1, "biotype": "protein_coding",
			 "is_canonical": 1, "seq_region_name": "22"},
			{"transcript_id": "ENST0002", "gene_id": "ENSG01", "external_name": "GENE1",
			 "start": 120, "end": 400, "strand": 1, "biotype": "protein_coding",
			 "is_canonical": 0, "seq_region_name": "22"}
		]`)
	}))
	defer server.Close()

	iv, _ := genome.NewInterval("chr22", 50, 1000)
	c := NewClient(WithBaseURL(server.URL))
	transcripts, err := c.TranscriptsOverlapping(context.Background(), iv)
	require.NoError(t, err)
	require.Len(t, transcripts, 2)

	assert.Equal(t, "ENST0001", transcripts[0].ID)
	assert.Equal(t, "chr22", transcripts[0].Chromosome)
	assert.Equal(t, int64(501), transcripts[0].End)
	assert.True(t, transcripts[0].IsCanonical)
	assert.True(t, transcripts[0].IsProteinCoding())
	assert.False(t, transcripts[1].IsCanonical)
}
