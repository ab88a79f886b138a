// Package export renders prediction tracks, variant scores, and ISM
// matrices as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/dnaclient"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/ism"
)

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteTrackCSV writes one row per sequence position with one column per
// channel, headed by the channel track names.
func WriteTrackCSV(w io.Writer, track *dnaclient.Track) error {
	cw := csv.NewWriter(w)

	header := make([]string, track.Channels())
	for i := range header {
		if i < len(track.Metadata) && track.Metadata[i].Name != "" {
			header[i] = track.Metadata[i].Name
		} else {
			header[i] = fmt.Sprintf("track_%d", i)
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, track.Channels())
	for _, values := range track.Values {
		for i, v := range values {
			row[i] = formatScore(v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteScoresCSV writes score records in tidy form, one row per
// variant × channel.
func WriteScoresCSV(w io.Writer, records []dnaclient.ScoreRecord) error {
	cw := csv.NewWriter(w)

	header := []string{"chromosome", "position", "ref", "alt", "output", "aggregation", "channel", "track_name", "ontology_id", "score"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		v := r.Variant
		for ch, score := range r.Values {
			var trackName, ontologyID string
			if ch < len(r.Metadata) {
				trackName = r.Metadata[ch].Name
				ontologyID = r.Metadata[ch].OntologyID
			}
			row := []string{
				v.Chromosome,
				strconv.FormatInt(v.Position, 10),
				v.Ref,
				v.Alt,
				string(r.Output),
				string(r.Aggregation),
				strconv.Itoa(ch),
				trackName,
				ontologyID,
				formatScore(score),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMatrixCSV writes the contribution matrix, one row per sweep position
// with the four base columns plus the dominant-base call. Reference-base
// cells carry NaN.
func WriteMatrixCSV(w io.Writer, m *ism.ContributionMatrix) error {
	cw := csv.NewWriter(w)

	header := []string{"position", "A", "C", "G", "T", "reference_base", "dominant_base", "dominant_score"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := 0; i < m.Width(); i++ {
		base, score := m.DominantBase(i)
		row := []string{
			strconv.FormatInt(m.Interval.Start+int64(i), 10),
			formatScore(m.Scores[i][0]),
			formatScore(m.Scores[i][1]),
			formatScore(m.Scores[i][2]),
			formatScore(m.Scores[i][3]),
			string(m.ReferenceBase(i)),
			string(base),
			formatScore(score),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
