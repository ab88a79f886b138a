package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/dnaclient"
	"github.com/ZhangRuiQian778/st-alphagenome/internal/genome"
)

// scoreKey is the composite key for deduplicating rows before writing.
type scoreKey struct {
	chrom, ref, alt string
	pos             int64
	output          dnaclient.OutputType
	aggregation     dnaclient.AggregationType
	width           int
	channel         int
}

// WriteScores batch-inserts score records using the Appender API. Rows
// already in the cache and duplicates within the batch are skipped, so
// completing a previously partial sweep only appends the missing rows.
func (s *Store) WriteScores(records []dnaclient.ScoreRecord, scorer dnaclient.CenterMaskScorer) error {
	if len(records) == 0 {
		return nil
	}

	seen, err := s.existingKeys(records, scorer)
	if err != nil {
		return err
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "variant_scores")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range records {
		v := r.Variant
		for ch, score := range r.Values {
			k := scoreKey{
				chrom: v.Chromosome, ref: v.Ref, alt: v.Alt, pos: v.Position,
				output: r.Output, aggregation: r.Aggregation, width: scorer.Width, channel: ch,
			}
			if seen[k] {
				continue
			}
			seen[k] = true

			var trackName, ontologyID string
			if ch < len(r.Metadata) {
				trackName = r.Metadata[ch].Name
				ontologyID = r.Metadata[ch].OntologyID
			}

			if err := appender.AppendRow(
				v.Chromosome, v.Position, v.Ref, v.Alt,
				string(r.Output), string(r.Aggregation), int32(scorer.Width),
				int32(ch), trackName, ontologyID, score,
			); err != nil {
				return fmt.Errorf("append score row: %w", err)
			}
		}
	}

	return appender.Flush()
}

// existingKeys returns the cached row keys covering the records' position
// range, so an append never collides with the primary key.
func (s *Store) existingKeys(records []dnaclient.ScoreRecord, scorer dnaclient.CenterMaskScorer) (map[scoreKey]bool, error) {
	type span struct {
		min, max int64
	}
	spans := make(map[string]*span)
	for _, r := range records {
		v := r.Variant
		sp, ok := spans[v.Chromosome]
		if !ok {
			spans[v.Chromosome] = &span{min: v.Position, max: v.Position}
			continue
		}
		if v.Position < sp.min {
			sp.min = v.Position
		}
		if v.Position > sp.max {
			sp.max = v.Position
		}
	}

	seen := make(map[scoreKey]bool, len(records))
	for chrom, sp := range spans {
		rows, err := s.db.Query(`SELECT pos, ref, alt, channel FROM variant_scores
			WHERE chrom=? AND pos>=? AND pos<=? AND output=? AND aggregation=? AND scorer_width=?`,
			chrom, sp.min, sp.max,
			string(scorer.Output), string(scorer.Aggregation), scorer.Width)
		if err != nil {
			return nil, fmt.Errorf("query cached keys: %w", err)
		}
		for rows.Next() {
			var (
				ref, alt string
				pos      int64
				channel  int
			)
			if err := rows.Scan(&pos, &ref, &alt, &channel); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan cached key: %w", err)
			}
			seen[scoreKey{
				chrom: chrom, ref: ref, alt: alt, pos: pos,
				output: scorer.Output, aggregation: scorer.Aggregation,
				width: scorer.Width, channel: channel,
			}] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate cached keys: %w", err)
		}
		rows.Close()
	}
	return seen, nil
}

// SweepScores returns all cached records for variants inside a sweep window
// scored with the given scorer, ordered by position then alternate base.
// Callers detect an incomplete cache by record count.
func (s *Store) SweepScores(sweep genome.Interval, scorer dnaclient.CenterMaskScorer) ([]dnaclient.ScoreRecord, error) {
	rows, err := s.db.Query(`SELECT chrom, pos, ref, alt, channel, track_name, ontology_id, score
		FROM variant_scores
		WHERE chrom=? AND pos>=? AND pos<? AND output=? AND aggregation=? AND scorer_width=?
		ORDER BY pos, alt, channel`,
		sweep.Chromosome, sweep.Start, sweep.End,
		string(scorer.Output), string(scorer.Aggregation), scorer.Width)
	if err != nil {
		return nil, fmt.Errorf("query sweep scores: %w", err)
	}
	defer rows.Close()

	return s.collectRecords(rows, scorer)
}

// VariantScores returns all cached records for one variant and scorer.
func (s *Store) VariantScores(v genome.Variant, scorer dnaclient.CenterMaskScorer) ([]dnaclient.ScoreRecord, error) {
	rows, err := s.db.Query(`SELECT chrom, pos, ref, alt, channel, track_name, ontology_id, score
		FROM variant_scores
		WHERE chrom=? AND pos=? AND ref=? AND alt=? AND output=? AND aggregation=? AND scorer_width=?
		ORDER BY channel`,
		v.Chromosome, v.Position, v.Ref, v.Alt,
		string(scorer.Output), string(scorer.Aggregation), scorer.Width)
	if err != nil {
		return nil, fmt.Errorf("query variant scores: %w", err)
	}
	defer rows.Close()

	return s.collectRecords(rows, scorer)
}

// collectRecords folds per-channel rows back into ScoreRecords, one per
// variant, relying on the query's ordering.
func (s *Store) collectRecords(rows *sql.Rows, scorer dnaclient.CenterMaskScorer) ([]dnaclient.ScoreRecord, error) {
	var records []dnaclient.ScoreRecord
	var cur *dnaclient.ScoreRecord

	for rows.Next() {
		var (
			chrom, ref, alt, trackName, ontologyID string
			pos                                    int64
			channel                                int
			score                                  float64
		)
		if err := rows.Scan(&chrom, &pos, &ref, &alt, &channel, &trackName, &ontologyID, &score); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}

		v := genome.Variant{Chromosome: chrom, Position: pos, Ref: ref, Alt: alt}
		if cur == nil || cur.Variant != v {
			records = append(records, dnaclient.ScoreRecord{
				Variant:     v,
				Output:      scorer.Output,
				Aggregation: scorer.Aggregation,
			})
			cur = &records[len(records)-1]
		}
		cur.Values = append(cur.Values, score)
		cur.Metadata = append(cur.Metadata, dnaclient.TrackMetadata{Name: trackName, OntologyID: ontologyID})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score rows: %w", err)
	}
	return records, nil
}

// ClearScores removes all cached scores.
func (s *Store) ClearScores() error {
	_, err := s.db.Exec("DELETE FROM variant_scores")
	return err
}
