package annotation

import "sort"

// IntervalTree provides O(log n + k) overlap queries over transcripts using
// a sorted-slice layout. Built once, never modified afterwards.
type IntervalTree struct {
	entries []treeEntry
	maxEnd  []int64 // maxEnd[i] = max(End) for entries[0:i+1]
}

type treeEntry struct {
	start      int64
	end        int64
	transcript Transcript
}

// BuildIntervalTree creates an interval tree from transcripts.
func BuildIntervalTree(transcripts []Transcript) *IntervalTree {
	if len(transcripts) == 0 {
		return &IntervalTree{}
	}

	entries := make([]treeEntry, len(transcripts))
	for i, t := range transcripts {
		entries[i] = treeEntry{start: t.Start, end: t.End, transcript: t}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].start < entries[j].start
	})

	maxEnd := make([]int64, len(entries))
	maxEnd[0] = entries[0].end
	for i := 1; i < len(entries); i++ {
		maxEnd[i] = entries[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &IntervalTree{entries: entries, maxEnd: maxEnd}
}

// At returns all transcripts covering pos.
func (t *IntervalTree) At(pos int64) []Transcript {
	return t.Overlapping(pos, pos+1)
}

// Overlapping returns all transcripts overlapping [start, end). Results are
// ordered by ascending transcript start.
func (t *IntervalTree) Overlapping(start, end int64) []Transcript {
	if len(t.entries) == 0 || start >= end {
		return nil
	}

	// Candidates must start before the query end.
	hi := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].start >= end
	})

	var result []Transcript
	for i := hi - 1; i >= 0; i-- {
		// maxEnd prune: nothing in entries[0:i+1] can reach past start.
		if t.maxEnd[i] <= start {
			break
		}
		if t.entries[i].end > start {
			result = append(result, t.entries[i].transcript)
		}
	}

	// Reverse into ascending start order.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}
