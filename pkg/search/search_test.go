package search

import (
	"testing"

	"github.com/kittclouds/bmp/pkg/bmpindex"
	"github.com/kittclouds/bmp/pkg/rangemax"
)

// buildIndex is a small test-only helper assembling an Index/BFwd pair
// directly from per-term postings, bypassing pkg/builder so these tests
// exercise the searcher in isolation (pkg/builder's own tests build the
// S2 collection through the builder).
func buildIndex(t *testing.T, numDocs, blockSize int, termPostings map[string][]rangemax.Posting, docNames []string) (*bmpindex.Index, *bmpindex.BFwd, map[string]uint16) {
	t.Helper()

	terms := make([]string, 0, len(termPostings))
	for term := range termPostings {
		terms = append(terms, term)
	}
	// lexicographic term-id assignment, spec §4.3/§4.4
	for i := range terms {
		for j := i + 1; j < len(terms); j++ {
			if terms[j] < terms[i] {
				terms[i], terms[j] = terms[j], terms[i]
			}
		}
	}

	termID := make(map[string]uint16, len(terms))
	postingLists := make([]bmpindex.PostingList, len(terms))
	for id, term := range terms {
		termID[term] = uint16(id)
		ps := termPostings[term]
		dense := rangemax.FromPostings(ps, numDocs, blockSize)
		postingLists[id] = bmpindex.PostingList{
			RangeMax: rangemax.Build(dense, false),
			Kth:      rangemax.Kth(ps),
		}
	}

	numBlocks := (numDocs + blockSize - 1) / blockSize
	data := make([][]bmpindex.TermBlockEntry, numBlocks)
	for term, ps := range termPostings {
		id := termID[term]
		perBlock := make(map[int][]bmpindex.DocScore)
		for _, p := range ps {
			b := int(p.DocID) / blockSize
			perBlock[b] = append(perBlock[b], bmpindex.DocScore{
				InBlockDocID: uint8(int(p.DocID) % blockSize),
				Score:        p.Score,
			})
		}
		for b, docs := range perBlock {
			data[b] = append(data[b], bmpindex.TermBlockEntry{TermID: id, Docs: docs})
		}
	}
	for b := range data {
		entries := data[b]
		for i := range entries {
			for j := i + 1; j < len(entries); j++ {
				if entries[j].TermID < entries[i].TermID {
					entries[i], entries[j] = entries[j], entries[i]
				}
			}
		}
	}

	idx := &bmpindex.Index{NumDocuments: numDocs, PostingLists: postingLists, Documents: docNames}
	fwd := &bmpindex.BFwd{BlockSize: blockSize, Data: data}
	return idx, fwd, termID
}

func cursor(idx *bmpindex.Index, termID map[string]uint16, term string, weight uint8) Cursor {
	id := termID[term]
	pl := idx.PostingLists[id]
	return Cursor{TermID16: id, RangeMax: pl.RangeMax, Kth: pl.Kth, Weight: weight}
}

func TestS1SingleTermSingleHit(t *testing.T) {
	idx, fwd, tid := buildIndex(t, 1, 4, map[string][]rangemax.Posting{
		"a": {{DocID: 0, Score: 5}},
	}, []string{"d0"})

	s := NewSearcher(idx, fwd)
	results := s.Search(Config{K: 1, Alpha: 1.0, Beta: 1.0}, []Cursor{cursor(idx, tid, "a", 1)})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].DocName != "d0" || results[0].Rank != 1 || results[0].Score != 5 {
		t.Fatalf("unexpected result: %+v", results[0])
	}
}

func TestS2TwoTermsExact(t *testing.T) {
	idx, fwd, tid := buildIndex(t, 4, 4, map[string][]rangemax.Posting{
		"a": {{DocID: 0, Score: 3}, {DocID: 2, Score: 1}},
		"b": {{DocID: 1, Score: 4}, {DocID: 2, Score: 2}},
	}, []string{"d0", "d1", "d2", "d3"})

	s := NewSearcher(idx, fwd)
	results := s.Search(Config{K: 3, Alpha: 1.0, Beta: 1.0}, []Cursor{
		cursor(idx, tid, "a", 1), cursor(idx, tid, "b", 1),
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d: %+v", len(results), results)
	}
	// scores: d0=3, d1=4, d2=3, d3=0. Top-k heap invariant (§4.1) orders by
	// score desc, ties broken by ascending docid: d1(4), d0(3), d2(3).
	want := []Result{{"d1", 1, 4}, {"d0", 2, 3}, {"d2", 3, 3}}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("result %d: got %+v, want %+v", i, results[i], want[i])
		}
	}
}

func TestS6EmptyQueryReturnsEmptyResult(t *testing.T) {
	idx, fwd, _ := buildIndex(t, 1, 4, map[string][]rangemax.Posting{
		"a": {{DocID: 0, Score: 5}},
	}, []string{"d0"})

	s := NewSearcher(idx, fwd)
	results := s.Search(Config{K: 1, Alpha: 1.0, Beta: 1.0}, nil)
	if results != nil {
		t.Fatalf("expected nil results for an empty cursor set, got %+v", results)
	}
}

func TestExactModeEquivalesExhaustiveScoring(t *testing.T) {
	idx, fwd, tid := buildIndex(t, 8, 4, map[string][]rangemax.Posting{
		"a": {{DocID: 0, Score: 10}, {DocID: 4, Score: 1}},
		"b": {{DocID: 5, Score: 5}, {DocID: 2, Score: 7}},
	}, []string{"d0", "d1", "d2", "d3", "d4", "d5", "d6", "d7"})

	s := NewSearcher(idx, fwd)
	results := s.Search(Config{K: 3, Alpha: 1.0, Beta: 1.0}, []Cursor{
		cursor(idx, tid, "a", 1), cursor(idx, tid, "b", 1),
	})

	// exhaustive: d0=10, d2=7, d4=1, d5=5, others 0. Top-3 desc: d0(10), d2(7), d5(5).
	want := []Result{{"d0", 1, 10}, {"d2", 2, 7}, {"d5", 3, 5}}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d: %+v", len(want), len(results), results)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("result %d: got %+v, want %+v", i, results[i], want[i])
		}
	}
}
