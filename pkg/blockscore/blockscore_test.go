package blockscore

import (
	"testing"

	"github.com/kittclouds/bmp/pkg/bmpindex"
)

func TestScoreMergesMatchingTermsOnly(t *testing.T) {
	// query: term 1 weight 2, term 3 weight 5
	// block: term 1 -> doc0 score 4; term 2 -> doc1 score 9 (no query match); term 3 -> doc0 score 1, doc2 score 2
	block := []bmpindex.TermBlockEntry{
		{TermID: 1, Docs: []bmpindex.DocScore{{InBlockDocID: 0, Score: 4}}},
		{TermID: 2, Docs: []bmpindex.DocScore{{InBlockDocID: 1, Score: 9}}},
		{TermID: 3, Docs: []bmpindex.DocScore{{InBlockDocID: 0, Score: 1}, {InBlockDocID: 2, Score: 2}}},
	}
	qv := []QueryTerm{{TermID: 1, Weight: 2}, {TermID: 3, Weight: 5}}

	got := Score(qv, block, 4)
	want := []uint16{4*2 + 1*5, 0, 2 * 5, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("doc %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestScoreEmptyQueryVecYieldsZeroes(t *testing.T) {
	block := []bmpindex.TermBlockEntry{
		{TermID: 1, Docs: []bmpindex.DocScore{{InBlockDocID: 0, Score: 4}}},
	}
	got := Score(nil, block, 4)
	for i, v := range got {
		if v != 0 {
			t.Fatalf("doc %d: expected 0, got %d", i, v)
		}
	}
}
