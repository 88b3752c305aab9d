package builder

import (
	"errors"
	"testing"

	"github.com/kittclouds/bmp/pkg/bmperr"
	"github.com/kittclouds/bmp/pkg/ciffstream"
)

func s2Source() ciffstream.Source {
	header := ciffstream.Header{NumDocuments: 4, NumPostingsLists: 2}
	postings := []ciffstream.PostingsList{
		{Term: "a", Postings: []ciffstream.Posting{{DocIDDelta: 0, TF: 3}, {DocIDDelta: 2, TF: 1}}},
		{Term: "b", Postings: []ciffstream.Posting{{DocIDDelta: 1, TF: 4}, {DocIDDelta: 1, TF: 2}}},
	}
	docs := []ciffstream.DocRecord{
		{DocID: 0, CollectionDocID: "d0"},
		{DocID: 1, CollectionDocID: "d1"},
		{DocID: 2, CollectionDocID: "d2"},
		{DocID: 3, CollectionDocID: "d3"},
	}
	return ciffstream.NewMemorySource(header, postings, docs)
}

func TestBuildS2ProducesConsistentIndexAndForward(t *testing.T) {
	b, err := New(Config{BlockSize: 4, Compress: false})
	if err != nil {
		t.Fatalf("unexpected error creating builder: %v", err)
	}
	idx, fwd, err := b.Build(s2Source())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if idx.NumDocuments != 4 {
		t.Fatalf("NumDocuments: got %d, want 4", idx.NumDocuments)
	}
	if len(idx.PostingLists) != 2 {
		t.Fatalf("expected 2 posting lists, got %d", len(idx.PostingLists))
	}
	// terms sorted lexicographically: "a" -> id 0, "b" -> id 1.
	aID, ok := idx.TermDict.Lookup("a")
	if !ok || aID != 0 {
		t.Fatalf("term 'a': got id %d ok=%v, want 0", aID, ok)
	}
	bID, ok := idx.TermDict.Lookup("b")
	if !ok || bID != 1 {
		t.Fatalf("term 'b': got id %d ok=%v, want 1", bID, ok)
	}

	// block-max correctness (spec §8 property 3): single block [0,4).
	if idx.PostingLists[aID].RangeMax.At(0) != 3 {
		t.Fatalf("term a block-max: got %d, want 3", idx.PostingLists[aID].RangeMax.At(0))
	}
	if idx.PostingLists[bID].RangeMax.At(0) != 4 {
		t.Fatalf("term b block-max: got %d, want 4", idx.PostingLists[bID].RangeMax.At(0))
	}

	// forward-vs-inverted consistency (spec §8 property 2): doc 2 carries
	// both a (score 1) and b (score 2).
	if fwd.NumBlocks() != 1 {
		t.Fatalf("expected 1 block, got %d", fwd.NumBlocks())
	}
	block := fwd.Data[0]
	if len(block) != 2 {
		t.Fatalf("expected 2 term entries in block 0, got %d", len(block))
	}
	if block[0].TermID != aID || block[1].TermID != bID {
		t.Fatalf("block entries must be sorted ascending by term-id, got %+v", block)
	}
	foundDoc2ForA := false
	for _, d := range block[0].Docs {
		if d.InBlockDocID == 2 {
			if d.Score != 1 {
				t.Fatalf("doc2/term a score: got %d, want 1", d.Score)
			}
			foundDoc2ForA = true
		}
	}
	if !foundDoc2ForA {
		t.Fatalf("expected doc 2 to carry term a in the forward index")
	}
}

func TestBuildRejectsOversizedBlockSize(t *testing.T) {
	_, err := New(Config{BlockSize: 257})
	if !errors.Is(err, bmperr.ErrInputMalformed) {
		t.Fatalf("expected ErrInputMalformed for block size 257, got %v", err)
	}
}

func TestBuildRejectsZeroBlockSize(t *testing.T) {
	_, err := New(Config{BlockSize: 0})
	if !errors.Is(err, bmperr.ErrResourceMissing) {
		t.Fatalf("expected ErrResourceMissing for unset block size, got %v", err)
	}
}

func TestBuildRejectsOutOfOrderDocRecords(t *testing.T) {
	header := ciffstream.Header{NumDocuments: 2, NumPostingsLists: 0}
	docs := []ciffstream.DocRecord{
		{DocID: 1, CollectionDocID: "d1"},
		{DocID: 0, CollectionDocID: "d0"},
	}
	src := ciffstream.NewMemorySource(header, nil, docs)

	b, err := New(Config{BlockSize: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _, err = b.Build(src)
	if !errors.Is(err, bmperr.ErrInputMalformed) {
		t.Fatalf("expected ErrInputMalformed for out-of-order doc records, got %v", err)
	}
}

func TestBuildRejectsNegativeTermFrequency(t *testing.T) {
	header := ciffstream.Header{NumDocuments: 1, NumPostingsLists: 1}
	postings := []ciffstream.PostingsList{
		{Term: "a", Postings: []ciffstream.Posting{{DocIDDelta: 0, TF: -1}}},
	}
	docs := []ciffstream.DocRecord{{DocID: 0, CollectionDocID: "d0"}}
	src := ciffstream.NewMemorySource(header, postings, docs)

	b, err := New(Config{BlockSize: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _, err = b.Build(src)
	if !errors.Is(err, bmperr.ErrInputMalformed) {
		t.Fatalf("expected ErrInputMalformed for negative tf, got %v", err)
	}
}

func TestBuildRejectsDocIDBeyondDeclaredDocumentCount(t *testing.T) {
	header := ciffstream.Header{NumDocuments: 1, NumPostingsLists: 1}
	postings := []ciffstream.PostingsList{
		{Term: "a", Postings: []ciffstream.Posting{{DocIDDelta: 5, TF: 1}}},
	}
	docs := []ciffstream.DocRecord{{DocID: 0, CollectionDocID: "d0"}}
	src := ciffstream.NewMemorySource(header, postings, docs)

	b, err := New(Config{BlockSize: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _, err = b.Build(src)
	if !errors.Is(err, bmperr.ErrInputMalformed) {
		t.Fatalf("expected ErrInputMalformed for docid beyond declared document count, got %v", err)
	}
}
