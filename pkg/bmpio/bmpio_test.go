package bmpio

import (
	"strings"
	"testing"

	"github.com/kittclouds/bmp/pkg/bmpindex"
	"github.com/kittclouds/bmp/pkg/rangemax"
	"github.com/kittclouds/bmp/pkg/termdict"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	tb := termdict.NewBuilder()
	tb.Add("a")
	dict, _, err := tb.Finish()
	if err != nil {
		t.Fatalf("term dict build failed: %v", err)
	}

	postings := []rangemax.Posting{{DocID: 0, Score: 7}}
	dense := rangemax.FromPostings(postings, 1, 4)
	idx := &bmpindex.Index{
		NumDocuments: 1,
		TermDict:     dict,
		Documents:    []string{"d0"},
		PostingLists: []bmpindex.PostingList{{RangeMax: rangemax.Build(dense, false), Kth: rangemax.Kth(postings)}},
	}
	fwd := &bmpindex.BFwd{
		BlockSize: 4,
		Data: [][]bmpindex.TermBlockEntry{
			{{TermID: 0, Docs: []bmpindex.DocScore{{InBlockDocID: 0, Score: 7}}}},
		},
	}

	fs := DefaultFS()
	// hackpadfs paths follow io/fs rules: rooted, no leading slash.
	path := strings.TrimPrefix(t.TempDir(), "/") + "/index.bmp"

	if err := Save(fs, path, idx, fwd); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	gotIdx, gotFwd, err := Load(fs, path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if gotIdx.NumDocuments != 1 || gotIdx.Documents[0] != "d0" {
		t.Fatalf("unexpected index after load: %+v", gotIdx)
	}
	if gotFwd.BlockSize != 4 {
		t.Fatalf("unexpected BlockSize after load: %d", gotFwd.BlockSize)
	}
	id, ok := gotIdx.TermDict.Lookup("a")
	if !ok || id != 0 {
		t.Fatalf("expected term 'a' to resolve after load, got %d ok=%v", id, ok)
	}
}
