// Package bmpindex holds the two persisted data structures at the heart
// of the engine (components C4/C5): the inverted index, term-ordered and
// backed by a range-max store per term, and the blocked forward index,
// block-ordered and backed by dense per-block term/doc/score triples.
//
// Both are immutable once built; this package only defines their shape
// and small read-side helpers. Construction lives in pkg/builder,
// encoding in pkg/bmpcodec.
package bmpindex

import (
	"github.com/kittclouds/bmp/pkg/rangemax"
	"github.com/kittclouds/bmp/pkg/termdict"
)

// PostingList is one term's persisted retrieval data: its block-max
// array and its tabulated kth scores (spec §3).
type PostingList struct {
	RangeMax rangemax.Store
	Kth      [3]uint8
}

// Index is the inverted index (C4): per-term range-max stores ordered by
// term-id, the term dictionary mapping term strings to that same term-id
// space, and the external document name table.
type Index struct {
	NumDocuments int
	PostingLists []PostingList // ordered by term-id
	TermDict     *termdict.Dict
	Documents    []string // Documents[docID] -> external name
}

// NumBlocks returns ceil(NumDocuments/blockSize) for this index, the
// sizing every PostingList.RangeMax must agree with.
func (idx *Index) NumBlocks(blockSize int) int {
	return (idx.NumDocuments + blockSize - 1) / blockSize
}

// DocScore is one (in-block docid, quantized score) pair within a term's
// entry in a forward-index block.
type DocScore struct {
	InBlockDocID uint8
	Score        uint8
}

// TermBlockEntry is one term's contribution to a single forward-index
// block: its narrowed term-id and the block-local documents that carry
// it, in ascending in-block-docid order.
type TermBlockEntry struct {
	TermID uint16
	Docs   []DocScore
}

// BFwd is the blocked forward index (C5): block_size plus, for every
// block, an ascending-term-id-sorted slice of TermBlockEntry.
type BFwd struct {
	BlockSize int
	Data      [][]TermBlockEntry // Data[b], b in [0, NumBlocks)
}

// NumBlocks returns the number of blocks this forward index was built
// with — the authoritative source for block counting at query time
// (spec §9: BFwd.BlockSize, and by extension block count, is the single
// source of truth; callers never pass a block size to the searcher).
func (f *BFwd) NumBlocks() int {
	return len(f.Data)
}
