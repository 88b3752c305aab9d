// Package bmpcodec implements the serialization contract (component
// C10): a deterministic binary encoding of an Index/BFwd pair that must
// round-trip byte-for-byte (spec §4.9, §8 property 1).
//
// Encoding is driven by github.com/kelindar/binary's reflection-based
// codec rather than hand-rolled binary.Write calls for every field,
// matching how the rest of the retrieval pack reaches for a reflection
// codec over manual field-by-field writes (GoKitt's own payload_store.go
// and internal/store packages hand-roll binary.Write/Read for a handful
// of fixed-width fields; kelindar/binary is adopted here instead because
// Index/BFwd have nested variable-length slices several levels deep,
// where a reflection-based codec pays for itself). Index.posting_lists
// holds a polymorphic BlockMaxArray (Raw | Compressed, spec §9 "model as
// a tagged sum"); kelindar/binary does not resolve interface fields on
// its own, so this package flattens each PostingList to an explicit
// wire form before encoding and reconstructs the Store on decode.
package bmpcodec

import (
	"github.com/kelindar/binary"

	"github.com/kittclouds/bmp/pkg/bmpindex"
	"github.com/kittclouds/bmp/pkg/rangemax"
	"github.com/kittclouds/bmp/pkg/termdict"
)

type wireRangeMax struct {
	Compressed   bool
	NumBlocks    int
	Raw          []uint8
	SuperOffsets [][]uint16
	SuperValues  [][]uint8
}

type wirePostingList struct {
	RangeMax wireRangeMax
	Kth      [3]uint8
}

type wireDocScore struct {
	InBlockDocID uint8
	Score        uint8
}

type wireTermBlockEntry struct {
	TermID uint16
	Docs   []wireDocScore
}

type wireFile struct {
	NumDocuments int
	PostingLists []wirePostingList
	TermDictFST  []byte
	Documents    []string
	BlockSize    int
	Data         [][]wireTermBlockEntry
}

func toWireRangeMax(s rangemax.Store) wireRangeMax {
	switch v := s.(type) {
	case *rangemax.Raw:
		return wireRangeMax{Compressed: false, NumBlocks: v.Len(), Raw: v.Max}
	case *rangemax.Compressed:
		offsets := make([][]uint16, len(v.Supers))
		values := make([][]uint8, len(v.Supers))
		for i, super := range v.Supers {
			offs := make([]uint16, len(super.Entries))
			vals := make([]uint8, len(super.Entries))
			for j, e := range super.Entries {
				offs[j] = e.Offset
				vals[j] = e.Value
			}
			offsets[i] = offs
			values[i] = vals
		}
		return wireRangeMax{Compressed: true, NumBlocks: v.Len(), SuperOffsets: offsets, SuperValues: values}
	default:
		panic("bmpcodec: unknown rangemax.Store implementation")
	}
}

func fromWireRangeMax(w wireRangeMax) rangemax.Store {
	if !w.Compressed {
		return &rangemax.Raw{Max: w.Raw}
	}
	dense := make([]uint8, w.NumBlocks)
	for i := range w.SuperOffsets {
		base := i * rangemax.SuperBlockSize
		for j, off := range w.SuperOffsets[i] {
			dense[base+int(off)] = w.SuperValues[i][j]
		}
	}
	return rangemax.Build(dense, true)
}

// Encode serializes idx and fwd into a single deterministic byte slice.
func Encode(idx *bmpindex.Index, fwd *bmpindex.BFwd) ([]byte, error) {
	wf := wireFile{
		NumDocuments: idx.NumDocuments,
		Documents:    idx.Documents,
		BlockSize:    fwd.BlockSize,
	}
	if idx.TermDict != nil {
		wf.TermDictFST = idx.TermDict.Bytes()
	}

	wf.PostingLists = make([]wirePostingList, len(idx.PostingLists))
	for i, pl := range idx.PostingLists {
		wf.PostingLists[i] = wirePostingList{RangeMax: toWireRangeMax(pl.RangeMax), Kth: pl.Kth}
	}

	wf.Data = make([][]wireTermBlockEntry, len(fwd.Data))
	for b, entries := range fwd.Data {
		wireEntries := make([]wireTermBlockEntry, len(entries))
		for i, e := range entries {
			docs := make([]wireDocScore, len(e.Docs))
			for j, d := range e.Docs {
				docs[j] = wireDocScore{InBlockDocID: d.InBlockDocID, Score: d.Score}
			}
			wireEntries[i] = wireTermBlockEntry{TermID: e.TermID, Docs: docs}
		}
		wf.Data[b] = wireEntries
	}

	return binary.Marshal(wf)
}

// Decode reconstructs an Index/BFwd pair from bytes produced by Encode.
func Decode(data []byte) (*bmpindex.Index, *bmpindex.BFwd, error) {
	var wf wireFile
	if err := binary.Unmarshal(data, &wf); err != nil {
		return nil, nil, err
	}

	idx := &bmpindex.Index{
		NumDocuments: wf.NumDocuments,
		Documents:    wf.Documents,
		PostingLists: make([]bmpindex.PostingList, len(wf.PostingLists)),
	}
	for i, wpl := range wf.PostingLists {
		idx.PostingLists[i] = bmpindex.PostingList{RangeMax: fromWireRangeMax(wpl.RangeMax), Kth: wpl.Kth}
	}
	if len(wf.TermDictFST) > 0 {
		dict, err := termdict.Load(wf.TermDictFST)
		if err != nil {
			return nil, nil, err
		}
		idx.TermDict = dict
	}

	fwd := &bmpindex.BFwd{
		BlockSize: wf.BlockSize,
		Data:      make([][]bmpindex.TermBlockEntry, len(wf.Data)),
	}
	for b, wireEntries := range wf.Data {
		entries := make([]bmpindex.TermBlockEntry, len(wireEntries))
		for i, we := range wireEntries {
			docs := make([]bmpindex.DocScore, len(we.Docs))
			for j, wd := range we.Docs {
				docs[j] = bmpindex.DocScore{InBlockDocID: wd.InBlockDocID, Score: wd.Score}
			}
			entries[i] = bmpindex.TermBlockEntry{TermID: we.TermID, Docs: docs}
		}
		fwd.Data[b] = entries
	}

	return idx, fwd, nil
}
