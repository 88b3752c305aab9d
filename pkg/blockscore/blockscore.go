// Package blockscore implements the block scorer (component C8): a
// two-pointer merge of a query vector against one forward-index block,
// producing a dense per-document score array for that block (spec §4.7).
package blockscore

import "github.com/kittclouds/bmp/pkg/bmpindex"

// QueryTerm is one surviving query term: its narrowed term-id and
// quantized weight, as consumed by the block scorer's merge.
type QueryTerm struct {
	TermID uint16
	Weight uint8
}

// Score merges queryVec against block, both required to be sorted
// ascending by term-id, and returns doc_score[0..blockSize). Entries for
// in-block docids beyond the block's actual document count are zero and
// must be clipped by the caller (the last block may be short).
func Score(queryVec []QueryTerm, block []bmpindex.TermBlockEntry, blockSize int) []uint16 {
	docScore := make([]uint16, blockSize)
	qi, bi := 0, 0
	for qi < len(queryVec) && bi < len(block) {
		qt := queryVec[qi]
		bt := block[bi]
		switch {
		case qt.TermID < bt.TermID:
			qi++
		case qt.TermID > bt.TermID:
			bi++
		default:
			for _, d := range bt.Docs {
				sum := uint32(docScore[d.InBlockDocID]) + uint32(qt.Weight)*uint32(d.Score)
				if sum > 0xFFFF {
					sum = 0xFFFF
				}
				docScore[d.InBlockDocID] = uint16(sum)
			}
			qi++
			bi++
		}
	}
	return docScore
}
