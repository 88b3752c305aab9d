// Package search implements the BMP search driver (component C9):
// query-term pruning, a bootstrap threshold from tabulated kth scores,
// bucket-sorted block traversal by upper bound, and early termination,
// following original_source/src/search.rs's b_search_verbose.
package search

import (
	"math"
	"sort"

	"github.com/kittclouds/bmp/pkg/blockscore"
	"github.com/kittclouds/bmp/pkg/bmpindex"
	"github.com/kittclouds/bmp/pkg/rangemax"
	"github.com/kittclouds/bmp/pkg/topk"
	"github.com/kittclouds/bmp/pkg/upperbound"
)

// NumBuckets is 65537: one bucket per possible 16-bit upper-bound value,
// plus the one extra slot original_source/src/search.rs reserves (its
// bucket count is `u16::MAX as usize + 2`).
const NumBuckets = 65537

// Cursor is one query term resolved against a loaded index: its
// forward-index term-id, its range-max store, its tabulated kth scores,
// and its quantized query weight.
type Cursor struct {
	TermID16 uint16
	RangeMax rangemax.Store
	Kth      [3]uint8
	Weight   uint8
}

// Config holds the per-query knobs from spec §6: retrieval depth,
// approximation factor, and term-keep ratio.
type Config struct {
	K     int
	Alpha float64
	Beta  float64
}

// Result is one ranked document in a query's output.
type Result struct {
	DocName string
	Rank    int
	Score   uint16
}

// Searcher holds a loaded index and forward index plus the reusable
// bucket scratch (spec §5: cleared, not reallocated, between queries).
// A Searcher is safe for concurrent use by independent query workers,
// provided each worker owns its own Searcher instance — the bucket
// scratch is per-Searcher, not per-query, and is not safe to share.
type Searcher struct {
	Index   *bmpindex.Index
	Fwd     *bmpindex.BFwd
	buckets [][]int
}

// NewSearcher wraps a loaded Index/BFwd pair, allocating the bucket
// scratch once.
func NewSearcher(idx *bmpindex.Index, fwd *bmpindex.BFwd) *Searcher {
	return &Searcher{
		Index:   idx,
		Fwd:     fwd,
		buckets: make([][]int, NumBuckets),
	}
}

// Search runs one query (spec §4.8) and returns its sorted top-k. An
// empty cursors slice (query reduced to zero terms after dictionary
// lookup, spec §7 QueryEmpty) returns nil, not an error.
func (s *Searcher) Search(cfg Config, cursors []Cursor) []Result {
	if len(cursors) == 0 {
		return nil
	}

	kept := pruneByWeight(cursors, cfg.Beta)

	threshold := bootstrapThreshold(kept, cfg.K)
	heap := topk.WithThreshold(cfg.K, threshold)

	numBlocks := s.Fwd.NumBlocks()
	ub := upperbound.Compute(toUBTerms(kept), numBlocks)

	s.fillBuckets(ub, heap.Threshold())

	queryVec := toQueryVec(kept)
	blockSize := s.Fwd.BlockSize
	numDocs := s.Index.NumDocuments

	for bucket := len(s.buckets) - 1; bucket >= 0; bucket-- {
		for _, b := range s.buckets[bucket] {
			currentUB := ub[b]
			scores := blockscore.Score(queryVec, s.Fwd.Data[b], blockSize)

			base := b * blockSize
			limit := blockSize
			if base+limit > numDocs {
				limit = numDocs - base
			}
			for i := 0; i < limit; i++ {
				heap.Insert(uint32(base+i), scores[i])
			}

			if float64(heap.Threshold()) > float64(currentUB)*cfg.Alpha {
				return toResults(s.Index, heap)
			}
		}
	}
	return toResults(s.Index, heap)
}

// pruneByWeight sorts cursors by query weight descending and keeps the
// top ceil(len(cursors) * beta) of them (spec §4.8 step 1).
func pruneByWeight(cursors []Cursor, beta float64) []Cursor {
	sorted := append([]Cursor(nil), cursors...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Weight > sorted[j].Weight })
	keep := int(math.Ceil(float64(len(sorted)) * beta))
	if keep > len(sorted) {
		keep = len(sorted)
	}
	return sorted[:keep]
}

// bootstrapThreshold computes t0 = max over kept terms of kth(k)*weight
// (spec §4.8 step 2, strict kth form per spec §9).
func bootstrapThreshold(kept []Cursor, k int) uint16 {
	var t0 uint16
	for _, c := range kept {
		v, ok := rangemax.KthAtDepth(c.Kth, k)
		if !ok {
			continue
		}
		contrib := uint16(v) * uint16(c.Weight)
		if contrib > t0 {
			t0 = contrib
		}
	}
	return t0
}

func toUBTerms(kept []Cursor) []upperbound.Term {
	terms := make([]upperbound.Term, len(kept))
	for i, c := range kept {
		terms[i] = upperbound.Term{RangeMax: c.RangeMax, Weight: c.Weight}
	}
	return terms
}

func toQueryVec(kept []Cursor) []blockscore.QueryTerm {
	qv := make([]blockscore.QueryTerm, len(kept))
	for i, c := range kept {
		qv[i] = blockscore.QueryTerm{TermID: c.TermID16, Weight: c.Weight}
	}
	sort.Slice(qv, func(i, j int) bool { return qv[i].TermID < qv[j].TermID })
	return qv
}

// fillBuckets resets the scratch and pushes every block whose upper
// bound clears the initial threshold into its bucket (spec §4.8 step 4).
func (s *Searcher) fillBuckets(ub []uint16, threshold uint16) {
	for i := range s.buckets {
		s.buckets[i] = s.buckets[i][:0]
	}
	for b, v := range ub {
		if v > threshold {
			s.buckets[v] = append(s.buckets[v], b)
		}
	}
}

func toResults(idx *bmpindex.Index, heap *topk.Heap) []Result {
	entries := heap.ToSortedSlice()
	results := make([]Result, len(entries))
	for i, e := range entries {
		results[i] = Result{DocName: idx.Documents[e.DocID], Rank: i + 1, Score: e.Score}
	}
	return results
}
