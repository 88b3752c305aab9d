// Package rangemax implements the per-term range-max store (component
// C2): the array of per-block score maxima consumed by the upper-bound
// combiner, in either a dense (Raw) or sparsified (Compressed) form.
//
// The Raw/Compressed split mirrors the teacher's SlicePostings/
// BitmapPostings dual-mode representation in qgram.PostingList: a small
// or dense structure for the common case, and a sparse structure that
// pays an indirection cost in exchange for skipping zero runs. Here the
// "is this slot populated" question for a Compressed super-block is
// answered by a bitset.BitSet instead of the teacher's promote-on-
// threshold bitmap, since every super-block is a fixed 256 slots and
// never grows.
package rangemax

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// SuperBlockSize is the number of consecutive block-maxima grouped into
// one super-block of a Compressed array (spec §3).
const SuperBlockSize = 256

// Kind distinguishes the two BlockMaxArray variants.
type Kind int

const (
	KindRaw Kind = iota
	KindCompressed
)

// Store is a per-term block-max array, consumed by the upper-bound
// combiner (C7) and, in raw form, directly indexable. Both
// implementations must agree, for any block index, with the definition
// "max score of the term in any document in that block, else 0".
type Store interface {
	// Len returns the number of blocks, ceil(numDocuments/blockSize).
	Len() int
	// At returns the block-max for block b, or 0 if absent.
	At(b int) uint8
	Kind() Kind
}

// Raw is a dense block-max array.
type Raw struct {
	Max []uint8
}

func (r *Raw) Len() int     { return len(r.Max) }
func (r *Raw) At(b int) uint8 { return r.Max[b] }
func (r *Raw) Kind() Kind   { return KindRaw }

// OffsetValue is one non-zero entry within a super-block: the offset is
// relative to the super-block's own start, in [0, SuperBlockSize).
type OffsetValue struct {
	Offset uint16
	Value  uint8
}

// SuperBlock holds the non-zero block-maxima for SuperBlockSize
// consecutive blocks, plus a presence bitset for O(1) membership tests.
type SuperBlock struct {
	Entries []OffsetValue
	present *bitset.BitSet
}

func newSuperBlock(entries []OffsetValue) SuperBlock {
	present := bitset.New(SuperBlockSize)
	for _, e := range entries {
		present.Set(uint(e.Offset))
	}
	return SuperBlock{Entries: entries, present: present}
}

// Get returns the value at offset within the super-block, or 0 if absent.
func (sb SuperBlock) Get(offset uint16) uint8 {
	if sb.present == nil || !sb.present.Test(uint(offset)) {
		return 0
	}
	// Entries is small (<=256) and built in ascending offset order; linear
	// scan is as fast as binary search at this size and keeps the common
	// "mostly empty super-block" case branch-predictable.
	for _, e := range sb.Entries {
		if e.Offset == offset {
			return e.Value
		}
	}
	return 0
}

// Compressed is the sparsified BlockMaxArray: one SuperBlock per 256
// consecutive blocks, holding only non-zero maxima.
type Compressed struct {
	Supers    []SuperBlock
	numBlocks int
}

func (c *Compressed) Len() int { return c.numBlocks }

func (c *Compressed) At(b int) uint8 {
	s := b / SuperBlockSize
	off := uint16(b % SuperBlockSize)
	return c.Supers[s].Get(off)
}

func (c *Compressed) Kind() Kind { return KindCompressed }

// Build constructs a Store from a dense block-max array, either keeping
// it Raw or splitting it into Compressed super-blocks.
func Build(dense []uint8, compress bool) Store {
	if !compress {
		return &Raw{Max: dense}
	}
	numSupers := (len(dense) + SuperBlockSize - 1) / SuperBlockSize
	supers := make([]SuperBlock, numSupers)
	for s := 0; s < numSupers; s++ {
		start := s * SuperBlockSize
		end := start + SuperBlockSize
		if end > len(dense) {
			end = len(dense)
		}
		var entries []OffsetValue
		for i := start; i < end; i++ {
			if dense[i] > 0 {
				entries = append(entries, OffsetValue{Offset: uint16(i - start), Value: dense[i]})
			}
		}
		supers[s] = newSuperBlock(entries)
	}
	return &Compressed{Supers: supers, numBlocks: len(dense)}
}

// FromPostings computes the dense per-block maxima for a term from its
// (docid, score) postings, given the block size (spec §4.2). Scores must
// already be quantized to uint8.
func FromPostings(postings []Posting, numDocuments, blockSize int) []uint8 {
	numBlocks := (numDocuments + blockSize - 1) / blockSize
	dense := make([]uint8, numBlocks)
	for _, p := range postings {
		b := int(p.DocID) / blockSize
		if p.Score > dense[b] {
			dense[b] = p.Score
		}
	}
	return dense
}

// Posting is a single (docid, quantized score) pair in a posting list, as
// consumed by FromPostings and Kth.
type Posting struct {
	DocID uint32
	Score uint8
}

// kthRanks are the only depths for which PostingList.kth_score is
// tabulated (spec §9, strict-form resolution of the kth(k) open question).
var kthRanks = [3]int{10, 100, 1000}

// Kth computes the 10th, 100th and 1000th largest raw score in postings,
// or 0 where the list is shorter than that depth.
func Kth(postings []Posting) [3]uint8 {
	scores := make([]uint8, len(postings))
	for i, p := range postings {
		scores[i] = p.Score
	}
	sortDescending(scores)
	var out [3]uint8
	for i, rank := range kthRanks {
		if rank-1 < len(scores) {
			out[i] = scores[rank-1]
		}
	}
	return out
}

// KthAtDepth maps a requested k to the tabulated kth-score slot. Only
// k in {10, 100, 1000} are tracked; any other k returns (0, false) and the
// caller should treat the threshold contribution as 0, per spec §9.
func KthAtDepth(kth [3]uint8, k int) (uint8, bool) {
	for i, rank := range kthRanks {
		if rank == k {
			return kth[i], true
		}
	}
	return 0, false
}

func sortDescending(s []uint8) {
	// Insertion sort is fine: posting lists feeding a single block-max
	// computation are bounded by corpus size but this runs once per term
	// at build time, never in the query hot path; a stable, obviously
	// correct sort beats a hand-rolled quickselect here.
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j] < v {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}

// Validate checks that a Store has the expected number of blocks. It
// compares lengths only; the block-max values themselves are not checked.
func Validate(s Store, expectedBlocks int) error {
	if s.Len() != expectedBlocks {
		return fmt.Errorf("rangemax: expected %d blocks, got %d", expectedBlocks, s.Len())
	}
	return nil
}
