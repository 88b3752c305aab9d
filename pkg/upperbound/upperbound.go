// Package upperbound implements the upper-bound combiner (component C7):
// folding each query term's per-block maxima, scaled by the term's
// query weight, into a single per-block upper-bound array, saturating at
// 0xFFFF (spec §4.6, invariant 8).
package upperbound

import "github.com/kittclouds/bmp/pkg/rangemax"

// Term is one query term's contribution: its range-max store and its
// quantized query weight (capped at MaxTermWeight by the caller).
type Term struct {
	RangeMax rangemax.Store
	Weight   uint8
}

// Compute returns ub[0..numBlocks), the per-block upper bound summed
// across terms. Each term's range-max array is walked in whichever form
// it was built (Raw or Compressed); only non-zero maxima contribute, so a
// term absent from a block leaves that block's running sum unchanged.
func Compute(terms []Term, numBlocks int) []uint16 {
	ub := make([]uint16, numBlocks)
	for _, t := range terms {
		switch s := t.RangeMax.(type) {
		case *rangemax.Raw:
			addRaw(ub, s, t.Weight)
		case *rangemax.Compressed:
			addCompressed(ub, s, t.Weight)
		}
	}
	return ub
}

func addRaw(ub []uint16, s *rangemax.Raw, weight uint8) {
	for b, m := range s.Max {
		if m == 0 {
			continue
		}
		ub[b] = saturatingAdd(ub[b], uint16(m)*uint16(weight))
	}
}

func addCompressed(ub []uint16, s *rangemax.Compressed, weight uint8) {
	for si, super := range s.Supers {
		base := si * rangemax.SuperBlockSize
		for _, e := range super.Entries {
			b := base + int(e.Offset)
			ub[b] = saturatingAdd(ub[b], uint16(e.Value)*uint16(weight))
		}
	}
}

// saturatingAdd clamps at 0xFFFF instead of wrapping (spec §4.6, §8
// property 8).
func saturatingAdd(a, b uint16) uint16 {
	sum := uint32(a) + uint32(b)
	if sum > 0xFFFF {
		return 0xFFFF
	}
	return uint16(sum)
}
