// Package queryparse implements the query input format (spec §6): one
// query per line, "<qid>:<space-separated tokens>", where token
// multiplicity becomes a raw weight rescaled to fit the engine's 8-bit,
// MaxTermWeight-capped query weights.
package queryparse

import (
	"fmt"
	"strings"

	"github.com/kittclouds/bmp/pkg/bmperr"
)

// MaxTermWeight is the quantized query weight ceiling (spec §3),
// matching original_source/src/query/mod.rs's MAX_TERM_WEIGHT.
const MaxTermWeight = 32

// ParseLine parses one query line into its id and per-term weights. A
// line with no ":" separator is malformed.
func ParseLine(line string) (qid string, weights map[string]uint8, err error) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", nil, fmt.Errorf("%w: query line missing ':' separator: %q", bmperr.ErrInputMalformed, line)
	}
	qid = line[:idx]
	tokens := strings.Fields(line[idx+1:])

	raw := make(map[string]int)
	maxW := 0
	for _, tok := range tokens {
		raw[tok]++
		if raw[tok] > maxW {
			maxW = raw[tok]
		}
	}

	weights = make(map[string]uint8, len(raw))
	if maxW <= MaxTermWeight {
		for term, w := range raw {
			weights[term] = uint8(w)
		}
		return qid, weights, nil
	}

	// Rescale: ceil(w * 32 / max_w) for each term (spec §6, scenario S5).
	for term, w := range raw {
		weights[term] = uint8(ceilDiv(w*MaxTermWeight, maxW))
	}
	return qid, weights, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
