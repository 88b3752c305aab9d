// Package termdict implements the term dictionary (component C3): an
// immutable, lexicographically ordered term -> term-id map backed by a
// finite-state transducer, so that a built index can hold term strings
// once (in the FST) instead of once per posting list.
//
// This finishes what GoKitt's pkg/fst/wrapper.go started: that file
// declares an IndexBuilder/IndexReader API against an in-package type
// named vellum, but never defines the Builder/FST/New/Load types it
// calls — it is a wrapper with no implementation underneath. Elsewhere
// in the retrieval pack, go-mizu-mizu's search blueprint depends
// directly on github.com/blevesearch/vellum, so this package is that
// wrapper finished against the real upstream instead of an invented one.
package termdict

import (
	"bytes"
	"sort"

	"github.com/blevesearch/vellum"
)

// Dict is a built, read-only term dictionary.
type Dict struct {
	fst *vellum.FST
}

// Builder accumulates terms before a single Finish call produces a Dict.
// Vellum requires keys inserted in ascending lexicographic order, so
// Builder buffers term-id assignment until Finish sorts and streams them.
type Builder struct {
	terms map[string]struct{}
}

// NewBuilder creates an empty term dictionary builder.
func NewBuilder() *Builder {
	return &Builder{terms: make(map[string]struct{})}
}

// Add registers a term. Duplicate Add calls for the same term are
// idempotent.
func (b *Builder) Add(term string) {
	b.terms[term] = struct{}{}
}

// Finish assigns each distinct term a dense term-id in lexicographic
// order (0, 1, 2, ...) and builds the FST. The returned slice maps
// term-id -> term, which callers use to resolve ids back to terms and to
// drive posting-list assembly in term-id order.
func (b *Builder) Finish() (*Dict, []string, error) {
	sorted := make([]string, 0, len(b.terms))
	for t := range b.terms {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)

	var buf bytes.Buffer
	fb, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, nil, err
	}
	for id, term := range sorted {
		if err := fb.Insert([]byte(term), uint64(id)); err != nil {
			return nil, nil, err
		}
	}
	if err := fb.Close(); err != nil {
		return nil, nil, err
	}

	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, nil, err
	}
	return &Dict{fst: fst}, sorted, nil
}

// Lookup resolves a term to its term-id.
func (d *Dict) Lookup(term string) (uint32, bool) {
	id, exists, err := d.fst.Get([]byte(term))
	if err != nil || !exists {
		return 0, false
	}
	return uint32(id), true
}

// Len returns the number of terms in the dictionary.
func (d *Dict) Len() int {
	return int(d.fst.Len())
}

// Bytes returns the serialized FST, for embedding in the on-disk index
// blob (component C10).
func (d *Dict) Bytes() []byte {
	return d.fst.Bytes()
}

// Load reconstructs a Dict from serialized FST bytes, as produced by
// Bytes.
func Load(b []byte) (*Dict, error) {
	fst, err := vellum.Load(b)
	if err != nil {
		return nil, err
	}
	return &Dict{fst: fst}, nil
}

// Close releases resources held by the underlying FST.
func (d *Dict) Close() error {
	return d.fst.Close()
}
