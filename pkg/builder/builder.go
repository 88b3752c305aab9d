// Package builder implements the index builder (component C6): a
// two-pass consumer of a ciffstream.Source that produces an inverted
// index (C4) and a blocked forward index (C5).
//
// Pass 1 builds the per-term range-max stores and kth scores; pass 2
// rewinds the stream and builds the document-major forward index, then
// converts it to blocked form. Both per-term and per-block construction
// are embarrassingly parallel (spec §5) and are expressed here as a
// bounded worker pool over runtime.NumCPU() goroutines writing to
// pre-sized output slots, the idiomatic Go rendition of the Rust
// reference's par_chunks/into_par_iter ("bulk map over chunks with
// independent output slots, not fine-grained tasks" per spec §9).
package builder

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/kittclouds/bmp/pkg/bmperr"
	"github.com/kittclouds/bmp/pkg/bmpindex"
	"github.com/kittclouds/bmp/pkg/ciffstream"
	"github.com/kittclouds/bmp/pkg/rangemax"
	"github.com/kittclouds/bmp/pkg/termdict"
)

// maxTermVocabulary is the in-block term narrowing limit (spec §9 open
// question 3): term-ids are carried as uint16 inside the forward index,
// so the whole vocabulary must fit in that range.
const maxTermVocabulary = 1 << 16

// maxBlockSize is the in-block docid narrowing limit (spec §9 open
// question 3): in-block docids are carried as uint8.
const maxBlockSize = 256

// Config holds the builder's configuration knobs (spec §6).
type Config struct {
	BlockSize int
	Compress  bool
}

// Builder produces an Index/BFwd pair from a ciffstream.Source.
type Builder struct {
	cfg Config
}

// New creates a Builder. BlockSize must be in (0, 256].
func New(cfg Config) (*Builder, error) {
	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("%w: block size must be set", bmperr.ErrResourceMissing)
	}
	if cfg.BlockSize > maxBlockSize {
		return nil, fmt.Errorf("%w: block size %d exceeds the %d-document in-block docid width",
			bmperr.ErrInputMalformed, cfg.BlockSize, maxBlockSize)
	}
	return &Builder{cfg: cfg}, nil
}

// Build runs both passes over src and returns the built Index and BFwd.
func (b *Builder) Build(src ciffstream.Source) (*bmpindex.Index, *bmpindex.BFwd, error) {
	termPostings, header, err := b.pass1ReadPostings(src)
	if err != nil {
		return nil, nil, err
	}

	terms := make([]string, 0, len(termPostings))
	for term := range termPostings {
		terms = append(terms, term)
	}
	if len(terms) > maxTermVocabulary {
		return nil, nil, fmt.Errorf("%w: vocabulary of %d terms exceeds the %d-term in-block id width",
			bmperr.ErrInputMalformed, len(terms), maxTermVocabulary)
	}

	dict, sortedTerms, err := buildTermDict(terms)
	if err != nil {
		return nil, nil, err
	}

	numDocuments := int(header.NumDocuments)
	numBlocks := (numDocuments + b.cfg.BlockSize - 1) / b.cfg.BlockSize

	postingLists := make([]bmpindex.PostingList, len(sortedTerms))
	parallelFor(len(sortedTerms), func(i int) {
		ps := termPostings[sortedTerms[i]]
		dense := rangemax.FromPostings(ps, numDocuments, b.cfg.BlockSize)
		postingLists[i] = bmpindex.PostingList{
			RangeMax: rangemax.Build(dense, b.cfg.Compress),
			Kth:      rangemax.Kth(ps),
		}
	})

	documents, err := readDocRecords(src, numDocuments)
	if err != nil {
		return nil, nil, err
	}

	termID := make(map[string]uint16, len(sortedTerms))
	for i, t := range sortedTerms {
		termID[t] = uint16(i)
	}

	data, err := b.pass2BuildForward(src, termID, numDocuments, numBlocks)
	if err != nil {
		return nil, nil, err
	}

	idx := &bmpindex.Index{
		NumDocuments: numDocuments,
		PostingLists: postingLists,
		TermDict:     dict,
		Documents:    documents,
	}
	fwd := &bmpindex.BFwd{BlockSize: b.cfg.BlockSize, Data: data}
	return idx, fwd, nil
}

// pass1ReadPostings rewinds src, reads its header, and decodes every
// posting list into absolute (docid, quantized score) pairs.
func (b *Builder) pass1ReadPostings(src ciffstream.Source) (map[string][]rangemax.Posting, ciffstream.Header, error) {
	if err := src.Rewind(); err != nil {
		return nil, ciffstream.Header{}, fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
	}
	header, err := src.ReadHeader()
	if err != nil {
		return nil, ciffstream.Header{}, fmt.Errorf("%w: %v", bmperr.ErrInputMalformed, err)
	}

	termPostings := make(map[string][]rangemax.Posting, header.NumPostingsLists)
	for i := uint32(0); i < header.NumPostingsLists; i++ {
		pl, err := src.ReadPostingsList()
		if err != nil {
			return nil, ciffstream.Header{}, fmt.Errorf("%w: %v", bmperr.ErrInputMalformed, err)
		}
		postings, err := decodePostings(pl, int(header.NumDocuments))
		if err != nil {
			return nil, ciffstream.Header{}, err
		}
		termPostings[pl.Term] = postings
	}
	return termPostings, header, nil
}

// decodePostings delta-decodes docids and quantizes term frequencies to
// uint8 scores. The CIFF tf field is treated as an already-computed
// learned-sparse impact weight (spec's data model assumes ingest-time
// quantization, not a scoring formula this engine owns) and is clamped
// to the uint8 range rather than rejected, since the fatal error list
// (spec §7) names negative counts and out-of-range docids, not an
// oversized but otherwise valid weight. numDocuments bounds every
// decoded docid so a corrupt delta can never index perDoc or a
// range-max store out of bounds downstream.
func decodePostings(pl ciffstream.PostingsList, numDocuments int) ([]rangemax.Posting, error) {
	postings := make([]rangemax.Posting, 0, len(pl.Postings))
	var docID int64
	for _, p := range pl.Postings {
		docID += p.DocIDDelta
		if docID < 0 || docID > math.MaxUint32 {
			return nil, fmt.Errorf("%w: docid %d out of range for term %q", bmperr.ErrNumericOverflow, docID, pl.Term)
		}
		if docID >= int64(numDocuments) {
			return nil, fmt.Errorf("%w: docid %d for term %q exceeds the %d documents declared in the header",
				bmperr.ErrInputMalformed, docID, pl.Term, numDocuments)
		}
		if p.TF < 0 {
			return nil, fmt.Errorf("%w: negative term frequency for term %q", bmperr.ErrInputMalformed, pl.Term)
		}
		score := p.TF
		if score > 255 {
			score = 255
		}
		postings = append(postings, rangemax.Posting{DocID: uint32(docID), Score: uint8(score)})
	}
	return postings, nil
}

func buildTermDict(terms []string) (*termdict.Dict, []string, error) {
	tb := termdict.NewBuilder()
	for _, t := range terms {
		tb.Add(t)
	}
	dict, sortedTerms, err := tb.Finish()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
	}
	return dict, sortedTerms, nil
}

// readDocRecords reads numDocuments DocRecords, asserting they arrive in
// ascending docid order 0..numDocuments (spec §4.4, §6).
func readDocRecords(src ciffstream.Source, numDocuments int) ([]string, error) {
	documents := make([]string, numDocuments)
	for i := 0; i < numDocuments; i++ {
		dr, err := src.ReadDocRecord()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", bmperr.ErrInputMalformed, err)
		}
		if int(dr.DocID) != i {
			return nil, fmt.Errorf("%w: doc records must arrive in ascending order, expected %d got %d",
				bmperr.ErrInputMalformed, i, dr.DocID)
		}
		documents[i] = dr.CollectionDocID
	}
	return documents, nil
}

type docTermEntry struct {
	TermID uint16
	Score  uint8
}

// pass2BuildForward rewinds src again, re-reads the full stream, and
// builds the document-major forward index before converting it to
// blocked form (spec §4.4 pass 2, §4.5).
func (b *Builder) pass2BuildForward(src ciffstream.Source, termID map[string]uint16, numDocuments, numBlocks int) ([][]bmpindex.TermBlockEntry, error) {
	if err := src.Rewind(); err != nil {
		return nil, fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
	}
	header, err := src.ReadHeader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bmperr.ErrInputMalformed, err)
	}

	perDoc := make([][]docTermEntry, numDocuments)
	for i := uint32(0); i < header.NumPostingsLists; i++ {
		pl, err := src.ReadPostingsList()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", bmperr.ErrInputMalformed, err)
		}
		id, ok := termID[pl.Term]
		if !ok {
			return nil, fmt.Errorf("%w: term %q seen in pass 2 but not pass 1", bmperr.ErrInputMalformed, pl.Term)
		}
		postings, err := decodePostings(pl, numDocuments)
		if err != nil {
			return nil, err
		}
		for _, p := range postings {
			perDoc[p.DocID] = append(perDoc[p.DocID], docTermEntry{TermID: id, Score: p.Score})
		}
	}

	parallelFor(numDocuments, func(d int) {
		entries := perDoc[d]
		sort.Slice(entries, func(i, j int) bool { return entries[i].TermID < entries[j].TermID })
	})

	data := make([][]bmpindex.TermBlockEntry, numBlocks)
	parallelFor(numBlocks, func(bi int) {
		start := bi * b.cfg.BlockSize
		end := start + b.cfg.BlockSize
		if end > numDocuments {
			end = numDocuments
		}
		data[bi] = buildBlock(perDoc, start, end)
	})

	return data, nil
}

type blockTriple struct {
	TermID       uint16
	InBlockDocID uint8
	Score        uint8
}

// buildBlock gathers every (term, in-block docid, score) triple for
// documents [start, end), sorts by ascending term-id, and groups
// consecutive same-term triples into TermBlockEntry values (spec §4.5).
func buildBlock(perDoc [][]docTermEntry, start, end int) []bmpindex.TermBlockEntry {
	var triples []blockTriple
	for d := start; d < end; d++ {
		for _, e := range perDoc[d] {
			triples = append(triples, blockTriple{TermID: e.TermID, InBlockDocID: uint8(d - start), Score: e.Score})
		}
	}
	sort.SliceStable(triples, func(i, j int) bool { return triples[i].TermID < triples[j].TermID })

	var entries []bmpindex.TermBlockEntry
	for _, tr := range triples {
		if len(entries) == 0 || entries[len(entries)-1].TermID != tr.TermID {
			entries = append(entries, bmpindex.TermBlockEntry{TermID: tr.TermID})
		}
		last := &entries[len(entries)-1]
		last.Docs = append(last.Docs, bmpindex.DocScore{InBlockDocID: tr.InBlockDocID, Score: tr.Score})
	}
	return entries
}

// parallelFor runs fn(i) for i in [0, n) across a bounded pool of
// runtime.NumCPU() goroutines, each claiming indices from a shared
// channel; every index writes to its own output slot, so there is no
// shared mutable state between workers (spec §5).
func parallelFor(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}

	indices := make(chan int, n)
	for i := 0; i < n; i++ {
		indices <- i
	}
	close(indices)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				fn(i)
			}
		}()
	}
	wg.Wait()
}
