// Package ciffstream defines the contract the index builder (C6)
// consumes from an external posting-stream producer. The real CIFF
// protobuf reader is an out-of-scope collaborator (spec §1); this
// package only specifies the Source interface plus a gob-encoded
// in-memory/file-backed double used by tests and the bmp-build demo
// command. It does not parse the real CIFF wire format.
package ciffstream

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/kittclouds/bmp/pkg/bmperr"
)

// Header carries the two counts the builder needs up front (spec §6).
type Header struct {
	NumDocuments     uint32
	NumPostingsLists uint32
}

// Posting is one (docid-delta, term-frequency) pair within a
// PostingsList, matching CIFF's delta-encoded docid convention.
type Posting struct {
	DocIDDelta int64
	TF         int64
}

// PostingsList is one term's full posting list as the stream presents it.
type PostingsList struct {
	Term     string
	Postings []Posting
}

// DocRecord associates an absolute docid with its external collection name.
type DocRecord struct {
	DocID           uint32
	CollectionDocID string
}

// Source is a rewindable producer of CIFF-shaped records, in order: one
// Header, NumPostingsLists PostingsList records, NumDocuments DocRecord
// records. The builder calls Rewind once per pass; pass 1 reads all three
// groups, pass 2 reads the Header and the PostingsList records only.
type Source interface {
	Rewind() error
	ReadHeader() (Header, error)
	ReadPostingsList() (PostingsList, error)
	ReadDocRecord() (DocRecord, error)
}

// record is the single envelope type the gob stream carries; Kind
// discriminates which payload field is populated.
type record struct {
	Kind     string
	Header   Header
	Postings PostingsList
	Doc      DocRecord
}

const (
	kindHeader   = "header"
	kindPostings = "postings"
	kindDoc      = "doc"
)

// MemorySource is an in-memory Source built from already-materialized
// records, for unit tests.
type MemorySource struct {
	header   Header
	postings []PostingsList
	docs     []DocRecord

	postingsPos int
	docsPos     int
}

// NewMemorySource builds a MemorySource from its three record groups.
func NewMemorySource(header Header, postings []PostingsList, docs []DocRecord) *MemorySource {
	return &MemorySource{header: header, postings: postings, docs: docs}
}

func (m *MemorySource) Rewind() error {
	m.postingsPos = 0
	m.docsPos = 0
	return nil
}

func (m *MemorySource) ReadHeader() (Header, error) {
	return m.header, nil
}

func (m *MemorySource) ReadPostingsList() (PostingsList, error) {
	if m.postingsPos >= len(m.postings) {
		return PostingsList{}, fmt.Errorf("%w: no more postings lists", bmperr.ErrInputMalformed)
	}
	pl := m.postings[m.postingsPos]
	m.postingsPos++
	return pl, nil
}

func (m *MemorySource) ReadDocRecord() (DocRecord, error) {
	if m.docsPos >= len(m.docs) {
		return DocRecord{}, fmt.Errorf("%w: no more doc records", bmperr.ErrInputMalformed)
	}
	dr := m.docs[m.docsPos]
	m.docsPos++
	return dr, nil
}

// FileSource is a Source backed by a gob-encoded record stream on disk.
// This is a convenience double, not a CIFF protobuf decoder: it exists so
// the bmp-build demo command and larger tests have a rewindable
// file-backed Source without depending on the real CIFF wire format.
type FileSource struct {
	path string
	f    *os.File
	dec  *gob.Decoder
}

// OpenFileSource opens an existing gob-encoded stream written by
// WriteFileSource.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
	}
	return &FileSource{path: path, f: f, dec: gob.NewDecoder(f)}, nil
}

func (fs *FileSource) Rewind() error {
	if _, err := fs.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
	}
	fs.dec = gob.NewDecoder(fs.f)
	return nil
}

func (fs *FileSource) next(wantKind string) (record, error) {
	var r record
	if err := fs.dec.Decode(&r); err != nil {
		return record{}, fmt.Errorf("%w: %v", bmperr.ErrInputMalformed, err)
	}
	if r.Kind != wantKind {
		return record{}, fmt.Errorf("%w: expected %s record, got %s", bmperr.ErrInputMalformed, wantKind, r.Kind)
	}
	return r, nil
}

func (fs *FileSource) ReadHeader() (Header, error) {
	r, err := fs.next(kindHeader)
	if err != nil {
		return Header{}, err
	}
	return r.Header, nil
}

func (fs *FileSource) ReadPostingsList() (PostingsList, error) {
	r, err := fs.next(kindPostings)
	if err != nil {
		return PostingsList{}, err
	}
	return r.Postings, nil
}

func (fs *FileSource) ReadDocRecord() (DocRecord, error) {
	r, err := fs.next(kindDoc)
	if err != nil {
		return DocRecord{}, err
	}
	return r.Doc, nil
}

// Close releases the underlying file handle.
func (fs *FileSource) Close() error {
	return fs.f.Close()
}

// WriteFileSource serializes a header/postings/docs triple to path as a
// gob-encoded record stream readable by OpenFileSource.
func WriteFileSource(path string, header Header, postings []PostingsList, docs []DocRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
	}
	defer f.Close()

	enc := gob.NewEncoder(f)
	if err := enc.Encode(record{Kind: kindHeader, Header: header}); err != nil {
		return fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
	}
	for _, pl := range postings {
		if err := enc.Encode(record{Kind: kindPostings, Postings: pl}); err != nil {
			return fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
		}
	}
	for _, d := range docs {
		if err := enc.Encode(record{Kind: kindDoc, Doc: d}); err != nil {
			return fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
		}
	}
	return nil
}
