// Package bmpio loads and saves a built Index/BFwd pair through a
// hackpadfs.FS, the same storage abstraction GoKitt's pkg/vector.Store
// uses to keep its HNSW index pluggable across native and WASM targets
// (hackpadfs.WriteFullFile / hackpadfs.ReadFile against an injected
// hackpadfs.FS). This module keeps that pluggability on the load path
// even though no WASM command ships alongside it: the default FS is
// os-backed, but any hackpadfs implementation works.
package bmpio

import (
	"fmt"

	"github.com/hack-pad/hackpadfs"
	hpos "github.com/hack-pad/hackpadfs/os"

	"github.com/kittclouds/bmp/pkg/bmpcodec"
	"github.com/kittclouds/bmp/pkg/bmperr"
	"github.com/kittclouds/bmp/pkg/bmpindex"
)

// FS is the storage abstraction an Index/BFwd pair is loaded from or
// saved to.
type FS = hackpadfs.FS

// DefaultFS returns the OS-backed hackpadfs implementation.
func DefaultFS() FS {
	return hpos.NewFS()
}

// Save encodes idx and fwd (pkg/bmpcodec) and writes them to path on fs.
func Save(fs FS, path string, idx *bmpindex.Index, fwd *bmpindex.BFwd) error {
	data, err := bmpcodec.Encode(idx, fwd)
	if err != nil {
		return fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
	}
	if err := hackpadfs.WriteFullFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
	}
	return nil
}

// Load reads path from fs and decodes it into an Index/BFwd pair.
func Load(fs FS, path string) (*bmpindex.Index, *bmpindex.BFwd, error) {
	data, err := hackpadfs.ReadFile(fs, path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
	}
	idx, fwd, err := bmpcodec.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", bmperr.ErrIoFailure, err)
	}
	return idx, fwd, nil
}
