// Command bmp-build consumes a gob-encoded ciffstream (pkg/ciffstream;
// not a real CIFF protobuf file, see that package's doc comment) and
// writes a built Index/BFwd pair to disk. It is a thin wiring layer, not
// a CLI framework: flag parsing is the one piece of surface area spec.md
// explicitly puts out of scope, so this sticks to the standard library
// flag package rather than adopting a richer CLI dependency for it.
package main

import (
	"flag"
	"log"

	"github.com/kittclouds/bmp/pkg/bmpio"
	"github.com/kittclouds/bmp/pkg/builder"
	"github.com/kittclouds/bmp/pkg/ciffstream"
)

func main() {
	input := flag.String("input", "", "path to the gob-encoded posting stream")
	output := flag.String("output", "", "path to write the built index to")
	blockSize := flag.Int("bsize", 64, "forward index block size")
	compress := flag.Bool("compress", false, "use compressed range-max storage")
	flag.Parse()

	if *input == "" || *output == "" {
		log.Fatal("bmp-build: -input and -output are required")
	}

	src, err := ciffstream.OpenFileSource(*input)
	if err != nil {
		log.Fatalf("bmp-build: opening input: %v", err)
	}
	defer src.Close()

	b, err := builder.New(builder.Config{BlockSize: *blockSize, Compress: *compress})
	if err != nil {
		log.Fatalf("bmp-build: %v", err)
	}

	idx, fwd, err := b.Build(src)
	if err != nil {
		log.Fatalf("bmp-build: building index: %v", err)
	}

	if err := bmpio.Save(bmpio.DefaultFS(), *output, idx, fwd); err != nil {
		log.Fatalf("bmp-build: saving index: %v", err)
	}

	log.Printf("bmp-build: wrote %d documents, %d blocks to %s", idx.NumDocuments, fwd.NumBlocks(), *output)
}
