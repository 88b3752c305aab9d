// Command bmp-search loads a built index and runs queries from a
// "<qid>:<tokens>" file (pkg/queryparse) against it, printing TREC lines
// (pkg/trecfmt) for each query's top-k.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kittclouds/bmp/pkg/bmpindex"
	"github.com/kittclouds/bmp/pkg/bmpio"
	"github.com/kittclouds/bmp/pkg/queryparse"
	"github.com/kittclouds/bmp/pkg/search"
	"github.com/kittclouds/bmp/pkg/trecfmt"
)

func main() {
	indexPath := flag.String("index", "", "path to a built index")
	queriesPath := flag.String("queries", "", "path to a query file")
	k := flag.Int("k", 10, "retrieval depth")
	alpha := flag.Float64("alpha", 1.0, "approximation factor")
	beta := flag.Float64("beta", 1.0, "query-term retention fraction")
	flag.Parse()

	if *indexPath == "" || *queriesPath == "" {
		log.Fatal("bmp-search: -index and -queries are required")
	}

	idx, fwd, err := bmpio.Load(bmpio.DefaultFS(), *indexPath)
	if err != nil {
		log.Fatalf("bmp-search: loading index: %v", err)
	}
	searcher := search.NewSearcher(idx, fwd)

	f, err := os.Open(*queriesPath)
	if err != nil {
		log.Fatalf("bmp-search: opening queries: %v", err)
	}
	defer f.Close()

	cfg := search.Config{K: *k, Alpha: *alpha, Beta: *beta}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		qid, weights, err := queryparse.ParseLine(line)
		if err != nil {
			log.Fatalf("bmp-search: %v", err)
		}

		cursors := resolveCursors(idx, weights)
		for _, r := range searcher.Search(cfg, cursors) {
			fmt.Println(trecfmt.Line(qid, r.DocName, r.Rank, r.Score))
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("bmp-search: reading queries: %v", err)
	}
}

func resolveCursors(idx *bmpindex.Index, weights map[string]uint8) []search.Cursor {
	var cursors []search.Cursor
	for term, weight := range weights {
		id, ok := idx.TermDict.Lookup(term)
		if !ok {
			continue // term absent from dictionary: dropped, not fatal (spec §7 QueryEmpty)
		}
		pl := idx.PostingLists[id]
		cursors = append(cursors, search.Cursor{TermID16: uint16(id), RangeMax: pl.RangeMax, Kth: pl.Kth, Weight: weight})
	}
	return cursors
}
