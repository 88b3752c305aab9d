// Package trecfmt formats search.Result entries as TREC run lines
// (spec §6's example surface format). Full TREC tooling (multi-run
// comparison, qrels parsing) is out of scope; this is the one line
// format spec §8's scenarios assert on, so it gets a package of its
// own rather than being inlined into a command.
package trecfmt

import "fmt"

// Line formats one ranked result as "<qid> Q0 <docname> <rank> <score> BMP",
// matching original_source/src/util.rs's to_trec.
func Line(qid, docName string, rank int, score uint16) string {
	return fmt.Sprintf("%s Q0 %s %d %d BMP", qid, docName, rank, score)
}
