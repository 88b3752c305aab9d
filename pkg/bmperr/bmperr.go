// Package bmperr defines the typed error kinds used across the BMP
// engine's builder and loader paths. The retrieval kernel itself never
// fails: given a well-formed loaded index, search always returns a
// (possibly empty) top-k.
package bmperr

import "errors"

// Sentinel kinds. Wrap with fmt.Errorf("...: %w", kind) to attach context
// while keeping errors.Is/errors.As working for callers.
var (
	// ErrInputMalformed covers a CIFF header with negative counts, an
	// out-of-order docid, a truncated/unreadable record, or a query line
	// missing its ":" separator.
	ErrInputMalformed = errors.New("bmp: input malformed")

	// ErrResourceMissing covers a required builder parameter left unset;
	// builder.New returns it for an unset block size. Input and output
	// paths are not builder parameters and are not reported with it.
	ErrResourceMissing = errors.New("bmp: required resource missing")

	// ErrIoFailure covers an underlying read/write failure.
	ErrIoFailure = errors.New("bmp: io failure")

	// ErrNumericOverflow covers a docid or term frequency that does not
	// fit in the target integer width.
	ErrNumericOverflow = errors.New("bmp: numeric overflow")
)
