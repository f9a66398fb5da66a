package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")

	ErrMalformedRecord       = errors.New("malformed record")
	ErrEmptyDocumentVector   = errors.New("empty document vector")
	ErrZeroDocumentFrequency = errors.New("zero document frequency")
	ErrSingularMatrix        = errors.New("singular matrix")
	ErrDimensionMismatch     = errors.New("dimension mismatch")
)

// RecordError reports a corpus line that lacks the expected markers.
type RecordError struct {
	Line   int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, ErrMalformedRecord, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrMalformedRecord }

// EmptyVectorError reports a document with no in-vocabulary tokens.
type EmptyVectorError struct {
	DocID string
}

func (e *EmptyVectorError) Error() string {
	if e.DocID == "" {
		return fmt.Sprintf("%s: no in-vocabulary tokens", ErrEmptyDocumentVector)
	}
	return fmt.Sprintf("doc %q: %s: no in-vocabulary tokens", e.DocID, ErrEmptyDocumentVector)
}

func (e *EmptyVectorError) Unwrap() error { return ErrEmptyDocumentVector }

// ZeroDFError reports a dictionary position that occurs in no document.
type ZeroDFError struct {
	Position int
	Word     string
}

func (e *ZeroDFError) Error() string {
	return fmt.Sprintf("position %d (%q): %s", e.Position, e.Word, ErrZeroDocumentFrequency)
}

func (e *ZeroDFError) Unwrap() error { return ErrZeroDocumentFrequency }

// SingularError reports a Gram matrix that cannot be inverted.
type SingularError struct {
	Dim  int
	Cond float64 // condition number, +Inf when factorization failed
}

func (e *SingularError) Error() string {
	return fmt.Sprintf("%dx%d gram matrix: %s (cond=%g)", e.Dim, e.Dim, ErrSingularMatrix, e.Cond)
}

func (e *SingularError) Unwrap() error { return ErrSingularMatrix }
