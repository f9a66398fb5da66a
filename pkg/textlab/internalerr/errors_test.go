package internalerr

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{&RecordError{Line: 3, Reason: "missing id marker"}, ErrMalformedRecord},
		{&EmptyVectorError{DocID: "20_newsgroups/sci.med/1"}, ErrEmptyDocumentVector},
		{&ZeroDFError{Position: 7, Word: "hockey"}, ErrZeroDocumentFrequency},
		{&SingularError{Dim: 4, Cond: math.Inf(1)}, ErrSingularMatrix},
	}

	for _, tc := range cases {
		wrapped := fmt.Errorf("pipeline: %w", tc.err)
		assert.True(t, errors.Is(wrapped, tc.sentinel), "%v should match %v", wrapped, tc.sentinel)
	}
}

func TestErrorMessagesCarryContext(t *testing.T) {
	assert.Contains(t, (&RecordError{Line: 12, Reason: "no text marker"}).Error(), "line 12")
	assert.Contains(t, (&EmptyVectorError{DocID: "doc-9"}).Error(), "doc-9")
	assert.Contains(t, (&ZeroDFError{Position: 5, Word: "goals"}).Error(), "goals")
	assert.Contains(t, (&SingularError{Dim: 10, Cond: 1e20}).Error(), "10x10")

	var dfErr *ZeroDFError
	err := fmt.Errorf("idf: %w", &ZeroDFError{Position: 2, Word: "x"})
	if assert.True(t, errors.As(err, &dfErr)) {
		assert.Equal(t, 2, dfErr.Position)
	}
}
