package store

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cognicore/textlab/pkg/textlab/internalerr"
)

// EncodeFloats packs v as little-endian IEEE 754 doubles.
func EncodeFloats(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(x))
	}
	return buf
}

// DecodeFloats reverses EncodeFloats.
func DecodeFloats(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("blob of %d bytes: %w", len(buf), internalerr.ErrInvalidInput)
	}
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return out, nil
}

// Validate checks that the data matches the declared shape.
func (a Artifact) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("artifact without name: %w", internalerr.ErrInvalidInput)
	}
	if a.Rows < 0 || a.Cols < 0 || a.Rows*a.Cols != len(a.Data) {
		return fmt.Errorf("artifact %q: %dx%d shape for %d values: %w",
			a.Name, a.Rows, a.Cols, len(a.Data), internalerr.ErrDimensionMismatch)
	}
	return nil
}
