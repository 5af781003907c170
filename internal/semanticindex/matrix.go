// Package semanticindex builds and caches the approximate-nearest-neighbor
// search structure over a corpus's embedding vectors, per spec.md §4.6.5.
package semanticindex

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// EncodeMatrix serializes a row-major float32 embedding matrix. No
// matrix-serialization library appears anywhere in the retrieved pack, so
// this one piece is deliberately stdlib (see DESIGN.md).
func EncodeMatrix(vectors [][]float32) ([]byte, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("semanticindex: cannot encode an empty matrix")
	}
	dim := len(vectors[0])
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(vectors))); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(dim)); err != nil {
		return nil, err
	}
	for i, row := range vectors {
		if len(row) != dim {
			return nil, fmt.Errorf("semanticindex: row %d has dimension %d, want %d", i, len(row), dim)
		}
		if err := binary.Write(buf, binary.LittleEndian, row); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeMatrix reverses EncodeMatrix.
func DecodeMatrix(data []byte) ([][]float32, error) {
	r := bytes.NewReader(data)
	var rows, dim uint32
	if err := binary.Read(r, binary.LittleEndian, &rows); err != nil {
		return nil, fmt.Errorf("semanticindex: read row count: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("semanticindex: read dimension: %w", err)
	}
	out := make([][]float32, rows)
	for i := range out {
		row := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("semanticindex: read row %d: %w", i, err)
		}
		out[i] = row
	}
	return out, nil
}

func encodeVector(v []float32) []byte {
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}
