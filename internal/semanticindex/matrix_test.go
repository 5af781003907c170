package semanticindex

import "testing"

func TestEncodeDecodeMatrixRoundTrips(t *testing.T) {
	vectors := [][]float32{
		{1, 2, 3},
		{4, 5, 6},
	}
	encoded, err := EncodeMatrix(vectors)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeMatrix(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(vectors) {
		t.Fatalf("decoded %d rows, want %d", len(decoded), len(vectors))
	}
	for i := range vectors {
		for j := range vectors[i] {
			if decoded[i][j] != vectors[i][j] {
				t.Fatalf("row %d col %d = %v, want %v", i, j, decoded[i][j], vectors[i][j])
			}
		}
	}
}

func TestEncodeMatrixRejectsEmptyInput(t *testing.T) {
	if _, err := EncodeMatrix(nil); err == nil {
		t.Fatal("expected error encoding an empty matrix")
	}
}

func TestEncodeMatrixRejectsRaggedRows(t *testing.T) {
	_, err := EncodeMatrix([][]float32{{1, 2}, {3}})
	if err == nil {
		t.Fatal("expected error encoding ragged rows")
	}
}
