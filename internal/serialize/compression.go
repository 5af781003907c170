package serialize

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

// Compression identifies the namespace-level compression policy applied
// to a serialized payload before it is written to the disk cache tier.
type Compression byte

const (
	CompressionNone Compression = 0
	CompressionGzip Compression = 1
	CompressionLZ4  Compression = 2
	CompressionZstd Compression = 3
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// Compress applies the namespace's compression algorithm and prepends a
// 1-byte marker recording which one was used, so Decompress is
// self-describing and never needs out-of-band configuration at read time.
func Compress(payload []byte, algo Compression) ([]byte, error) {
	var body []byte
	var err error

	switch algo {
	case CompressionNone:
		body = payload
	case CompressionGzip:
		body, err = compressGzip(payload)
	case CompressionLZ4:
		body, err = compressLZ4(payload)
	case CompressionZstd:
		body, err = compressZstd(payload)
	default:
		return nil, fmt.Errorf("serialize: unknown compression algorithm %d", algo)
	}
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(body)+1)
	out = append(out, byte(algo))
	out = append(out, body...)
	return out, nil
}

// Decompress reads the 1-byte marker and reverses the matching algorithm.
func Decompress(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	algo := Compression(blob[0])
	body := blob[1:]

	switch algo {
	case CompressionNone:
		return body, nil
	case CompressionGzip:
		return decompressGzip(body)
	case CompressionLZ4:
		return decompressLZ4(body)
	case CompressionZstd:
		return decompressZstd(body)
	default:
		return nil, fmt.Errorf("serialize: unknown compression marker %d", algo)
	}
}

func compressGzip(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		return nil, fmt.Errorf("serialize: gzip write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("serialize: gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressGzip(payload []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("serialize: gzip reader: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func compressLZ4(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		return nil, fmt.Errorf("serialize: lz4 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("serialize: lz4 close: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressLZ4(payload []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(payload))
	return io.ReadAll(r)
}

func compressZstd(payload []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("serialize: zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(payload, nil), nil
}

func decompressZstd(payload []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("serialize: zstd reader: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(payload, nil)
}
