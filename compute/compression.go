package compute

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the stream compression applied to CSV data.
type CompressionType uint8

const (
	// CompressionNone writes plain text.
	CompressionNone CompressionType = 0
	// CompressionLZ4 wraps the stream in an LZ4 frame.
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD wraps the stream in a ZSTD frame.
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// ZSTD encoder/decoder pools
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder(w io.Writer) (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		enc := v.(*zstd.Encoder)
		enc.Reset(w)
		return enc, nil
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func putZstdEncoder(enc *zstd.Encoder) {
	enc.Reset(nil)
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder(r io.Reader) (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		dec := v.(*zstd.Decoder)
		if err := dec.Reset(r); err != nil {
			return nil, err
		}
		return dec, nil
	}
	return zstd.NewReader(r)
}

func putZstdDecoder(dec *zstd.Decoder) {
	_ = dec.Reset(nil)
	zstdDecoderPool.Put(dec)
}

// compressWriter wraps w according to c. The returned close function
// flushes the frame without closing w.
func compressWriter(w io.Writer, c CompressionType) (io.Writer, func() error, error) {
	switch c {
	case CompressionNone:
		return w, func() error { return nil }, nil
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		return zw, zw.Close, nil
	case CompressionZSTD:
		enc, err := getZstdEncoder(w)
		if err != nil {
			return nil, nil, err
		}
		return enc, func() error {
			err := enc.Close()
			putZstdEncoder(enc)
			return err
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown compression type: %d", c)
}

// decompressReader wraps r according to c.
func decompressReader(r io.Reader, c CompressionType) (io.Reader, func(), error) {
	switch c {
	case CompressionNone:
		return r, func() {}, nil
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	case CompressionZSTD:
		dec, err := getZstdDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, func() { putZstdDecoder(dec) }, nil
	}
	return nil, nil, fmt.Errorf("unknown compression type: %d", c)
}
