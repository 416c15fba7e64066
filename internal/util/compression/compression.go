// Package compression provides the value codecs used by the persistent
// key-value backends.
package compression

import "fmt"

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// NoneCompressor stores values as they are.
type NoneCompressor struct{}

func (NoneCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (NoneCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }

// ByName maps a configuration value to a compressor. The empty name selects zstd.
func ByName(name string) (Compressor, error) {
	switch name {
	case "", "zstd":
		return ZstdCompressor{}, nil
	case "gzip":
		return GzipCompressor{}, nil
	case "none":
		return NoneCompressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}
