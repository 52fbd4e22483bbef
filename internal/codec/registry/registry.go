// Package registry resolves codecs by name or file extension.
package registry

import (
	"fmt"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/discochess/contagion/internal/codec"
	"github.com/discochess/contagion/internal/codec/gzipcodec"
	"github.com/discochess/contagion/internal/codec/noopcodec"
	"github.com/discochess/contagion/internal/codec/zstdcodec"
)

// ByName returns the codec called name: "zstd", "gzip" or "none".
func ByName(name string) (codec.Codec, error) {
	switch name {
	case "zstd", "zst":
		return zstdcodec.New(), nil
	case "gzip", "gz":
		return gzipcodec.New(), nil
	case "none", "":
		return noopcodec.New(), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// ForPath picks a codec from the extension of path (".zst", ".gz").
// Any other extension means no compression. Exports use the best zstd
// compression level.
func ForPath(path string) codec.Codec {
	switch filepath.Ext(path) {
	case ".zst":
		return zstdcodec.NewWithLevel(zstd.SpeedBestCompression)
	case ".gz":
		return gzipcodec.New()
	default:
		return noopcodec.New()
	}
}

// TrimExtension removes the compression extension from path, if any.
func TrimExtension(path string) string {
	switch ext := filepath.Ext(path); ext {
	case ".zst", ".gz":
		return path[:len(path)-len(ext)]
	default:
		return path
	}
}
