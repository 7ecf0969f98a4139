package source

import (
	"compress/gzip"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// Encoding names shared by file extensions and HTTP Content-Encoding values.
const (
	encodingGzip   = "gzip"
	encodingBrotli = "br"
	encodingZstd   = "zstd"
)

// decompress wraps body with a decoder for the given encoding. It returns
// body unchanged for an empty or unknown encoding. Closing the result closes
// both the decoder and body.
func decompress(encoding string, body io.ReadCloser) (io.ReadCloser, error) {
	var reader io.ReadCloser
	switch encoding {
	case encodingGzip:
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, err
		}
		reader = gz
	case encodingBrotli:
		reader = io.NopCloser(brotli.NewReader(body))
	case encodingZstd:
		zr, err := zstd.NewReader(body)
		if err != nil {
			return nil, err
		}
		reader = zr.IOReadCloser()
	default:
		return body, nil
	}

	return &decompressReadCloser{reader: reader, originalBody: body}, nil
}

// encodingForExtension maps a lower-cased file extension to an encoding name.
func encodingForExtension(ext string) string {
	switch ext {
	case ".gz", ".gzip":
		return encodingGzip
	case ".br":
		return encodingBrotli
	case ".zst", ".zstd":
		return encodingZstd
	default:
		return ""
	}
}

// decompressReadCloser wraps a decompressor reader and ensures both
// the decompressor and the original body are closed
type decompressReadCloser struct {
	reader       io.ReadCloser
	originalBody io.ReadCloser
}

func (d *decompressReadCloser) Read(p []byte) (int, error) {
	return d.reader.Read(p)
}

func (d *decompressReadCloser) Close() error {
	readerErr := d.reader.Close()
	bodyErr := d.originalBody.Close()

	if readerErr != nil {
		return readerErr
	}
	return bodyErr
}

// parseContentEncoding returns the outermost encoding of a Content-Encoding
// header, lower-cased, or "" when the header is empty.
func parseContentEncoding(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}

	// The last listed encoding was applied last and must be removed first.
	parts := strings.Split(header, ",")
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
}
