// Package source opens links files from disk or over HTTP, unwrapping
// compression and archives and converting the text to UTF-8.
package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Belphemur/MovieLinks/internal/apperrors"
	"github.com/Belphemur/MovieLinks/internal/config"
)

// DefaultEntry is the member read from ZIP and RAR archives, as shipped in
// the MovieLens dataset archives.
const DefaultEntry = "links.csv"

// Options describes where and how to read a links file.
type Options struct {
	Path      string        // local path or http(s) URL
	Entry     string        // archive member name, DefaultEntry when empty
	Encoding  string        // text encoding label, UTF-8 when empty
	Timeout   time.Duration // HTTP timeout for remote sources, 60s when zero
	Proxy     string        // optional proxy URL for remote sources
	UserAgent string        // config.GetUserAgent() when empty
}

// Source is an open, decoded links file.
type Source struct {
	io.Reader
	name    string
	closers []io.Closer
}

// Name returns the path or URL the source was opened from.
func (s *Source) Name() string {
	return s.name
}

// Close releases every reader opened for the source, innermost first.
func (s *Source) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

// FromReader wraps an already open reader, e.g. standard input.
func FromReader(name string, r io.Reader, encoding string) (*Source, error) {
	utf8, err := newUTF8Reader(r, encoding)
	if err != nil {
		return nil, err
	}
	s := &Source{Reader: utf8, name: name}
	if c, ok := r.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
	return s, nil
}

// Open opens the links file described by opts.
func Open(ctx context.Context, opts Options) (*Source, error) {
	logger := config.GetLogger()

	if opts.Path == "" {
		return nil, &apperrors.ErrUnsupportedSource{Path: opts.Path, Reason: "no path given"}
	}
	entry := opts.Entry
	if entry == "" {
		entry = DefaultEntry
	}

	s := &Source{name: opts.Path}

	var (
		body io.ReadCloser
		err  error
	)
	ext, remote := classify(opts.Path)
	if remote {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		userAgent := opts.UserAgent
		if userAgent == "" {
			userAgent = config.GetUserAgent()
		}
		body, err = fetch(ctx, newHTTPClient(opts.Proxy, timeout), opts.Path, userAgent)
	} else {
		body, err = os.Open(opts.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Path, err)
	}
	s.closers = append(s.closers, body)

	logger.Debug().
		Str("path", opts.Path).
		Bool("remote", remote).
		Str("extension", ext).
		Msg("Opened links source")

	var reader io.Reader
	switch ext {
	case ".zip":
		member, err := openZipEntry(opts.Path, body, entry)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, member)
		reader = member
	case ".rar":
		member, err := openRarEntry(opts.Path, body, entry)
		if err != nil {
			s.Close()
			return nil, err
		}
		reader = member
	default:
		decoded, err := decompress(encodingForExtension(ext), body)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("decompress %s: %w", opts.Path, err)
		}
		if decoded != body {
			// Closing the decoder also closes body; drop the duplicate.
			s.closers = []io.Closer{decoded}
		}
		reader = decoded
	}

	utf8, err := newUTF8Reader(reader, opts.Encoding)
	if err != nil {
		s.Close()
		return nil, &apperrors.ErrUnsupportedSource{Path: opts.Path, Reason: err.Error()}
	}
	s.Reader = utf8

	return s, nil
}

// classify returns the lower-cased final extension of p and whether p is an
// http(s) URL. For URLs only the path component is considered.
func classify(p string) (string, bool) {
	if u, err := url.Parse(p); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return strings.ToLower(path.Ext(u.Path)), true
	}
	return strings.ToLower(filepath.Ext(p)), false
}
