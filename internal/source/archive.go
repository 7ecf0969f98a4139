package source

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/Belphemur/MovieLinks/internal/apperrors"
	"github.com/Belphemur/MovieLinks/internal/config"
	"github.com/nwaples/rardecode/v2"
)

// entryMatches reports whether an archive member is the requested entry.
// Members are compared by base name, case-insensitively, so
// "ml-latest-small/links.csv" matches "links.csv".
func entryMatches(memberName, entry string) bool {
	return strings.EqualFold(path.Base(strings.ReplaceAll(memberName, "\\", "/")), entry)
}

// openZipEntry locates entry inside a ZIP archive read from body. Local files
// are read in place; other readers are buffered in memory first.
func openZipEntry(name string, body io.ReadCloser, entry string) (io.ReadCloser, error) {
	logger := config.GetLogger()

	var (
		readerAt io.ReaderAt
		size     int64
	)
	if f, ok := body.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		readerAt, size = f, info.Size()
	} else {
		content, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		readerAt, size = bytes.NewReader(content), int64(len(content))
	}

	zipReader, err := zip.NewReader(readerAt, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open ZIP archive: %w", err)
	}

	logger.Debug().
		Int("fileCount", len(zipReader.File)).
		Str("entry", entry).
		Msg("Searching for entry in ZIP archive")

	for _, file := range zipReader.File {
		if file.FileInfo().IsDir() || !entryMatches(file.Name, entry) {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in ZIP: %w", file.Name, err)
		}

		logger.Info().
			Str("member", file.Name).
			Uint64("size", file.UncompressedSize64).
			Msg("Reading links from ZIP archive")

		return rc, nil
	}

	return nil, &apperrors.ErrUnsupportedSource{
		Path:   name,
		Reason: fmt.Sprintf("entry %q not found in ZIP archive (searched %d files)", entry, len(zipReader.File)),
	}
}

// openRarEntry advances a RAR stream to entry. The returned reader shares
// body; closing the Source closes body.
func openRarEntry(name string, body io.Reader, entry string) (io.Reader, error) {
	logger := config.GetLogger()

	rr, err := rardecode.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to open RAR archive: %w", err)
	}

	searched := 0
	for {
		header, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read RAR archive: %w", err)
		}
		searched++
		if header.IsDir || !entryMatches(header.Name, entry) {
			continue
		}

		logger.Info().
			Str("member", header.Name).
			Int64("size", header.UnPackedSize).
			Msg("Reading links from RAR archive")

		return rr, nil
	}

	return nil, &apperrors.ErrUnsupportedSource{
		Path:   name,
		Reason: fmt.Sprintf("entry %q not found in RAR archive (searched %d files)", entry, searched),
	}
}
