package parser

import (
	"fmt"
	"strings"

	"github.com/Belphemur/MovieLinks/internal/apperrors"
)

// Canonical column names used as csvutil tags.
const (
	columnMovieID = "movieId"
	columnTMDBID  = "tmdbId"
	columnIMDBID  = "imdbId"
)

// headerAliases maps a normalised header cell to its canonical column.
var headerAliases = map[string]string{
	"movieid": columnMovieID,
	"id":      columnMovieID,
	"tmdbid":  columnTMDBID,
	"tmdb":    columnTMDBID,
	"imdbid":  columnIMDBID,
	"imdb":    columnIMDBID,
}

// positionalOrder is used when no header cell is recognised: local id, TMDB id, IMDB id.
var positionalOrder = []string{columnMovieID, columnTMDBID, columnIMDBID}

func normaliseHeaderCell(cell string) string {
	cell = strings.ToLower(strings.TrimSpace(cell))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(cell)
}

// resolveHeader rewrites a header row into canonical column names for
// csvutil. Unrecognised cells get unique placeholder names so csvutil skips
// them. A header where no cell is recognised falls back to positional order.
func resolveHeader(header []string) ([]string, error) {
	if len(header) == 0 {
		return nil, &apperrors.ErrHeader{}
	}

	resolved := make([]string, len(header))
	seen := make(map[string]bool, len(positionalOrder))
	for i, cell := range header {
		column, ok := headerAliases[normaliseHeaderCell(cell)]
		if !ok || seen[column] {
			if ok {
				// Two cells name the same column.
				return nil, &apperrors.ErrHeader{Got: header}
			}
			resolved[i] = fmt.Sprintf("_unused%d", i)
			continue
		}
		seen[column] = true
		resolved[i] = column
	}

	switch {
	case len(seen) == len(positionalOrder):
		return resolved, nil
	case len(seen) > 0:
		return nil, &apperrors.ErrHeader{Got: header}
	case len(header) < len(positionalOrder):
		return nil, &apperrors.ErrHeader{Got: header}
	}

	copy(resolved, positionalOrder)
	return resolved, nil
}
