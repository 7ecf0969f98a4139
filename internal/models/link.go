package models

import "fmt"

// Link maps one MovieLens movie to its TMDB and IMDB identifiers.
type Link struct {
	MovieID int64 `json:"movieId" db:"id"`     // Local row id, unique in the destination table
	TMDBID  int64 `json:"tmdbId" db:"tmdb_id"` // The Movie Database identifier
	IMDBID  int64 `json:"imdbId" db:"imdb_id"` // Numeric part of the IMDB title identifier
}

// IMDBTag returns the identifier in the form IMDB uses in title URLs, e.g. "tt0114709".
func (l Link) IMDBTag() string {
	return fmt.Sprintf("tt%07d", l.IMDBID)
}

// WriteMode controls what happens when a movie id is already present in the table.
type WriteMode int

const (
	// WriteInsert issues a plain INSERT; an existing id is reported as a duplicate.
	WriteInsert WriteMode = iota
	// WriteUpsert replaces the TMDB and IMDB ids of an existing row.
	WriteUpsert
)

// String returns the configuration name of the mode.
func (m WriteMode) String() string {
	switch m {
	case WriteUpsert:
		return "upsert"
	default:
		return "insert"
	}
}

// ParseWriteMode converts a configuration value to a WriteMode.
func ParseWriteMode(s string) (WriteMode, error) {
	switch s {
	case "", "insert":
		return WriteInsert, nil
	case "upsert":
		return WriteUpsert, nil
	default:
		return WriteInsert, fmt.Errorf("unknown write mode %q (want insert or upsert)", s)
	}
}
