package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/Belphemur/MovieLinks/internal/apperrors"
	"github.com/Belphemur/MovieLinks/internal/config"
	"github.com/Belphemur/MovieLinks/internal/models"
	"github.com/jszwec/csvutil"
)

// rawLink receives the untouched cell values of one row.
type rawLink struct {
	MovieID string `csv:"movieId"`
	TMDBID  string `csv:"tmdbId"`
	IMDBID  string `csv:"imdbId"`
}

// imdbURLPattern extracts the numeric title id from an IMDB URL or tag.
var imdbURLPattern = regexp.MustCompile(`(?i)(?:^|/)tt(\d+)/?$`)

// LinkParser streams link records from a CSV file with a header row.
type LinkParser struct{}

// NewLinkParser creates a new links CSV parser
func NewLinkParser() StreamParser[models.Link] {
	return &LinkParser{}
}

// Stream implements StreamParser. Rows that do not yield three identifiers
// are sent with an *apperrors.ErrInvalidRow and parsing continues; any other
// error is the last value on the channel.
func (p *LinkParser) Stream(ctx context.Context, body io.Reader) <-chan models.StreamResult[models.Link] {
	out := make(chan models.StreamResult[models.Link])

	go func() {
		defer close(out)
		p.parse(ctx, body, out)
	}()

	return out
}

func (p *LinkParser) parse(ctx context.Context, body io.Reader, out chan<- models.StreamResult[models.Link]) {
	logger := config.GetLogger()

	send := func(r models.StreamResult[models.Link]) bool {
		select {
		case out <- r:
			return true
		case <-ctx.Done():
			return false
		}
	}

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		send(models.StreamResult[models.Link]{Err: &apperrors.ErrHeader{}})
		return
	}
	if err != nil {
		send(models.StreamResult[models.Link]{Err: err})
		return
	}

	columns, err := resolveHeader(header)
	if err != nil {
		send(models.StreamResult[models.Link]{Line: 1, Err: err})
		return
	}
	logger.Debug().Strs("header", header).Strs("columns", columns).Msg("Resolved links header")

	dec, err := csvutil.NewDecoder(reader, columns...)
	if err != nil {
		send(models.StreamResult[models.Link]{Line: 1, Err: err})
		return
	}

	for {
		if ctx.Err() != nil {
			return
		}

		var raw rawLink
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return
		}

		var parseErr *csv.ParseError
		switch {
		case err == nil:
			line, _ := reader.FieldPos(0)
			link, rowErr := toLink(line, raw)
			if rowErr != nil {
				if !send(models.StreamResult[models.Link]{Line: line, Err: rowErr}) {
					return
				}
				continue
			}
			if !send(models.StreamResult[models.Link]{Line: line, Value: link}) {
				return
			}
		case errors.Is(err, csvutil.ErrFieldCount):
			line, _ := reader.FieldPos(0)
			rowErr := &apperrors.ErrInvalidRow{
				Line:   line,
				Reason: "expected " + strconv.Itoa(len(columns)) + " fields, got " + strconv.Itoa(len(dec.Record())),
			}
			if !send(models.StreamResult[models.Link]{Line: line, Err: rowErr}) {
				return
			}
		case errors.As(err, &parseErr):
			rowErr := &apperrors.ErrInvalidRow{Line: parseErr.StartLine, Reason: parseErr.Err.Error()}
			if !send(models.StreamResult[models.Link]{Line: parseErr.StartLine, Err: rowErr}) {
				return
			}
		default:
			send(models.StreamResult[models.Link]{Err: err})
			return
		}
	}
}

// toLink converts the raw cells of one row into a Link.
func toLink(line int, raw rawLink) (models.Link, error) {
	movieID, err := parseID(line, columnMovieID, raw.MovieID)
	if err != nil {
		return models.Link{}, err
	}
	tmdbID, err := parseID(line, columnTMDBID, raw.TMDBID)
	if err != nil {
		return models.Link{}, err
	}
	imdbID, err := parseIMDBID(line, raw.IMDBID)
	if err != nil {
		return models.Link{}, err
	}

	return models.Link{MovieID: movieID, TMDBID: tmdbID, IMDBID: imdbID}, nil
}

func parseID(line int, column, value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, apperrors.NewInvalidRowError(line, column, value, "empty value")
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, apperrors.NewInvalidRowError(line, column, value, "not an integer")
	}
	if id < 0 {
		return 0, apperrors.NewInvalidRowError(line, column, value, "negative id")
	}
	return id, nil
}

// parseIMDBID accepts the bare number ("0114709"), the title tag
// ("tt0114709") or a title URL ("https://www.imdb.com/title/tt0114709/").
func parseIMDBID(line int, value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if m := imdbURLPattern.FindStringSubmatch(trimmed); m != nil {
		trimmed = m[1]
	}
	id, err := parseID(line, columnIMDBID, trimmed)
	if err != nil {
		var rowErr *apperrors.ErrInvalidRow
		if errors.As(err, &rowErr) {
			rowErr.Value = value
		}
		return 0, err
	}
	return id, nil
}
