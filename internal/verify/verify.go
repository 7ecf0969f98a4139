// Package verify checks that every valid row of a links file is stored with
// the same identifiers.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/Belphemur/MovieLinks/internal/apperrors"
	"github.com/Belphemur/MovieLinks/internal/config"
	"github.com/Belphemur/MovieLinks/internal/models"
	"github.com/Belphemur/MovieLinks/internal/store"
)

// Reader is the read side of a store.
type Reader interface {
	Get(ctx context.Context, movieID int64) (*models.Link, error)
}

var _ Reader = store.Store(nil)

// Verify looks up every link of stream in r. Invalid rows are counted and
// skipped; any other stream or lookup error stops the check.
func Verify(ctx context.Context, r Reader, stream <-chan models.StreamResult[models.Link]) (*models.VerifyReport, error) {
	logger := config.GetLogger()
	report := &models.VerifyReport{}

	for res := range stream {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if res.Err != nil {
			if errors.Is(res.Err, &apperrors.ErrInvalidRow{}) {
				report.Invalid++
				continue
			}
			return report, res.Err
		}

		want := res.Value
		report.Checked++

		got, err := r.Get(ctx, want.MovieID)
		if err != nil {
			return report, fmt.Errorf("line %d: get movie %d: %w", res.Line, want.MovieID, err)
		}

		switch {
		case got == nil:
			report.Missing = append(report.Missing, want)
			logger.Debug().Int("line", res.Line).Int64("movie_id", want.MovieID).Msg("Link missing from table")
		case *got != want:
			report.Mismatched = append(report.Mismatched, models.Mismatch{Line: res.Line, Source: want, Stored: *got})
			logger.Debug().Int("line", res.Line).Int64("movie_id", want.MovieID).Msg("Stored link differs from source")
		default:
			report.Matched++
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}
