// Package importer drives a links import: it consumes the parser stream in
// file order, writes valid rows through a store and accounts for every row.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Belphemur/MovieLinks/internal/apperrors"
	"github.com/Belphemur/MovieLinks/internal/config"
	"github.com/Belphemur/MovieLinks/internal/ledger"
	"github.com/Belphemur/MovieLinks/internal/metrics"
	"github.com/Belphemur/MovieLinks/internal/models"
	"github.com/Belphemur/MovieLinks/internal/parser"
	"github.com/Belphemur/MovieLinks/internal/store"
)

// minRowsForRatio is the number of rows read before the error ratio is enforced.
const minRowsForRatio = 20

// RetryOptions configures retries of writes that failed with a transient error.
type RetryOptions struct {
	MaxAttempts int
	Delay       time.Duration
	MaxDelay    time.Duration
}

// Options configures an Importer.
type Options struct {
	Mode models.WriteMode

	// BatchSize is the number of rows per write. 1 writes every row on its own.
	BatchSize int

	// MaxErrorRatio aborts the run once (rejected+failed)/read exceeds it. 0 disables the check.
	MaxErrorRatio float64

	// DryRun parses and validates rows without writing or marking the ledger.
	DryRun bool

	Retry RetryOptions
	RunID string
}

// Importer loads link rows into a store.
type Importer struct {
	store  store.Store
	ledger ledger.Ledger
	parser parser.StreamParser[models.Link]
	opts   Options
	retry  retrypolicy.RetryPolicy[any]
	logger zerolog.Logger
}

// pending is a valid row waiting in the current batch.
type pending struct {
	link models.Link
	line int
}

// New creates an Importer. A nil ledger remembers nothing.
func New(s store.Store, l ledger.Ledger, opts Options) *Importer {
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry.MaxAttempts = 1
	}
	if l == nil {
		l, _ = ledger.New("none", ledger.ProviderConfig{})
	}

	im := &Importer{
		store:  s,
		ledger: l,
		parser: parser.NewLinkParser(),
		opts:   opts,
	}
	im.logger = config.GetLogger().With().
		Str("run_id", opts.RunID).
		Str("driver", s.Driver()).
		Str("table", s.Table()).
		Logger()
	im.retry = im.buildRetryPolicy()
	return im
}

func (im *Importer) buildRetryPolicy() retrypolicy.RetryPolicy[any] {
	builder := retrypolicy.NewBuilder[any]().
		HandleIf(func(_ any, err error) bool { return store.IsTransient(err) }).
		WithMaxAttempts(im.opts.Retry.MaxAttempts).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[any]) {
			metrics.WriteRetriesTotal.WithLabelValues(im.store.Driver()).Inc()
			im.logger.Warn().Err(e.LastError()).Int("attempt", e.Attempts()).Msg("Retrying write after transient error")
		})

	if d := im.opts.Retry.Delay; d > 0 {
		if im.opts.Retry.MaxDelay > d {
			builder = builder.WithBackoff(d, im.opts.Retry.MaxDelay)
		} else {
			builder = builder.WithDelay(d)
		}
	}
	return builder.Build()
}

// Run imports every row read from r. name identifies the source in logs and
// in the summary. The summary is returned even when Run fails, so callers can
// report how far the run got.
func (im *Importer) Run(ctx context.Context, name string, r io.Reader) (*models.ImportSummary, error) {
	summary := &models.ImportSummary{
		RunID:   im.opts.RunID,
		Source:  name,
		Table:   im.store.Table(),
		Driver:  im.store.Driver(),
		Mode:    im.opts.Mode,
		DryRun:  im.opts.DryRun,
		Started: time.Now(),
	}
	logger := im.logger.With().Str("source", name).Logger()

	metrics.ImportRunning.Set(1)
	defer metrics.ImportRunning.Set(0)
	defer func() { summary.Duration = time.Since(summary.Started) }()

	logger.Info().
		Str("mode", im.opts.Mode.String()).
		Int("batch_size", im.opts.BatchSize).
		Bool("dry_run", im.opts.DryRun).
		Msg("Starting import")

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	batch := make([]pending, 0, im.opts.BatchSize)
	inBatch := make(map[int64]int, im.opts.BatchSize)

	flush := func() error {
		err := im.flush(ctx, logger, summary, batch)
		batch = batch[:0]
		clear(inBatch)
		return err
	}

	for res := range im.parser.Stream(streamCtx, r) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if res.Err != nil {
			var rowErr *apperrors.ErrInvalidRow
			if !errors.As(res.Err, &rowErr) {
				// The file is unreadable from here on; keep what was already parsed.
				if err := flush(); err != nil {
					return summary, err
				}
				return summary, fmt.Errorf("read %s: %w", name, res.Err)
			}
			summary.Read++
			im.record(summary, models.OutcomeRejected)
			logger.Warn().Err(res.Err).Int("line", rowErr.Line).Msg("Rejected row")
			if err := im.checkRatio(summary); err != nil {
				return summary, err
			}
			continue
		}

		summary.Read++
		link := res.Value

		// A repeated id would conflict with its own batch. Writing the batch
		// first gives the row the outcome it gets with one write per row.
		if _, dup := inBatch[link.MovieID]; dup {
			if err := flush(); err != nil {
				return summary, err
			}
		}

		if im.ledger.Seen(link.MovieID) {
			im.record(summary, models.OutcomeSkipped)
			logger.Debug().Int64("movie_id", link.MovieID).Int("line", res.Line).Msg("Skipped row already in ledger")
			continue
		}

		batch = append(batch, pending{link: link, line: res.Line})
		inBatch[link.MovieID] = res.Line

		if len(batch) >= im.opts.BatchSize {
			if err := flush(); err != nil {
				return summary, err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if err := flush(); err != nil {
		return summary, err
	}

	logger.Info().
		Int("read", summary.Read).
		Int("inserted", summary.Inserted).
		Int("skipped", summary.Skipped).
		Int("rejected", summary.Rejected).
		Int("failed", summary.Failed).
		Dur("duration", time.Since(summary.Started)).
		Msg("Import finished")

	return summary, nil
}

// flush writes the batch. A failed batch of several rows is retried row by
// row so one bad row does not fail its neighbours. The returned error is
// either a context error or *apperrors.ErrTooManyErrors; row failures are
// only counted.
func (im *Importer) flush(ctx context.Context, logger zerolog.Logger, summary *models.ImportSummary, batch []pending) error {
	if len(batch) == 0 || im.opts.DryRun {
		return nil
	}

	links := make([]models.Link, len(batch))
	for i, p := range batch {
		links[i] = p.link
	}

	_, err := im.write(ctx, links)
	if err == nil {
		for _, p := range batch {
			im.written(logger, summary, p)
		}
		return im.checkRatio(summary)
	}

	if len(batch) > 1 && ctx.Err() == nil {
		logger.Warn().Err(err).Int("rows", len(batch)).Int("first_line", batch[0].line).Msg("Batch write failed, retrying rows one by one")
		for i, p := range batch {
			if ctxErr := ctx.Err(); ctxErr != nil {
				for _, rest := range batch[i:] {
					im.failed(logger, summary, rest, ctxErr)
				}
				return ctxErr
			}
			if _, rowErr := im.write(ctx, []models.Link{p.link}); rowErr != nil {
				im.failed(logger, summary, p, rowErr)
			} else {
				im.written(logger, summary, p)
			}
			if ratioErr := im.checkRatio(summary); ratioErr != nil {
				return ratioErr
			}
		}
		return nil
	}

	for _, p := range batch {
		im.failed(logger, summary, p, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return im.checkRatio(summary)
}

// write runs one store write under the retry policy.
func (im *Importer) write(ctx context.Context, links []models.Link) (int, error) {
	timer := prometheus.NewTimer(metrics.WriteDuration.WithLabelValues(im.store.Driver()))
	defer timer.ObserveDuration()

	var written int
	err := failsafe.With(im.retry).WithContext(ctx).Run(func() error {
		n, err := im.store.Write(ctx, links, im.opts.Mode)
		written = n
		return err
	})
	return written, err
}

func (im *Importer) written(logger zerolog.Logger, summary *models.ImportSummary, p pending) {
	im.ledger.Mark(p.link.MovieID)
	im.record(summary, models.OutcomeInserted)
	logger.Debug().
		Int("line", p.line).
		Int64("movie_id", p.link.MovieID).
		Int64("tmdb_id", p.link.TMDBID).
		Int64("imdb_id", p.link.IMDBID).
		Msg("inserted")
}

func (im *Importer) failed(logger zerolog.Logger, summary *models.ImportSummary, p pending, err error) {
	im.record(summary, models.OutcomeFailed)
	logger.Warn().Err(err).Int("line", p.line).Int64("movie_id", p.link.MovieID).Msg("Failed to write row")
}

func (im *Importer) record(summary *models.ImportSummary, o models.Outcome) {
	summary.Record(o)
	metrics.RowsTotal.WithLabelValues(o.String()).Inc()
}

func (im *Importer) checkRatio(summary *models.ImportSummary) error {
	if im.opts.MaxErrorRatio <= 0 || summary.Read < minRowsForRatio {
		return nil
	}
	if summary.ErrorRatio() > im.opts.MaxErrorRatio {
		return &apperrors.ErrTooManyErrors{
			Failed:    summary.Errors(),
			Processed: summary.Read,
			Ratio:     im.opts.MaxErrorRatio,
		}
	}
	return nil
}
