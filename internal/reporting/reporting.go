// Package reporting sends failed runs to Sentry when a DSN is configured.
package reporting

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/MovieLinks/internal/config"
	"github.com/Belphemur/MovieLinks/internal/models"
)

const flushTimeout = 2 * time.Second

// Init configures the Sentry client. It returns a function that flushes
// buffered events; call it before the process exits. Without a DSN nothing
// is sent and the returned function does nothing.
func Init(dsn, environment, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return func() {}, err
	}
	logger := config.GetLogger()
	logger.Debug().Str("environment", environment).Msg("Sentry reporting enabled")
	return func() { sentry.Flush(flushTimeout) }, nil
}

// CaptureRunError reports a run that ended with err. summary may be nil when
// the run failed before any row was read.
func CaptureRunError(err error, summary *models.ImportSummary) {
	if err == nil || sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if summary != nil {
			scope.SetTag("run_id", summary.RunID)
			scope.SetTag("table", summary.Table)
			scope.SetTag("driver", summary.Driver)
			scope.SetContext("summary", sentry.Context{
				"source":   summary.Source,
				"read":     summary.Read,
				"inserted": summary.Inserted,
				"skipped":  summary.Skipped,
				"rejected": summary.Rejected,
				"failed":   summary.Failed,
			})
		}
		sentry.CaptureException(err)
	})
}
