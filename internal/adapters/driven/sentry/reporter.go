package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FailureReporter = (*Reporter)(nil)

// DefaultFlushTimeout is how long Flush waits for buffered events
const DefaultFlushTimeout = 2 * time.Second

// Reporter sends failed document scans to Sentry.
// Each event carries the bucket, key, and error kind as tags.
type Reporter struct {
	hub *sentry.Hub
}

// Init configures the global Sentry client and returns a Reporter bound to it.
// An empty DSN yields a Reporter whose events are dropped.
func Init(dsn, environment, release string) (*Reporter, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return nil, err
	}
	return NewReporter(sentry.CurrentHub()), nil
}

// NewReporter creates a reporter that captures events on hub.
func NewReporter(hub *sentry.Hub) *Reporter {
	return &Reporter{hub: hub}
}

// Report captures err for the document ref.
func (r *Reporter) Report(ctx context.Context, ref domain.DocumentReference, err error) {
	if r == nil || r.hub == nil || err == nil {
		return
	}

	hub := r.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("bucket", ref.Bucket)
		scope.SetTag("key", ref.Key)
		scope.SetTag("error_kind", domain.ErrorKind(err))
		scope.SetContext("document", sentry.Context{
			"bucket": ref.Bucket,
			"key":    ref.Key,
		})
		hub.CaptureException(err)
	})
}

// Flush waits up to timeout for queued events to be delivered.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if r == nil || r.hub == nil {
		return true
	}
	return r.hub.Flush(timeout)
}
