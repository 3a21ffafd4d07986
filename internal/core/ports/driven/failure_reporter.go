package driven

import (
	"context"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// FailureReporter forwards failed invocations to an alerting backend
type FailureReporter interface {
	Report(ctx context.Context, ref domain.DocumentReference, err error)
}
