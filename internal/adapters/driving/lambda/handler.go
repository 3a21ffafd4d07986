package lambda

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/custodia-labs/docpii/internal/adapters/driving/s3event"
	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driving"
)

// Handler adapts S3 upload notifications to the scan service.
// One invocation scans one document: the first record of the event.
type Handler struct {
	service driving.ScanService
	logger  *slog.Logger
}

// NewHandler creates a new Lambda handler
func NewHandler(service driving.ScanService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Handle processes an S3 event notification.
// Collaborator failures are returned so the platform records a failed invocation.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) (*domain.ScanResult, error) {
	ref, err := s3event.FirstDocument(event)
	if err != nil {
		h.logger.Error("rejecting event", "error", err)
		return nil, err
	}

	if extra := len(event.Records) - 1; extra > 0 {
		h.logger.Warn("event carries more than one record, only the first is processed",
			"ignored", extra,
			"bucket", ref.Bucket,
			"key", ref.Key,
		)
	}

	return h.service.Process(ctx, ref)
}
