package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/docpii/internal/adapters/driving/s3event"
	"github.com/custodia-labs/docpii/internal/core/domain"
)

// maxEventBytes bounds the size of a submitted S3 notification
const maxEventBytes = 1 << 20

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// EnqueuedResponse is returned when an event is accepted for background processing
// @Description Accepted scan task
type EnqueuedResponse struct {
	TaskID   string                   `json:"task_id" example:"3f1c2a9e-7d4b-4c55-9a8e-2b1f0c6d7e8a"`
	Document domain.DocumentReference `json:"document"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Checks the finding store and, when configured, the task queue
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backend is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Warn("finding store not ready", "error", err)
			writeError(w, http.StatusServiceUnavailable, "finding store unavailable")
			return
		}
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Ping(r.Context()); err != nil {
			s.logger.Warn("task queue not ready", "error", err)
			writeError(w, http.StatusServiceUnavailable, "task queue unavailable")
			return
		}
	}
	if s.worker != nil {
		if err := s.worker.Ping(r.Context()); err != nil {
			s.logger.Warn("worker not ready", "error", err)
			writeError(w, http.StatusServiceUnavailable, "worker not running")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// handleSwaggerDoc godoc
// @Summary      OpenAPI document
// @Description  Returns the generated swagger document for this API
// @Tags         Health
// @Produce      json
// @Success      200
// @Router       /swagger/doc.json [get]
func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc)
}

// Auth endpoints

// handleIssueToken godoc
// @Summary      Issue a bearer token
// @Description  Exchanges client credentials for a signed bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      domain.TokenRequest  true  "Client credentials"
// @Success      200      {object}  domain.TokenResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Router       /auth/token [post]
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.IssueToken(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "client_id and client_secret are required")
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			s.logger.Error("failed to issue token", "client_id", req.ClientID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to issue token")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Event endpoints

// handleSubmitEvent godoc
// @Summary      Submit an upload event
// @Description  Accepts an S3 object-created notification. The first record is queued when a task queue is configured, otherwise it is scanned before responding.
// @Tags         Events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ScanResult  "Scanned inline"
// @Success      202  {object}  EnqueuedResponse   "Queued for a worker"
// @Failure      400  {object}  ErrorResponse      "Malformed event"
// @Failure      502  {object}  domain.ScanResult  "A downstream service failed"
// @Router       /events [post]
func (s *Server) handleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := s3event.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed S3 event")
		return
	}

	ref, err := s3event.FirstDocument(event)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoRecords):
			writeError(w, http.StatusBadRequest, "event has no records")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	if s.taskQueue != nil {
		task := domain.NewScanTask(ref)
		if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
			s.logger.Error("failed to enqueue scan", "bucket", ref.Bucket, "key", ref.Key, "error", err)
			writeError(w, http.StatusServiceUnavailable, "failed to queue event")
			return
		}
		writeJSON(w, http.StatusAccepted, EnqueuedResponse{TaskID: task.ID, Document: ref})
		return
	}

	result, err := s.scanService.Process(r.Context(), ref)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusBadGateway, result)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Finding endpoints

// handleGetFinding godoc
// @Summary      Get findings for a document
// @Description  Returns the finding record stored for an object key. Keys may contain slashes.
// @Tags         Findings
// @Produce      json
// @Security     BearerAuth
// @Param        key  path      string  true  "Object key"
// @Success      200  {object}  domain.FindingRecord
// @Failure      404  {object}  ErrorResponse  "No findings recorded"
// @Router       /findings/{key} [get]
func (s *Server) handleGetFinding(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	record, err := s.findingService.Get(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "document key is required")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "no findings recorded for document")
		case errors.Is(err, domain.ErrServiceUnavailable):
			writeError(w, http.StatusServiceUnavailable, "finding store unavailable")
		default:
			s.logger.Error("failed to get finding", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get finding")
		}
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Queue endpoints

// handleQueueStats godoc
// @Summary      Queue statistics
// @Description  Returns pending, in-flight and dead-lettered task counts
// @Tags         Queue
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driven.QueueStats
// @Failure      404  {object}  ErrorResponse  "No task queue configured"
// @Router       /queue/stats [get]
func (s *Server) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	if s.taskQueue == nil {
		writeError(w, http.StatusNotFound, "no task queue configured")
		return
	}

	stats, err := s.taskQueue.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to get queue stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get queue stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
