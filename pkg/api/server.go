// Package api exposes the feedback triage pipeline over HTTP: the
// ingestion endpoint (the collector), read access to sessions and the
// memory log, and the health and metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otherjamesbrown/feedback-triage/pkg/buildinfo"
	fterrors "github.com/otherjamesbrown/feedback-triage/pkg/errors"
	"github.com/otherjamesbrown/feedback-triage/pkg/logging"
	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
)

const maxFeedbackBodySize = 1 << 20 // 1MB

// Handler is the pipeline entry point the API depends on. Satisfied by
// *triage.Coordinator.
type Handler interface {
	Handle(ctx context.Context, item triage.FeedbackItem) (*triage.PipelineResult, error)
}

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Pipeline Handler
	Sessions triage.SessionStore
	Memory   triage.MemoryLog
	Logger   logging.Logger
}

// FeedbackRequest is the ingestion payload. Only text is required; the
// collector fills in the rest.
type FeedbackRequest struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Text       string `json:"text"`
	Source     string `json:"source"`
	ReceivedAt string `json:"received_at"`
}

// FeedbackResponse is the success payload for one processed item.
type FeedbackResponse struct {
	ID     string                 `json:"id"`
	Result *triage.PipelineResult `json:"result"`
}

// NewRouter builds the service router.
func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}

	r := chi.NewRouter()
	r.Use(requestID)

	r.Post("/v1/feedback", handleFeedback(deps))
	r.Get("/v1/customers/{customerID}/session", handleGetSession(deps))
	r.Get("/v1/customers/{customerID}/memory", handleGetMemory(deps))
	r.Get("/healthz", handleHealth())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// requestID assigns a request id to the context so the logger can pick
// it up via WithContext.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), logging.RequestIDKey, uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleFeedback is the collector: it validates and normalizes the raw
// payload into an immutable FeedbackItem, then hands it to the pipeline.
func handleFeedback(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFeedbackBodySize)
		defer r.Body.Close()

		var req FeedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		item, err := collect(req)
		if err != nil {
			httpError(w, http.StatusBadRequest, "%v", err)
			return
		}

		result, err := deps.Pipeline.Handle(r.Context(), item)
		if err != nil {
			deps.Logger.WithContext(r.Context()).Error("feedback processing failed",
				logging.F("item_id", item.ID), logging.Err(err))
			switch {
			case fterrors.IsValidation(err):
				httpError(w, http.StatusBadRequest, "%v", err)
			case fterrors.IsStorageUnavailable(err):
				httpError(w, http.StatusBadGateway, "storage unavailable")
			default:
				// Internal stage detail stays out of the response body.
				httpError(w, http.StatusInternalServerError, "feedback processing failed")
			}
			return
		}

		writeJSON(w, http.StatusOK, FeedbackResponse{ID: item.ID, Result: result})
	}
}

// collect normalizes a raw request into a FeedbackItem: generated id,
// anonymous customer fallback, RFC3339 receipt timestamp defaulting to
// now. Missing text is a validation failure before the pipeline starts.
func collect(req FeedbackRequest) (triage.FeedbackItem, error) {
	if strings.TrimSpace(req.Text) == "" {
		return triage.FeedbackItem{}, fmt.Errorf("text is required: %w", fterrors.ErrValidation)
	}

	item := triage.FeedbackItem{
		ID:         req.ID,
		CustomerID: req.CustomerID,
		Text:       req.Text,
		Source:     req.Source,
		ReceivedAt: time.Now().UTC(),
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CustomerID == "" {
		item.CustomerID = triage.AnonymousCustomerID
	}
	if req.ReceivedAt != "" {
		t, err := time.Parse(time.RFC3339, req.ReceivedAt)
		if err != nil {
			return triage.FeedbackItem{}, fmt.Errorf("received_at must be RFC 3339: %w", fterrors.ErrValidation)
		}
		item.ReceivedAt = t.UTC()
	}
	return item, nil
}

func handleGetSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := chi.URLParam(r, "customerID")

		sess, err := deps.Sessions.GetOrCreate(r.Context(), customerID)
		if err != nil {
			httpError(w, storageStatus(err), "session lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleGetMemory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := chi.URLParam(r, "customerID")

		recs, err := deps.Memory.ReadAll(r.Context(), customerID)
		if err != nil {
			httpError(w, storageStatus(err), "memory lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"customer_id": customerID,
			"records":     recs,
		})
	}
}

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"build":  buildinfo.Get("feedback-triage"),
		})
	}
}

func storageStatus(err error) int {
	if fterrors.IsStorageUnavailable(err) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}
