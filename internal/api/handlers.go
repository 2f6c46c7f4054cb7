// Package api exposes HTTP handlers for the activity-report service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"example.com/talentcrm/internal/auth"
	"example.com/talentcrm/internal/events"
	"example.com/talentcrm/internal/observability"
	"example.com/talentcrm/internal/report"
)

// ReportGenerator builds activity reports.
type ReportGenerator interface {
	Generate(ctx context.Context, req report.Request) (*report.ActivityReport, error)
	Location() *time.Location
}

// Option configures optional behaviour for the Handler.
type Option func(*Handler)

// WithLogger overrides the handler logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithPublisher emits an event after every successful report.
func WithPublisher(publisher events.Publisher) Option {
	return func(h *Handler) {
		h.publisher = publisher
	}
}

// Handler coordinates HTTP requests with the report aggregator.
type Handler struct {
	reports   ReportGenerator
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler builds a Handler.
func NewHandler(reports ReportGenerator, opts ...Option) *Handler {
	h := &Handler{
		reports:   reports,
		publisher: events.NoopPublisher{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/activity-report", h.activityReport)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activityReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok || claims.Subject == "" {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	query := r.URL.Query()
	requested := strings.TrimSpace(firstNonEmpty(query.Get("userId"), query.Get("user_id")))
	if requested != "" && requested != claims.Subject {
		writeError(w, http.StatusForbidden, "You can only view your own activity report")
		return
	}

	start, end := report.RangeParams(query)
	window, err := report.ParseRange(start, end, h.reports.Location())
	if err != nil {
		var verr *report.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return
		}
		h.fail(w, r, err)
		return
	}

	rep, err := h.reports.Generate(r.Context(), report.Request{
		UserID: claims.Subject,
		Token:  claims.Token,
		Range:  window,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.publish(r.Context(), rep)
	observability.RecordReportServed(h.now())
	writeJSON(w, http.StatusOK, NewReportResponse(rep))
}

func (h *Handler) publish(ctx context.Context, rep *report.ActivityReport) {
	requestID := observability.RequestIDFromContext(ctx)
	now := h.now()
	if err := h.publisher.PublishReportGenerated(ctx, events.NewReportGenerated(rep, requestID, now)); err != nil {
		h.logger.Warn("publish report event failed", zap.String("request_id", requestID), zap.Error(err))
		return
	}
	observability.RecordReportEventPublished(now)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("activity report failed",
		zap.String("request_id", observability.RequestIDFromContext(r.Context())),
		zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Failed to generate activity report")
}

// Unauthorized renders authentication failures from auth.Middleware.
func Unauthorized(w http.ResponseWriter, _ *http.Request, err error) {
	message := "Authentication required"
	if errors.Is(err, auth.ErrInvalidToken) {
		message = "Invalid or expired session"
	}
	writeError(w, http.StatusUnauthorized, message)
}

// RangeView echoes the requested window.
type RangeView struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CategoryView is one category section of the response.
type CategoryView struct {
	Label         string `json:"label"`
	NotesCount    int    `json:"notesCount"`
	AddedToSystem int    `json:"addedToSystem"`
}

// ActivityReportResponse is the body returned for GET /api/activity-report.
type ActivityReportResponse struct {
	Success    bool                    `json:"success"`
	UserID     string                  `json:"userId"`
	Range      RangeView               `json:"range"`
	Categories map[string]CategoryView `json:"categories"`
}

// ErrorResponse is the body returned on failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewReportResponse renders rep in the wire format of GET /api/activity-report.
func NewReportResponse(rep *report.ActivityReport) ActivityReportResponse {
	categories := make(map[string]CategoryView, len(rep.Categories))
	for key, c := range rep.Categories {
		categories[key] = CategoryView{Label: c.Label, NotesCount: c.NotesCount, AddedToSystem: c.AddedToSystem}
	}
	return ActivityReportResponse{
		Success:    true,
		UserID:     rep.UserID,
		Range:      RangeView{Start: rep.Range.Start, End: rep.Range.End},
		Categories: categories,
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
