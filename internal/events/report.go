// Package events publishes activity-report events for downstream consumers.
package events

import (
	"time"

	"github.com/google/uuid"

	"example.com/talentcrm/internal/report"
)

// EventTypeReportGenerated tags messages emitted after a report is served.
const EventTypeReportGenerated = "activity_report.generated"

// CategoryTotals mirrors one category section of a report.
type CategoryTotals struct {
	Label         string `json:"label"`
	NotesCount    int    `json:"notes_count"`
	AddedToSystem int    `json:"added_to_system"`
}

// ReportGenerated is the payload emitted for every successful report.
type ReportGenerated struct {
	EventID     string                    `json:"event_id"`
	RequestID   string                    `json:"request_id,omitempty"`
	UserID      string                    `json:"user_id"`
	RangeStart  string                    `json:"range_start"`
	RangeEnd    string                    `json:"range_end"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Categories  map[string]CategoryTotals `json:"categories"`
}

// NewReportGenerated builds the event for rep.
func NewReportGenerated(rep *report.ActivityReport, requestID string, now time.Time) ReportGenerated {
	categories := make(map[string]CategoryTotals, len(rep.Categories))
	for key, c := range rep.Categories {
		categories[key] = CategoryTotals{Label: c.Label, NotesCount: c.NotesCount, AddedToSystem: c.AddedToSystem}
	}
	return ReportGenerated{
		EventID:     uuid.NewString(),
		RequestID:   requestID,
		UserID:      rep.UserID,
		RangeStart:  rep.Range.Start,
		RangeEnd:    rep.Range.End,
		GeneratedAt: now.UTC(),
		Categories:  categories,
	}
}
