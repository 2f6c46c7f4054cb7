// Package report assembles per-user activity reports from the CRM backend.
package report

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"example.com/talentcrm/internal/fanout"
)

// DefaultNotesConcurrency is the notes fan-out pool size used when none is configured.
const DefaultNotesConcurrency = 6

// Source fetches CRM collections on behalf of the caller identified by token.
type Source interface {
	ListEntities(ctx context.Context, token, endpoint, responseKey string) ([]map[string]any, error)
	ListNotes(ctx context.Context, token, endpoint, entityID string) ([]map[string]any, error)
}

// Settings holds the tunables of an Aggregator.
type Settings struct {
	Categories []Category
	// NotesConcurrency bounds in-flight notes fetches within one category.
	NotesConcurrency int
	// CategoryConcurrency bounds categories processed at once. One keeps the
	// categories strictly sequential.
	CategoryConcurrency int
	// Location resolves timestamps that carry no zone.
	Location *time.Location
}

// Request identifies whose report to build and over which window.
type Request struct {
	UserID string
	Token  string
	Range  DateRange
}

// CategoryCounts is the per-category section of a report.
type CategoryCounts struct {
	Label         string
	NotesCount    int
	AddedToSystem int
}

// ActivityReport is the aggregated result for one user and window.
type ActivityReport struct {
	UserID     string
	Range      DateRange
	Keys       []string
	Categories map[string]CategoryCounts
}

// Option configures optional behaviour for the Aggregator.
type Option func(*Aggregator)

// WithLogger overrides the logger used to report degraded categories.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// Aggregator fans out to the backend and sums a user's activity per category.
type Aggregator struct {
	source              Source
	categories          []Category
	notesConcurrency    int
	categoryConcurrency int
	location            *time.Location
	logger              *zap.Logger
}

// NewAggregator constructs an Aggregator, filling unset settings with defaults.
func NewAggregator(source Source, settings Settings, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:              source,
		categories:          settings.Categories,
		notesConcurrency:    settings.NotesConcurrency,
		categoryConcurrency: settings.CategoryConcurrency,
		location:            settings.Location,
		logger:              zap.NewNop(),
	}
	if len(a.categories) == 0 {
		a.categories = DefaultCategories()
	}
	if a.notesConcurrency <= 0 {
		a.notesConcurrency = DefaultNotesConcurrency
	}
	if a.categoryConcurrency <= 0 {
		a.categoryConcurrency = 1
	}
	if a.location == nil {
		a.location = time.Local
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Location returns the zone used to resolve report dates.
func (a *Aggregator) Location() *time.Location {
	return a.location
}

// Generate builds the report. Upstream failures degrade individual categories
// or entities to zero; only cancellation of ctx fails the whole call.
func (a *Aggregator) Generate(ctx context.Context, req Request) (*ActivityReport, error) {
	if req.UserID == "" {
		return nil, errors.New("report: user id is required")
	}
	start := time.Now()

	m := matcher{userID: req.UserID, window: req.Range, loc: a.location}
	counts, err := fanout.MapLimit(ctx, a.categories, a.categoryConcurrency, func(ctx context.Context, c Category) (CategoryCounts, error) {
		return a.aggregateCategory(ctx, req.Token, c, m), nil
	})
	if err != nil {
		return nil, err
	}

	report := &ActivityReport{
		UserID:     req.UserID,
		Range:      req.Range,
		Keys:       make([]string, 0, len(a.categories)),
		Categories: make(map[string]CategoryCounts, len(a.categories)),
	}
	for i, c := range a.categories {
		report.Keys = append(report.Keys, c.Key)
		report.Categories[c.Key] = counts[i]
	}

	generatedCounter.Inc()
	generateDuration.Observe(time.Since(start).Seconds())
	return report, nil
}

func (a *Aggregator) aggregateCategory(ctx context.Context, token string, c Category, m matcher) CategoryCounts {
	counts := CategoryCounts{Label: c.Label}
	logger := a.logger.With(zap.String("category", c.Key))

	entities, err := a.source.ListEntities(ctx, token, c.Endpoint, c.ResponseKey)
	if err != nil {
		logger.Warn("category fetch failed, reporting zero counts", zap.Error(err))
		recordCategoryFailure(c.Key)
		return counts
	}

	ids := make([]string, 0, len(entities))
	for _, raw := range entities {
		entity := Record(raw)
		if m.addedToSystem(entity) {
			counts.AddedToSystem++
		}
		if id, ok := entity.ID(); ok {
			ids = append(ids, id)
		}
	}

	perEntity, err := fanout.MapLimit(ctx, ids, a.notesConcurrency, func(ctx context.Context, id string) (int, error) {
		notes, err := a.source.ListNotes(ctx, token, c.Endpoint, id)
		if err != nil {
			logger.Debug("notes fetch failed", zap.String("entity_id", id), zap.Error(err))
			recordNoteFailure(c.Key)
			return 0, nil
		}
		matched := 0
		for _, note := range notes {
			if m.noteCounts(Record(note)) {
				matched++
			}
		}
		return matched, nil
	})
	if err != nil {
		logger.Warn("notes fan-out aborted", zap.Error(err))
		return counts
	}

	for _, n := range perEntity {
		counts.NotesCount += n
	}
	logger.Debug("category aggregated",
		zap.Int("entities", len(entities)),
		zap.Int("added_to_system", counts.AddedToSystem),
		zap.Int("notes_count", counts.NotesCount))
	return counts
}
