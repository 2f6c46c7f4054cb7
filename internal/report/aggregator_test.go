package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubSource struct {
	mu         sync.Mutex
	entities   map[string][]map[string]any
	entityErrs map[string]error
	notes      map[string][]map[string]any
	noteErrs   map[string]error
	tokens     []string
	noteCalls  int
}

func (s *stubSource) ListEntities(_ context.Context, token, endpoint, _ string) ([]map[string]any, error) {
	s.mu.Lock()
	s.tokens = append(s.tokens, token)
	s.mu.Unlock()
	if err := s.entityErrs[endpoint]; err != nil {
		return nil, err
	}
	return s.entities[endpoint], nil
}

func (s *stubSource) ListNotes(_ context.Context, token, endpoint, id string) ([]map[string]any, error) {
	s.mu.Lock()
	s.tokens = append(s.tokens, token)
	s.noteCalls++
	s.mu.Unlock()
	key := endpoint + "/" + id
	if err := s.noteErrs[key]; err != nil {
		return nil, err
	}
	return s.notes[key], nil
}

func marchRange(t *testing.T) DateRange {
	t.Helper()
	r, err := ParseRange("2024-03-01", "2024-03-31", time.UTC)
	require.NoError(t, err)
	return r
}

func TestGenerateCountsOwnedEntitiesAndNotes(t *testing.T) {
	source := &stubSource{
		entities: map[string][]map[string]any{
			"jobs": {
				{"id": "1", "owner_id": "7", "created_at": "2024-03-03T10:00:00Z"},
				{"id": "2", "owner_id": "7", "created_at": "2024-03-04T10:00:00Z"},
			},
		},
		notes: map[string][]map[string]any{
			"jobs/1": {
				{"created_by": "7", "created_at": "2024-03-05T10:00:00Z"},
				{"created_by": "7", "created_at": "2024-03-06T10:00:00Z"},
				{"created_by": "7", "created_at": "2024-03-07T10:00:00Z"},
			},
			"jobs/2": {},
		},
	}
	agg := NewAggregator(source, Settings{Location: time.UTC}, WithLogger(zaptest.NewLogger(t)))

	report, err := agg.Generate(context.Background(), Request{UserID: "7", Token: "tok", Range: marchRange(t)})
	require.NoError(t, err)

	jobs := report.Categories["jobs"]
	require.Equal(t, "Jobs", jobs.Label)
	require.Equal(t, 2, jobs.AddedToSystem)
	require.Equal(t, 3, jobs.NotesCount)
	require.Equal(t, 2, source.noteCalls)
	for _, tok := range source.tokens {
		require.Equal(t, "tok", tok)
	}
}

func TestGenerateZeroesFailedCategory(t *testing.T) {
	source := &stubSource{
		entities: map[string][]map[string]any{
			"leads": {{"id": "9", "created_by": "7", "created_at": "2024-03-10T00:00:00Z"}},
		},
		entityErrs: map[string]error{
			"organizations": errors.New("backend returned 500 Internal Server Error"),
		},
	}
	agg := NewAggregator(source, Settings{Location: time.UTC})

	report, err := agg.Generate(context.Background(), Request{UserID: "7", Range: marchRange(t)})
	require.NoError(t, err)

	require.Equal(t, CategoryCounts{Label: "Organizations"}, report.Categories["organizations"])
	require.Equal(t, 1, report.Categories["leads"].AddedToSystem)
	require.Len(t, report.Categories, len(DefaultCategories()))
	require.Equal(t, []string{"organizations", "jobs", "jobSeekers", "hiringManagers", "placements", "leads"}, report.Keys)
}

func TestGenerateToleratesNoteFailures(t *testing.T) {
	source := &stubSource{
		entities: map[string][]map[string]any{
			"placements": {
				{"id": 1, "created_at": "2024-03-03T10:00:00Z"},
				{"id": 2, "created_at": "2024-03-03T10:00:00Z"},
				{"id": nil},
			},
		},
		notes: map[string][]map[string]any{
			"placements/2": {{"createdBy": "7", "createdAt": "2024-03-05T10:00:00Z"}},
		},
		noteErrs: map[string]error{
			"placements/1": errors.New("timeout"),
		},
	}
	agg := NewAggregator(source, Settings{Location: time.UTC})

	report, err := agg.Generate(context.Background(), Request{UserID: "7", Range: marchRange(t)})
	require.NoError(t, err)
	require.Equal(t, 1, report.Categories["placements"].NotesCount)
	require.Equal(t, 0, report.Categories["placements"].AddedToSystem)
	require.Equal(t, 2, source.noteCalls)
}

func TestGenerateParallelCategoriesMatchSequential(t *testing.T) {
	source := &stubSource{
		entities: map[string][]map[string]any{},
		notes:    map[string][]map[string]any{},
	}
	for ci, c := range DefaultCategories() {
		for i := 0; i < 5; i++ {
			id := fmt.Sprintf("%d", ci*10+i)
			source.entities[c.Endpoint] = append(source.entities[c.Endpoint], map[string]any{
				"id": id, "created_by": "7", "created_at": fmt.Sprintf("2024-03-%02dT08:00:00Z", i+1),
			})
			for n := 0; n < i; n++ {
				source.notes[c.Endpoint+"/"+id] = append(source.notes[c.Endpoint+"/"+id], map[string]any{
					"created_by": "7", "created_at": "2024-03-20T08:00:00Z",
				})
			}
		}
	}
	req := Request{UserID: "7", Range: marchRange(t)}

	sequential, err := NewAggregator(source, Settings{Location: time.UTC}).Generate(context.Background(), req)
	require.NoError(t, err)
	parallel, err := NewAggregator(source, Settings{Location: time.UTC, CategoryConcurrency: 3, NotesConcurrency: 2}).Generate(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, sequential, parallel)
	require.Equal(t, 10, sequential.Categories["jobs"].NotesCount)
	require.Equal(t, 5, sequential.Categories["jobs"].AddedToSystem)
}

func TestGenerateCustomCategories(t *testing.T) {
	source := &stubSource{
		entities: map[string][]map[string]any{
			"tasks": {{"id": "3", "created_by": "7", "created_at": "2024-03-03"}},
		},
	}
	agg := NewAggregator(source, Settings{
		Categories: []Category{{Key: "tasks", Label: "Tasks", Endpoint: "tasks", ResponseKey: "tasks"}},
		Location:   time.UTC,
	})

	report, err := agg.Generate(context.Background(), Request{UserID: "7", Range: marchRange(t)})
	require.NoError(t, err)
	require.Equal(t, map[string]CategoryCounts{"tasks": {Label: "Tasks", AddedToSystem: 1}}, report.Categories)
}

func TestGenerateRequiresUser(t *testing.T) {
	agg := NewAggregator(&stubSource{}, Settings{})
	_, err := agg.Generate(context.Background(), Request{Range: marchRange(t)})
	require.Error(t, err)
}

func TestGenerateStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &stubSource{}
	_, err := NewAggregator(source, Settings{}).Generate(ctx, Request{UserID: "7", Range: marchRange(t)})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, source.tokens)
}
