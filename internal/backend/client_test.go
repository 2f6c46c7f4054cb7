package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/talentcrm/internal/observability"
)

func TestListEntitiesForwardsCredentials(t *testing.T) {
	var gotAuth, gotRequestID, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(observability.RequestIDHeader)
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jobSeekers":[{"id":12,"created_by":"7"},{"id":"13"},"junk"]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second)
	ctx := observability.WithRequestID(context.Background(), "req-1")

	items, err := client.ListEntities(ctx, "session-token", "job-seekers", "jobSeekers")
	require.NoError(t, err)
	require.Equal(t, "Bearer session-token", gotAuth)
	require.Equal(t, "req-1", gotRequestID)
	require.Equal(t, "/api/job-seekers", gotPath)
	require.Len(t, items, 2)
	require.Equal(t, json.Number("12"), items[0]["id"])
}

func TestListNotesPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"notes":[{"created_by":"7"}]}`))
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL, time.Second).ListNotes(context.Background(), "tok", "hiring-managers", "44")
	require.NoError(t, err)
	require.Equal(t, "/api/hiring-managers/44/notes", gotPath)
	require.Len(t, items, 1)
}

func TestListEntitiesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).ListEntities(context.Background(), "tok", "jobs", "jobs")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusInternalServerError, statusErr.Status)
	require.Equal(t, "database unavailable", statusErr.Body)
	require.Equal(t, "500", outcome(err))
}

func TestListEntitiesRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>login</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).ListEntities(context.Background(), "tok", "jobs", "jobs")
	require.ErrorIs(t, err, ErrUnexpectedPayload)
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 20*time.Millisecond).ListEntities(context.Background(), "tok", "jobs", "jobs")
	require.Error(t, err)
	require.Equal(t, "error", outcome(err))
}

func TestExtractListFallbacks(t *testing.T) {
	require.Len(t, extractList([]any{map[string]any{"id": "1"}}, "jobs"), 1)
	require.Len(t, extractList(map[string]any{"data": []any{map[string]any{}, map[string]any{}}}, "jobs"), 2)
	require.Empty(t, extractList(map[string]any{"success": true}, "jobs"))
	require.Empty(t, extractList(nil, "jobs"))
}
