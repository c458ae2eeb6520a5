package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gh-nvat/changelog-gate/src/pkg/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "test-token", "octo/repo", WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(context.Background(), "", "octo/repo")
	assert.Error(t, err)

	_, err = NewClient(context.Background(), "token", "octo")
	assert.Error(t, err)

	c, err := NewClient(context.Background(), "token", "octo/repo")
	require.NoError(t, err)
	assert.Equal(t, "octo", c.owner)
	assert.Equal(t, "repo", c.repo)
}

func TestClient_AddLabel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/repo/issues/42/labels", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		var labels []string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&labels))
		assert.Equal(t, []string{"empty-changelog"}, labels)
		writeJSON(t, w, http.StatusOK, []map[string]string{{"name": "empty-changelog"}})
	})

	c := newTestClient(t, mux)
	require.NoError(t, c.AddLabel(context.Background(), 42, "empty-changelog"))
}

func TestClient_RemoveLabel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /repos/octo/repo/issues/1/labels/empty-changelog", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []map[string]string{})
	})
	mux.HandleFunc("DELETE /repos/octo/repo/issues/2/labels/empty-changelog", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"message": "Label does not exist"})
	})
	mux.HandleFunc("DELETE /repos/octo/repo/issues/3/labels/empty-changelog", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusForbidden, map[string]string{"message": "Resource not accessible by integration"})
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	require.NoError(t, c.RemoveLabel(ctx, 1, "empty-changelog"))

	err := c.RemoveLabel(ctx, 2, "empty-changelog")
	require.Error(t, err)
	assert.True(t, errors.Is(err, reconcile.ErrLabelNotFound))
	assert.True(t, reconcile.IsLabelNotFound(err))

	err = c.RemoveLabel(ctx, 3, "empty-changelog")
	require.Error(t, err)
	assert.False(t, reconcile.IsLabelNotFound(err))
}

func TestClient_ListLabels_Paginates(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/repo/issues/42/labels", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			writeJSON(t, w, http.StatusOK, []map[string]string{{"name": "empty-changelog"}})
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/repo/issues/42/labels?page=2>; rel="next"`, srvURL))
		writeJSON(t, w, http.StatusOK, []map[string]string{{"name": "bug"}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL
	c, err := NewClient(context.Background(), "test-token", "octo/repo", WithBaseURL(srv.URL))
	require.NoError(t, err)

	labels, err := c.ListLabels(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"bug", "empty-changelog"}, labels)
}

func TestClient_Comments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/repo/issues/42/comments", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []map[string]any{
			{"id": 7, "body": "warning", "user": map[string]string{"login": "github-actions[bot]"}},
			{"id": 8, "body": "LGTM"},
		})
	})
	mux.HandleFunc("POST /repos/octo/repo/issues/42/comments", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(t, w, http.StatusCreated, map[string]any{"id": 9, "body": in["body"]})
	})
	mux.HandleFunc("PATCH /repos/octo/repo/issues/comments/7", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"body":"success"}`, string(body))
		writeJSON(t, w, http.StatusOK, map[string]any{"id": 7, "body": "success"})
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	comments, err := c.ListComments(ctx, 42)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, int64(7), comments[0].ID)
	assert.Equal(t, "warning", comments[0].Body)
	assert.Equal(t, "github-actions[bot]", comments[0].User)

	created, err := c.CreateComment(ctx, 42, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)
	assert.Equal(t, "hello", created.Body)

	require.NoError(t, c.UpdateComment(ctx, 7, "success"))
}

func TestClient_GetPR(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/repo/pulls/42", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"number": 42,
			"base":   map[string]string{"ref": "main", "sha": "aaa"},
			"head":   map[string]string{"ref": "feature", "sha": "bbb"},
		})
	})

	c := newTestClient(t, mux)
	pr, err := c.GetPR(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "aaa", pr.BaseRef)
	assert.Equal(t, "bbb", pr.HeadRef)
}

func TestParseOwnerRepo(t *testing.T) {
	tests := []struct {
		in        string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{in: "octo/repo", wantOwner: "octo", wantRepo: "repo"},
		{in: "octo/repo/sub", wantOwner: "octo", wantRepo: "repo"},
		{in: "octo", wantErr: true},
		{in: "/repo", wantErr: true},
		{in: "octo/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, repo, err := ParseOwnerRepo(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
		})
	}
}

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "0123456", ShortSHA("0123456789abcdef0123456789abcdef01234567"))
	assert.Equal(t, "main", ShortSHA("main"))
	assert.Equal(t, "origin/feature-branch-with-long-name", ShortSHA("origin/feature-branch-with-long-name"))
}
