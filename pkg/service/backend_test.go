package service

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"
	"github.com/quill-social/quill/pkg/api"
	"github.com/quill-social/quill/pkg/client"
	"github.com/quill-social/quill/pkg/config"
	"github.com/quill-social/quill/pkg/credentials"
	"github.com/quill-social/quill/pkg/output"
	"github.com/quill-social/quill/pkg/prompter"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves the subset of the REST and auth endpoints the services use
type fakeBackend struct {
	mu             sync.Mutex
	profiles       []api.Profile
	posts          []api.Post
	categories     []api.Category
	follows        map[string]bool // "follower:following"
	followFailures int
	postRequests   []map[string]string
	tokenGrants    []string
	loggedOut      bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{follows: map[string]bool{}}
}

func edge(follower, following string) string {
	return follower + ":" + following
}

func (b *fakeBackend) addProfiles(ids ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		b.profiles = append(b.profiles, api.Profile{ID: id, Username: id, DisplayName: strings.ToUpper(id)})
	}
}

func (b *fakeBackend) followed() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for k := range b.follows {
		out = append(out, k)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func eq(q map[string][]string, key string) string {
	if v, ok := q[key]; ok && len(v) > 0 {
		return strings.TrimPrefix(v[0], "eq.")
	}
	return ""
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := r.URL.Query()
	switch {
	case r.URL.Path == "/auth/v1/token":
		grant := q.Get("grant_type")
		b.tokenGrants = append(b.tokenGrants, grant)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if grant == "password" && body["password"] != "secret" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "Invalid login credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token":  "token-" + grant,
			"token_type":    "bearer",
			"refresh_token": "refresh-next",
			"expires_in":    3600,
			"user":          map[string]string{"id": "me", "email": "me@example.com"},
		})

	case r.URL.Path == "/auth/v1/user":
		if r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "no token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": "me", "email": "me@example.com", "created_at": "2026-01-01T00:00:00Z"})

	case r.URL.Path == "/auth/v1/logout":
		b.loggedOut = true
		w.WriteHeader(http.StatusNoContent)

	case r.URL.Path == "/rest/v1/profiles":
		if id := eq(q, "id"); id != "" {
			for _, p := range b.profiles {
				if p.ID == id {
					writeJSON(w, http.StatusOK, []api.Profile{p})
					return
				}
			}
			writeJSON(w, http.StatusOK, []api.Profile{})
			return
		}
		rows := make([]map[string]string, 0, len(b.profiles))
		for _, p := range b.profiles {
			rows = append(rows, map[string]string{"id": p.ID})
		}
		writeJSON(w, http.StatusOK, rows)

	case r.URL.Path == "/rest/v1/follows" && r.Method == http.MethodGet:
		if b.follows[edge(eq(q, "follower_id"), eq(q, "following_id"))] {
			writeJSON(w, http.StatusOK, []map[string]string{{"follower_id": eq(q, "follower_id")}})
			return
		}
		writeJSON(w, http.StatusOK, []string{})

	case r.URL.Path == "/rest/v1/follows" && r.Method == http.MethodPost:
		if b.followFailures > 0 {
			b.followFailures--
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "upstream unavailable"})
			return
		}
		var e api.FollowEdge
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &e)
		key := edge(e.FollowerID, e.FollowingID)
		if b.follows[key] {
			writeJSON(w, http.StatusConflict, map[string]string{"code": "23505", "message": "duplicate key value"})
			return
		}
		b.follows[key] = true
		w.WriteHeader(http.StatusCreated)

	case r.URL.Path == "/rest/v1/follows" && r.Method == http.MethodDelete:
		delete(b.follows, edge(eq(q, "follower_id"), eq(q, "following_id")))
		w.WriteHeader(http.StatusNoContent)

	case r.URL.Path == "/rest/v1/posts":
		params := map[string]string{}
		for k := range q {
			params[k] = q.Get(k)
		}
		b.postRequests = append(b.postRequests, params)

		matching := make([]api.Post, 0, len(b.posts))
		category := eq(q, "category_id")
		for _, p := range b.posts {
			if category == "" || (p.CategoryID != nil && *p.CategoryID == category) {
				matching = append(matching, p)
			}
		}
		offset, _ := strconv.Atoi(q.Get("offset"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		end := min(offset+limit, len(matching))
		if offset > end {
			offset = end
		}
		writeJSON(w, http.StatusOK, matching[offset:end])

	case r.URL.Path == "/rest/v1/categories":
		writeJSON(w, http.StatusOK, b.categories)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no route " + r.URL.Path})
	}
}

type env struct {
	backend *fakeBackend
	out     *bytes.Buffer
}

// setup points config, client, prompts and output at a fresh sandbox.
// input is fed to prompts line by line.
func setup(t *testing.T, input string) *env {
	t.Helper()
	if err := config.Init(filepath.Join(t.TempDir(), "config.toml")); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	client.ClearAuthToken()
	client.Configure(srv.URL, "test-anon-key", 5*time.Second)

	color.NoColor = true
	var out bytes.Buffer
	output.SetWriter(&out)
	prompter.SetIO(strings.NewReader(input), &out)
	t.Cleanup(func() { output.SetWriter(color.Output) })

	return &env{backend: backend, out: &out}
}

func (e *env) login(t *testing.T, userID string) {
	t.Helper()
	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken:  "token-" + userID,
		RefreshToken: "refresh-" + userID,
		ExpiresAt:    time.Now().Add(time.Hour),
		UserID:       userID,
		Email:        userID + "@example.com",
	}))
}

func post(id string, minutesAgo int, parent string) api.Post {
	p := api.Post{
		ID:        id,
		AuthorID:  "author",
		Content:   fmt.Sprintf("content of %s", id),
		CreatedAt: time.Now().Add(-time.Duration(minutesAgo) * time.Minute),
		Author:    &api.Profile{ID: "author", Username: "author"},
	}
	if parent != "" {
		p.ParentID = &parent
	}
	return p
}
