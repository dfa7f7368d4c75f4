package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quill-social/quill/pkg/client"
)

// serve points the shared HTTP client at a test server for the duration of t
func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client.ClearAuthToken()
	client.Configure(srv.URL, "test-anon-key", 5*time.Second)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
