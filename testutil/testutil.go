// Package testutil provides the fake providers the package tests run against.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/surveykit/surveykit/models"
)

// MockProvider is a fake remote service backed by an httptest server.
// Handlers are registered on Router before the test drives a client at URL()
type MockProvider struct {
	Server *httptest.Server
	Router *mux.Router
}

// NewMockProvider starts a mock provider. Callers must Close it
func NewMockProvider() *MockProvider {
	router := mux.NewRouter()

	return &MockProvider{
		Server: httptest.NewServer(router),
		Router: router,
	}
}

// URL returns the base URL of the provider
func (p *MockProvider) URL() string {
	return p.Server.URL
}

// Close shuts the underlying server down
func (p *MockProvider) Close() {
	p.Server.Close()
}

// RespondJSON writes the body with the given status and a JSON content type
func RespondJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// FormValues parses the parameters of a request, whichever way they were
// encoded - query string, form body or multipart form data
func FormValues(t *testing.T, r *http.Request) url.Values {
	t.Helper()

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Failed to parse multipart form: %v", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Failed to parse form: %v", err)
		}
	}

	return r.Form
}

// LiveConfig returns a config pointing at the live Ohmage server named in the
// environment, skipping the test when none is configured. A .env file in the
// package directory is honored
func LiveConfig(t *testing.T) *models.Config {
	t.Helper()

	_ = godotenv.Load()
	server := os.Getenv("SURVEYKIT_LIVE_SERVER")
	if server == "" {
		t.Skip("SURVEYKIT_LIVE_SERVER not set, skipping live test")
	}

	return &models.Config{Server: server}
}

// LiveCredentials returns the username and password for the live server,
// skipping the test when they aren't configured
func LiveCredentials(t *testing.T) (string, string) {
	t.Helper()

	username := os.Getenv("SURVEYKIT_LIVE_USERNAME")
	password := os.Getenv("SURVEYKIT_LIVE_PASSWORD")
	if username == "" || password == "" {
		t.Skip("SURVEYKIT_LIVE_USERNAME/SURVEYKIT_LIVE_PASSWORD not set, skipping live test")
	}

	return username, password
}
