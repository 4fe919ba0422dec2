package classifier_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/strikenet/strikenet/internal/config"
	"github.com/strikenet/strikenet/pkg/classifier"
)

func testConfig(baseURL string) config.ClassifierConfig {
	return config.ClassifierConfig{
		BaseURL:                 baseURL,
		Model:                   "llava",
		Timeout:                 2 * time.Second,
		Retries:                 0,
		Backoff:                 time.Millisecond,
		CircuitFailureThreshold: 5,
		CircuitReset:            time.Minute,
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, cfg config.ClassifierConfig) *classifier.Client {
	t.Helper()
	c, err := classifier.NewClient(cfg, srv.Client())
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestIdentify_Success(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/generate" {
			if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"model":"llava","response":"{\"species\":\"Lionfish\",\"confidence\":0.9}","done":true}` + "\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, testConfig(srv.URL))

	text, err := c.Identify(context.Background(), []byte("image bytes"), "image/png")
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if !strings.Contains(text, "Lionfish") {
		t.Fatalf("unexpected identification text: %q", text)
	}

	// the request carried the image and the constrained instruction
	images, ok := gotReq["images"].([]any)
	if !ok || len(images) != 1 {
		t.Fatalf("expected one image in request, got %#v", gotReq["images"])
	}
	system, _ := gotReq["system"].(string)
	for _, species := range []string{"Lionfish", "Walking Catfish", "Mayan Cichlid", "Green Iguana", "Egyptian Goose"} {
		if !strings.Contains(system, species) {
			t.Fatalf("system instruction missing %q: %q", species, system)
		}
	}
	if format, _ := gotReq["format"].(string); format != "json" {
		t.Fatalf("expected json format request, got %#v", gotReq["format"])
	}
}

func TestIdentify_EmptyImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server must not be called for an empty image")
	}))
	defer srv.Close()

	c := newTestClient(t, srv, testConfig(srv.URL))

	if _, err := c.Identify(context.Background(), nil, "image/jpeg"); err == nil {
		t.Fatalf("expected error for empty image")
	}
}

func TestIdentify_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, testConfig(srv.URL))

	if _, err := c.Identify(context.Background(), []byte("image"), "image/jpeg"); err == nil {
		t.Fatalf("expected Identify to fail on server error")
	}
}

func TestIdentify_RetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "transient", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llava","response":"{\"species\":\"unknown\"}","done":true}` + "\n"))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Retries = 1
	c := newTestClient(t, srv, cfg)

	text, err := c.Identify(context.Background(), []byte("image"), "image/jpeg")
	if err != nil {
		t.Fatalf("Identify failed after retry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if !strings.Contains(text, "unknown") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestIdentify_CircuitOpensAfterFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.CircuitFailureThreshold = 2
	c := newTestClient(t, srv, cfg)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.Identify(ctx, []byte("image"), "image/jpeg"); err == nil {
			t.Fatalf("expected failure on attempt %d", i)
		}
	}

	callsBefore := calls
	_, err := c.Identify(ctx, []byte("image"), "image/jpeg")
	if err != classifier.ErrCircuitOpen {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if calls != callsBefore {
		t.Fatalf("open circuit must not reach the server")
	}
}

func TestHealth(t *testing.T) {
	empty := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/api/tags" {
			w.Header().Set("Content-Type", "application/json")
			if empty {
				_, _ = w.Write([]byte(`{"models":[]}`))
				return
			}
			_, _ = w.Write([]byte(`{"models":[{"name":"llava","model":"llava"}]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, testConfig(srv.URL))

	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}

	empty = true
	if err := c.Health(context.Background()); err == nil {
		t.Fatalf("expected Health to fail when no models are available")
	}
}

func TestClose_Idempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c, err := classifier.NewClient(testConfig(srv.URL), srv.Client())
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestNewClient_BadBaseURL(t *testing.T) {
	if _, err := classifier.NewClient(config.ClassifierConfig{BaseURL: "not a url"}, nil); err == nil {
		t.Fatalf("expected error for invalid base url")
	}
}
