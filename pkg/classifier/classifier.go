// Package classifier calls an Ollama vision model to identify the
// species shown in an uploaded image. The caller treats the result as
// best-effort: any error here degrades to "no identification".
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/strikenet/strikenet/internal/config"
)

var ErrCircuitOpen = errors.New("classifier circuit open")

// systemInstruction pins the model to the closed species universe and a
// structured JSON reply. The reply is stored verbatim, never parsed
// here.
const systemInstruction = `You are an expert marine biologist and invasive species specialist focusing on South Florida. ` +
	`Analyze the image and determine if it shows one of these invasive species: Lionfish, Walking Catfish, Mayan Cichlid, Green Iguana, or Egyptian Goose. ` +
	`Respond with JSON in this format: { "species": "species_name_or_unknown", "confidence": number_0_to_1, "isInvasive": boolean, "description": "detailed_description", "recommendations": "what_to_do_if_found" }`

const identifyPrompt = `Please identify this species and determine if it's invasive to South Florida. Focus on the key identifying features.`

// Client wraps the Ollama API client and adds retries, timeout, and a
// circuit breaker.
type Client struct {
	api    *api.Client
	cfg    config.ClassifierConfig
	client *http.Client

	// simple circuit breaker state
	failures  int32
	openUntil int64 // unix nano
	closed    int32 // atomic flag for Close()
}

// NewClient creates a new classifier client.
func NewClient(cfg config.ClassifierConfig, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{
		api:    api.NewClient(u, httpClient),
		cfg:    cfg,
		client: httpClient,
	}
	logger.Info("classifier: client created",
		slog.String("base_url", cfg.BaseURL),
		slog.String("model", cfg.Model),
		slog.Duration("timeout", cfg.Timeout),
	)
	return c, nil
}

func NewDefaultClient(cfg config.ClassifierConfig) (*Client, error) {
	defaultClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return NewClient(cfg, defaultClient)
}

// package-level logger; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by this package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.failures) < int32(c.cfg.CircuitFailureThreshold) {
		return false
	}

	if time.Now().UnixNano() < atomic.LoadInt64(&c.openUntil) {
		return true
	}

	// attempt half-open: reset failures and allow a request
	atomic.StoreInt32(&c.failures, 0)
	return false
}

func (c *Client) recordFailure() {
	v := atomic.AddInt32(&c.failures, 1)
	if v >= int32(c.cfg.CircuitFailureThreshold) {
		atomic.StoreInt64(&c.openUntil, time.Now().Add(c.cfg.CircuitReset).UnixNano())
	}
}

// Close releases any resources held by the client. It is idempotent and
// safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil && c.client.Transport != nil {
		if tr, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
			tr.CloseIdleConnections()
		}
	}
	return nil
}

// Health pings the Ollama instance by listing available models.
func (c *Client) Health(ctx context.Context) error {
	if c.isCircuitOpen() {
		return ErrCircuitOpen
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.List(ctx)
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("health check failed: %w", err)
	}
	if len(resp.Models) == 0 {
		c.recordFailure()
		return fmt.Errorf("health check failed: no models available")
	}

	atomic.StoreInt32(&c.failures, 0)
	return nil
}

// Identify sends the image to the vision model and returns the raw
// response text. contentType is the upload's declared MIME type; an
// unrecognizable value falls back to jpeg.
func (c *Client) Identify(ctx context.Context, image []byte, contentType string) (string, error) {
	if c.isCircuitOpen() {
		return "", ErrCircuitOpen
	}
	if len(image) == 0 {
		return "", errors.New("empty image")
	}

	stream := false
	req := &api.GenerateRequest{
		Model:  c.cfg.Model,
		System: systemInstruction,
		Prompt: identifyPrompt,
		Images: []api.ImageData{api.ImageData(image)},
		Format: json.RawMessage(`"json"`),
		Stream: &stream,
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		ctxReq, cancel := context.WithTimeout(ctx, c.cfg.Timeout)

		var sb strings.Builder
		start := time.Now()
		err := c.api.Generate(ctxReq, req, func(r api.GenerateResponse) error {
			sb.WriteString(r.Response)
			return nil
		})
		cancel()

		if err == nil {
			atomic.StoreInt32(&c.failures, 0)
			logger.Info("classifier: identification complete",
				slog.String("model", c.cfg.Model),
				slog.String("mime", mimeSubtype(contentType)),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			)
			return sb.String(), nil
		}

		lastErr = err
		c.recordFailure()

		time.Sleep(c.cfg.Backoff * time.Duration(attempt+1))
		if c.isCircuitOpen() {
			return "", ErrCircuitOpen
		}
	}

	return "", fmt.Errorf("identify failed after retries: %w", lastErr)
}

// mimeSubtype extracts the subtype from a content type such as
// "image/png"; missing or odd values default to jpeg, matching the
// upload path's own fallback.
func mimeSubtype(contentType string) string {
	if _, sub, ok := strings.Cut(contentType, "/"); ok && sub != "" {
		return sub
	}
	return "jpeg"
}
