package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL  = "http://localhost:8000"
	DefaultLanguage = "auto"

	requestIDHeader = "X-Request-ID"
)

// Config captures what the client needs to reach the backend.
type Config struct {
	BaseURL string
	// Timeout of zero leaves calls on the transport's own timeline.
	Timeout time.Duration
}

// Client talks to the transcription / idea / content backend. Every call is
// a single attempt; there is no caching and no retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	newID      func() string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestIDs overrides request ID generation (useful for tests).
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewClient constructs a client for cfg.BaseURL, falling back to DefaultBaseURL.
func NewClient(cfg Config, opts ...Option) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     slog.New(slog.DiscardHandler),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UploadForTranscript posts the media in r as a multipart form and returns
// the backend's transcript. An empty language is sent as "auto".
func (c *Client) UploadForTranscript(ctx context.Context, filename string, r io.Reader, language string) (TranscriptResponse, error) {
	var out TranscriptResponse

	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}

	var b bytes.Buffer
	writer := multipart.NewWriter(&b)

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return out, networkError(fmt.Errorf("create form file: %w", err))
	}
	if _, err := io.Copy(part, r); err != nil {
		return out, networkError(fmt.Errorf("copy file: %w", err))
	}
	if err := writer.WriteField("language", language); err != nil {
		return out, networkError(fmt.Errorf("write language field: %w", err))
	}
	if err := writer.Close(); err != nil {
		return out, networkError(fmt.Errorf("close writer: %w", err))
	}

	err = c.do(ctx, http.MethodPost, "/video-transcript", writer.FormDataContentType(), &b, &out)
	return out, err
}

// GenerateIdeas sends the retained transcript and returns the generated ideas.
func (c *Client) GenerateIdeas(ctx context.Context, items []TranscriptItem) (IdeaGenerationResponse, error) {
	var out IdeaGenerationResponse
	if items == nil {
		items = []TranscriptItem{}
	}
	err := c.doJSON(ctx, http.MethodPost, "/generate-ideas", ideaRequest{Data: items}, &out)
	return out, err
}

// GenerateContent asks for long-form content. The format is lower-cased on
// the wire; a nil sub-idea list is sent as an empty array.
func (c *Client) GenerateContent(ctx context.Context, format, ideaText string, selectedSubIdeas []string) (ContentGenerationResponse, error) {
	var out ContentGenerationResponse
	if selectedSubIdeas == nil {
		selectedSubIdeas = []string{}
	}
	req := contentRequest{
		Format:           strings.ToLower(format),
		IdeaText:         ideaText,
		SelectedSubIdeas: selectedSubIdeas,
	}
	err := c.doJSON(ctx, http.MethodPost, "/generate-content", req, &out)
	return out, err
}

// Health calls the backend root endpoint.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, http.MethodGet, "/", "", nil, &out)
	return out, err
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return networkError(fmt.Errorf("encode request: %w", err))
	}
	return c.do(ctx, method, endpoint, "application/json", bytes.NewReader(body), out)
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body io.Reader, out any) error {
	requestID := c.newID()
	logger := c.logger.With("request_id", requestID, "endpoint", endpoint)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return networkError(fmt.Errorf("create request: %w", err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("backend request failed", "error", err, "duration", time.Since(start))
		return networkError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	logger.Debug("backend response", "status", resp.StatusCode, "bytes", len(payload), "duration", time.Since(start))
	if err != nil {
		return networkError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, payload)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return &Error{
			Message: fmt.Sprintf("decode response: %v", err),
			Status:  resp.StatusCode,
			Err:     err,
		}
	}
	return nil
}
