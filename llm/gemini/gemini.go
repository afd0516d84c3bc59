// Package gemini implements llm.Generator using the Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jxucoder/gemini-suite/llm"
)

// ParseFailureMessage is what the operator sees whenever no text could be
// obtained, whatever the underlying cause.
const ParseFailureMessage = "Error: Could not parse Gemini response."

// DefaultTimeout bounds a single round trip.
const DefaultTimeout = 2 * time.Minute

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	// HTTPClient overrides the transport; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client implements llm.Generator using the Gemini API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *zerolog.Logger
}

// New creates a client for the Gemini API.
// The API key is held for the lifetime of the client and never validated locally.
func New(apiKey string, opts Options, logger *zerolog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: opts.BaseURL,
		model:   opts.Model,
		client:  httpClient,
		logger:  logger,
	}
}

// Model returns the model the client targets.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt in a single request and extracts the reply text.
// It never returns an error: failures are tagged in the Result and carry
// ParseFailureMessage as their text.
func (c *Client) Generate(ctx context.Context, prompt string) llm.Result {
	start := time.Now()

	req, err := BuildRequest(c.baseURL, c.model, c.apiKey, prompt)
	if err != nil {
		return c.fail(llm.KindTransport, err)
	}

	body, err := c.Send(ctx, req)
	if err != nil {
		return c.fail(llm.KindTransport, err)
	}

	text, err := Extract(body)
	if err != nil {
		return c.fail(llm.KindParse, err)
	}

	c.logger.Debug().
		Str("model", c.model).
		Int("prompt_bytes", len(prompt)).
		Int("reply_bytes", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Generation complete")

	return llm.Result{Text: text, Kind: llm.KindOK}
}

func (c *Client) fail(kind llm.Kind, err error) llm.Result {
	c.logger.Warn().Err(err).Str("kind", string(kind)).Str("model", c.model).Msg("Generation failed")
	return llm.Result{Text: ParseFailureMessage, Kind: kind, Err: err}
}

// Send performs one POST and returns the raw reply body.
// A non-2xx status is reported as an *APIError with no body returned.
func (c *Client) Send(ctx context.Context, r *Request) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", redactKey(err))
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini API: %w", redactKey(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// redactKey strips the query string from URL errors so the API key never
// reaches logs or the journal. The URL may not parse, so it is cut as text.
func redactKey(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	bare, _, _ := strings.Cut(urlErr.URL, "?")
	return &url.Error{Op: urlErr.Op, URL: bare, Err: urlErr.Err}
}

// APIError is a non-2xx reply from the API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini API error (%d)", e.StatusCode)
	}
	if e.Status == "" {
		return fmt.Sprintf("gemini API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini API error (%d %s): %s", e.StatusCode, e.Status, e.Message)
}

func newAPIError(code int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: code}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		apiErr.Status = envelope.Error.Status
		return apiErr
	}
	if len(body) > 0 {
		const maxBody = 512
		if len(body) > maxBody {
			body = body[:maxBody]
		}
		apiErr.Message = string(body)
	}
	return apiErr
}
