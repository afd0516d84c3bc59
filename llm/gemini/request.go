package gemini

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the public Generative Language API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.0-flash"
)

// Request is a fully built generateContent call.
type Request struct {
	URL    string
	Body   []byte
	Header http.Header
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// BuildRequest turns a prompt into the URL, JSON body and headers of a
// generateContent call. The prompt is embedded verbatim; the API key is not
// validated here and only fails remotely.
func BuildRequest(baseURL, model, apiKey, prompt string) (*Request, error) {
	base := strings.TrimSuffix(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	body, err := encodeBody(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return &Request{
		URL:    fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, url.PathEscape(model), url.QueryEscape(apiKey)),
		Body:   body,
		Header: header,
	}, nil
}

// encodeBody marshals v without HTML escaping so '<', '>' and '&' in a
// prompt reach the API as typed.
func encodeBody(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
