package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoCandidates is returned when the reply carries no candidate.
	ErrNoCandidates = errors.New("no candidates in response")
	// ErrNoText is returned when the first candidate has no text part.
	ErrNoText = errors.New("no text part in first candidate")
)

type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Extract returns candidates[0].content.parts[0].text from a reply body.
func Extract(body []byte) (string, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrNoCandidates, resp.PromptFeedback.BlockReason)
		}
		return "", ErrNoCandidates
	}

	first := resp.Candidates[0]
	if first.Content == nil || len(first.Content.Parts) == 0 || first.Content.Parts[0].Text == nil {
		if first.FinishReason != "" {
			return "", fmt.Errorf("%w (finish reason %s)", ErrNoText, first.FinishReason)
		}
		return "", ErrNoText
	}
	return *first.Content.Parts[0].Text, nil
}
