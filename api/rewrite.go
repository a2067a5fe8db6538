package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	rewriteTemperature = 0.3
	rewriteMaxTokens   = 2000
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Rewrite runs transcribed text through the provider's chat model under
// a mode's system prompt and returns the rewritten text.
func (c *Client) Rewrite(ctx context.Context, systemPrompt, text string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.provider.RewriteModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: rewriteTemperature,
		MaxTokens:   rewriteMaxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.provider.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("%s rewrite error %d: %s", c.provider.Name, resp.StatusCode, string(resp.Body))
	}

	var cResp chatResponse
	if err := json.Unmarshal(resp.Body, &cResp); err != nil {
		return "", fmt.Errorf("%s rewrite parse error: %w", c.provider.Name, err)
	}
	if len(cResp.Choices) == 0 {
		return "", fmt.Errorf("%s rewrite returned no choices", c.provider.Name)
	}

	return strings.TrimSpace(cResp.Choices[0].Message.Content), nil
}
