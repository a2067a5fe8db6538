// Package api talks to OpenAI-compatible speech and chat endpoints.
// Transcription goes through /audio/transcriptions, mode rewrites through
// /chat/completions.
package api

import (
	"context"
	"fmt"
	"os"
)

type Provider struct {
	Name            string
	BaseURL         string
	TranscribeModel string
	RewriteModel    string
	APIKeyEnv       string
}

var providers = map[string]Provider{
	"groq": {
		Name:            "groq",
		BaseURL:         "https://api.groq.com/openai/v1",
		TranscribeModel: "whisper-large-v3-turbo",
		RewriteModel:    "llama-3.3-70b-versatile",
		APIKeyEnv:       "GROQ_API_KEY",
	},
	"openai": {
		Name:            "openai",
		BaseURL:         "https://api.openai.com/v1",
		TranscribeModel: "whisper-1",
		RewriteModel:    "gpt-4o",
		APIKeyEnv:       "OPENAI_API_KEY",
	},
}

func ProviderByName(name string) (Provider, error) {
	p, ok := providers[name]
	if !ok {
		return Provider{}, fmt.Errorf("unknown provider %q (want groq or openai)", name)
	}
	return p, nil
}

func ProviderNames() []string {
	return []string{"groq", "openai"}
}

// Service is what the engine needs from a backend. Client implements it
// against real HTTP endpoints; FakeService implements it for tests.
type Service interface {
	Transcribe(ctx context.Context, audio []byte, format string) (*TranscribeResult, error)
	Rewrite(ctx context.Context, systemPrompt, text string) (string, error)
}

type Client struct {
	provider Provider
	apiKey   string
	http     *TracedClient
}

func NewClient(provider Provider, apiKey string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(provider.APIKeyEnv)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key for %s (set %s)", provider.Name, provider.APIKeyEnv)
	}
	return &Client{
		provider: provider,
		apiKey:   apiKey,
		http:     NewTracedClient(),
	}, nil
}

func (c *Client) ProviderName() string { return c.provider.Name }

// Warm opens a connection to the provider so the first transcription
// does not pay for DNS and the TLS handshake.
func (c *Client) Warm() {
	c.http.WarmConnection(c.provider.BaseURL + "/models")
}
