package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Provider{
		Name:            "test",
		BaseURL:         server.URL,
		TranscribeModel: "whisper-test",
		RewriteModel:    "chat-test",
		APIKeyEnv:       "TEST_API_KEY",
	}, "test-key")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestTranscribe(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-test" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file part: %v", err)
		}
		file.Close()
		if header.Filename != "audio.wav" {
			t.Errorf("filename = %q", header.Filename)
		}
		w.Write([]byte(`{"text":"hello world","duration":1.5,"segments":[{"text":"hello world","no_speech_prob":0.01}]}`))
	})

	result, err := client.Transcribe(context.Background(), []byte("RIFFdata"), "wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "hello world" {
		t.Errorf("text = %q", result.Text)
	}
	if result.Duration != 1.5 {
		t.Errorf("duration = %f", result.Duration)
	}
	if result.NoSpeechProb != 0.01 {
		t.Errorf("no_speech_prob = %f", result.NoSpeechProb)
	}
	if result.Metrics == nil {
		t.Error("metrics missing")
	}
}

func TestTranscribeHTTPError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := client.Transcribe(context.Background(), []byte("audio"), "wav")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error missing status code: %v", err)
	}
}

func TestRewrite(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "chat-test" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Temperature != 0.3 {
			t.Errorf("temperature = %f", req.Temperature)
		}
		if req.MaxTokens != 2000 {
			t.Errorf("max_tokens = %d", req.MaxTokens)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Rewritten text.\n"}}]}`))
	})

	got, err := client.Rewrite(context.Background(), "Fix the grammar.", "helo wrld")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if got != "Rewritten text." {
		t.Errorf("rewrite = %q, want trimmed text", got)
	}
}

func TestRewriteNoChoices(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	if _, err := client.Rewrite(context.Background(), "prompt", "text"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestProviderByName(t *testing.T) {
	for _, name := range ProviderNames() {
		p, err := ProviderByName(name)
		if err != nil {
			t.Errorf("ProviderByName(%q): %v", name, err)
		}
		if p.BaseURL == "" || p.TranscribeModel == "" || p.RewriteModel == "" || p.APIKeyEnv == "" {
			t.Errorf("provider %q incomplete: %+v", name, p)
		}
	}
	if _, err := ProviderByName("bogus"); err == nil {
		t.Error("ProviderByName accepted unknown name")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("TEST_API_KEY", "")
	_, err := NewClient(Provider{Name: "test", APIKeyEnv: "TEST_API_KEY"}, "")
	if err == nil {
		t.Fatal("NewClient accepted missing key")
	}

	t.Setenv("TEST_API_KEY", "env-key")
	if _, err := NewClient(Provider{Name: "test", APIKeyEnv: "TEST_API_KEY"}, ""); err != nil {
		t.Fatalf("NewClient with env key: %v", err)
	}
}
