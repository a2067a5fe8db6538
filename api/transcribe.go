package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
)

type TranscribeResult struct {
	Text         string
	Duration     float64
	NoSpeechProb float64
	Metrics      *NetworkMetrics
}

type transcriptionResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text         string  `json:"text"`
		NoSpeechProb float64 `json:"no_speech_prob"`
	} `json:"segments"`
}

// Transcribe sends encoded audio to the provider's transcription endpoint.
// format is the container the audio was encoded with ("wav" or "flac").
func (c *Client) Transcribe(ctx context.Context, audio []byte, format string) (*TranscribeResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+format)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}

	writer.WriteField("model", c.provider.TranscribeModel)
	writer.WriteField("response_format", "verbose_json")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", c.provider.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("%s transcription error %d: %s", c.provider.Name, resp.StatusCode, string(resp.Body))
	}

	var tResp transcriptionResponse
	if err := json.Unmarshal(resp.Body, &tResp); err != nil {
		return nil, fmt.Errorf("%s transcription parse error: %w", c.provider.Name, err)
	}

	var noSpeechProb float64
	for _, seg := range tResp.Segments {
		if seg.NoSpeechProb > noSpeechProb {
			noSpeechProb = seg.NoSpeechProb
		}
	}

	return &TranscribeResult{
		Text:         tResp.Text,
		Duration:     tResp.Duration,
		NoSpeechProb: noSpeechProb,
		Metrics:      resp.Metrics,
	}, nil
}
