// Package ai is a thin, stateless proxy to the Google generative language
// API: chat, image generation, and text-to-speech. It carries no ledger
// state and nothing in the ledger depends on it.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const (
	imageModel  = "gemini-2.5-flash-image"
	speechModel = "gemini-2.5-flash-preview-tts"
)

type Client struct {
	apiKey    string
	chatModel string
	baseURL   string
	http      *http.Client
}

func NewClient(apiKey, chatModel string) *Client {
	return &Client{
		apiKey:    apiKey,
		chatModel: chatModel,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 60 * time.Second},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c != nil && c.apiKey != "" }

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends a single user message and returns the model's text reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	resp, err := c.generate(ctx, c.chatModel, generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: message}}}},
	})
	if err != nil {
		return "", err
	}
	for _, p := range resp.parts() {
		if p.Text != "" {
			return p.Text, nil
		}
	}
	return "", fmt.Errorf("empty chat response")
}

// GenerateImage returns base64 image data and its mime type. The size hint
// ("1K", "2K", "4K") is appended to the prompt; the API has no direct size
// parameter.
func (c *Client) GenerateImage(ctx context.Context, prompt, size string) (data, mimeType string, err error) {
	if size != "" {
		prompt = fmt.Sprintf("%s (render at %s resolution)", prompt, size)
	}
	resp, err := c.generate(ctx, imageModel, generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"IMAGE"}},
	})
	if err != nil {
		return "", "", err
	}
	for _, p := range resp.parts() {
		if p.InlineData != nil {
			return p.InlineData.Data, p.InlineData.MimeType, nil
		}
	}
	return "", "", fmt.Errorf("no image in response")
}

// TextToSpeech returns base64 audio data and its mime type.
func (c *Client) TextToSpeech(ctx context.Context, text string) (data, mimeType string, err error) {
	resp, err := c.generate(ctx, speechModel, generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: text}}}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"AUDIO"}},
	})
	if err != nil {
		return "", "", err
	}
	for _, p := range resp.parts() {
		if p.InlineData != nil {
			return p.InlineData.Data, p.InlineData.MimeType, nil
		}
	}
	return "", "", fmt.Errorf("no audio in response")
}

func (r *generateResponse) parts() []part {
	if len(r.Candidates) == 0 {
		return nil
	}
	return r.Candidates[0].Content.Parts
}

func (c *Client) generate(ctx context.Context, model string, reqBody generateRequest) (*generateResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, out.Error.Message)
		}
		return nil, fmt.Errorf("api error: status %d", resp.StatusCode)
	}
	return &out, nil
}
