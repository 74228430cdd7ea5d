// Package genai is the HTTP client for the external content-generation
// service. It speaks the Gemini-style generateContent REST shape: send a
// prompt, receive text or inline image bytes or an error. Failures are
// returned to the caller; the engine decides how they surface.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config holds the client settings.
type Config struct {
	APIKey     string
	BaseURL    string // defaults to the public endpoint
	ReplyModel string
	ImageModel string
	Logger     zerolog.Logger
}

// Client issues generation requests. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	replyModel string
	imageModel string
	log        zerolog.Logger
}

// NewClient creates a generation client. Per-request deadlines come from
// the caller's context, so no overall client timeout is set here.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		replyModel: cfg.ReplyModel,
		imageModel: cfg.ImageModel,
		log:        cfg.Logger,
	}
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
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
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type generationConfig struct {
	Temperature        *float64 `json:"temperature,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateReply requests one text reply for the dialogue scene. An empty
// reply is returned as success; the engine substitutes its fallback text.
func (c *Client) GenerateReply(ctx context.Context, prompt, instructions string, temperature float64) (string, error) {
	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature: &temperature,
		},
	}
	if instructions != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: instructions}}}
	}

	started := time.Now()
	resp, err := c.generate(ctx, c.replyModel, req)
	if err != nil {
		c.log.Warn().Err(err).Dur("elapsed", time.Since(started)).Msg("reply generation failed")
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	c.log.Debug().Dur("elapsed", time.Since(started)).Int("chars", sb.Len()).Msg("reply generated")
	return sb.String(), nil
}

// GenerateImage requests the frost portrait and returns its base64 bytes.
// A response without inline image data is an error.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	started := time.Now()
	resp, err := c.generate(ctx, c.imageModel, req)
	if err != nil {
		c.log.Warn().Err(err).Dur("elapsed", time.Since(started)).Msg("image generation failed")
		return "", err
	}

	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				c.log.Debug().Dur("elapsed", time.Since(started)).Msg("image generated")
				return p.InlineData.Data, nil
			}
		}
	}
	return "", fmt.Errorf("no image data in response")
}

func (c *Client) generate(ctx context.Context, model string, payload generateRequest) (*generateResponse, error) {
	if model == "" {
		return nil, fmt.Errorf("no model configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-goog-api-key", c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation service returned %d: %s", httpResp.StatusCode, truncate(string(respBody), 200))
	}

	var resp generateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
