// Package textgen calls the remote text-generation service used to draft
// justifications and budget forecasts.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"procurement/internal/apperr"
	"procurement/internal/config"
)

// Prompt is the structured input sent to the generator.
type Prompt struct {
	Task   string         `json:"task"`
	Inputs map[string]any `json:"inputs"`
}

type Result struct {
	Text string `json:"resultText"`
}

// Generator produces text for a prompt. Implementations return
// apperr.ErrUpstream when no usable text comes back.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (Result, error)
}

// Client is an HTTP JSON Generator.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewClient(cfg config.TextGenConfig) *Client {
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Generate(ctx context.Context, p Prompt) (Result, error) {
	if c.url == "" {
		return Result{}, fmt.Errorf("%w: text generation is not configured", apperr.ErrUpstream)
	}
	body, err := json.Marshal(p)
	if err != nil {
		return Result{}, fmt.Errorf("marshal prompt: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build text generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("%w: status %d: %s", apperr.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out struct {
		ResultText *string `json:"resultText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("%w: decode response: %v", apperr.ErrUpstream, err)
	}
	if out.ResultText == nil || strings.TrimSpace(*out.ResultText) == "" {
		return Result{}, fmt.Errorf("%w: empty result", apperr.ErrUpstream)
	}
	return Result{Text: strings.TrimSpace(*out.ResultText)}, nil
}
