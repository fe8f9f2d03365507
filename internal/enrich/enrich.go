// Package enrich attaches generated illustrations to briefing stories via an
// external image-generation service.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/briefer/config"
)

// ErrMissingCredentials marks the distinguished failure that halts all
// further enrichment attempts in a run.
var ErrMissingCredentials = errors.New("image generation credentials missing")

// credentialSignals are matched (case-insensitive, substring) against service
// error text to recognize a credentials problem behind a generic failure.
var credentialSignals = []string{
	"missing credentials",
	"api key",
	"unauthorized",
}

// Generator produces an illustration URL for a story prompt.
type Generator interface {
	Illustrate(ctx context.Context, prompt string) (string, error)
}

// Client calls an OpenAI-style images endpoint.
type Client struct {
	cfg        config.ImagesConfig
	httpClient *http.Client
}

func NewClient(cfg config.ImagesConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Illustrate generates one image for the prompt and returns its URL.
func (c *Client) Illustrate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", ErrMissingCredentials
	}

	requestBody := map[string]interface{}{
		"model":  c.cfg.Model,
		"prompt": prompt,
		"n":      1,
		"size":   c.cfg.Size,
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/images/generations", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var decoded struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || decoded.Error.Message != "" {
		msg := decoded.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		if isCredentialSignal(msg) {
			return "", fmt.Errorf("%s: %w", msg, ErrMissingCredentials)
		}
		return "", fmt.Errorf("image generation failed: %s", msg)
	}
	if len(decoded.Data) == 0 || decoded.Data[0].URL == "" {
		return "", errors.New("image generation returned no url")
	}
	return decoded.Data[0].URL, nil
}

func isCredentialSignal(msg string) bool {
	lower := strings.ToLower(msg)
	for _, s := range credentialSignals {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
