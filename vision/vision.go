// Package vision calls the Google Cloud Vision REST API and distills its
// annotations into the handful of signals the analysis pipeline consumes.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/MBGrao/ecommerce-product-intelligence-api/config"
	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
)

// Signals is the distilled annotation set for one image.
type Signals struct {
	Labels        []string
	Text          string
	Entities      []string
	SimilarImages []string
	BestGuesses   []string
}

// Empty reports whether the image produced no recognisable signal.
func (s Signals) Empty() bool {
	return len(s.Labels) == 0 && s.Text == "" && len(s.Entities) == 0 &&
		len(s.SimilarImages) == 0 && len(s.BestGuesses) == 0
}

// Client is a Vision REST API client. A zero API key disables it; Annotate
// then returns a typed upstream error.
type Client struct {
	cfg    config.VisionConfig
	client *http.Client
}

// NewClient creates a Client.
func NewClient(cfg config.VisionConfig) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.cfg.APIKey != "" }

type annotateRequest struct {
	Requests []struct {
		Image struct {
			Content string `json:"content"`
		} `json:"image"`
		Features []feature `json:"features"`
	} `json:"requests"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

// Annotate sends one image for label, text, and web detection.
func (c *Client) Annotate(ctx context.Context, imageBytes []byte) (Signals, error) {
	if !c.Enabled() {
		return Signals{}, models.NewAnalyzeError(models.ErrCodeUpstream,
			"vision API key not configured", nil)
	}

	var req annotateRequest
	req.Requests = make([]struct {
		Image struct {
			Content string `json:"content"`
		} `json:"image"`
		Features []feature `json:"features"`
	}, 1)
	req.Requests[0].Image.Content = base64.StdEncoding.EncodeToString(imageBytes)
	req.Requests[0].Features = []feature{
		{Type: "LABEL_DETECTION", MaxResults: 10},
		{Type: "TEXT_DETECTION"},
		{Type: "WEB_DETECTION", MaxResults: 10},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Signals{}, models.NewAnalyzeError(models.ErrCodeInternal,
			"vision: encode request", err)
	}

	endpoint := c.cfg.Endpoint + "?key=" + url.QueryEscape(c.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Signals{}, models.NewAnalyzeError(models.ErrCodeInternal,
			"vision: build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Signals{}, models.NewAnalyzeError(models.ErrCodeUpstream,
			"vision: annotate call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Signals{}, models.NewAnalyzeError(models.ErrCodeUpstream,
			fmt.Sprintf("vision: HTTP %d", resp.StatusCode), nil)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return Signals{}, models.NewAnalyzeError(models.ErrCodeUpstream,
			"vision: read response", err)
	}
	return Normalize(raw)
}
