// Package imagehost uploads product and category images to the external
// hosting service and returns their secure URLs.
package imagehost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type Client struct {
	uploadURL  string
	apiKey     string
	httpClient *http.Client
}

func NewFromEnv() *Client {
	base := os.Getenv("IMAGE_HOST_URL")
	if base == "" {
		return nil
	}
	return &Client{
		uploadURL:  strings.TrimRight(base, "/") + "/upload",
		apiKey:     os.Getenv("IMAGE_HOST_KEY"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type uploadResp struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends a base64 data URI (or a remote URL for the host to ingest)
// into the given folder and returns the hosted secure URL.
func (c *Client) Upload(ctx context.Context, payload, folder string) (string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", errors.New("empty image payload")
	}
	form := url.Values{}
	form.Set("file", payload)
	form.Set("folder", folder)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image host unreachable: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	var out uploadResp
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("image host: bad response (status %d)", res.StatusCode)
	}
	if res.StatusCode >= 300 || out.SecureURL == "" {
		msg := out.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", res.StatusCode)
		}
		return "", fmt.Errorf("image host rejected upload: %s", msg)
	}
	return out.SecureURL, nil
}
