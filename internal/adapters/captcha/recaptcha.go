// Package captcha verifies reCAPTCHA tokens for abuse-prone endpoints.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const verifyURL = "https://www.google.com/recaptcha/api/siteverify"

type Recaptcha struct {
	secret     string
	httpClient *http.Client
}

func NewFromEnv() *Recaptcha {
	secret := os.Getenv("RECAPTCHA_SECRET")
	if secret == "" {
		return nil
	}
	return &Recaptcha{secret: secret, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

func (r *Recaptcha) Verify(ctx context.Context, token string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}
	form := url.Values{}
	form.Set("secret", r.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := r.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha verify failed: %w", err)
	}
	defer res.Body.Close()

	var out struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return false, err
	}
	return out.Success, nil
}
