// Package courier looks up pickup offices at the two Bulgarian carriers used
// by the checkout page. Lookups feed the delivery-method picker only; shipping
// costs come from the fixed table in domain.
package courier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/ppetrovv/bisera/internal/domain"
)

const lookupTimeout = 10 * time.Second

type Speedy struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSpeedyFromEnv() *Speedy {
	base := os.Getenv("SPEEDY_API_URL")
	if base == "" {
		return nil
	}
	return &Speedy{
		baseURL:    base,
		apiKey:     os.Getenv("SPEEDY_API_KEY"),
		httpClient: &http.Client{Timeout: lookupTimeout},
	}
}

type speedyOffice struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Schedule string `json:"schedule"`
}

func (s *Speedy) OfficesByCity(ctx context.Context, city string) ([]domain.Office, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/offices?city=%s&apiKey=%s", s.baseURL, url.QueryEscape(city), url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speedy lookup failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("speedy lookup status %d", res.StatusCode)
	}

	var payload struct {
		Offices []speedyOffice `json:"offices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	out := make([]domain.Office, 0, len(payload.Offices))
	for _, o := range payload.Offices {
		out = append(out, domain.Office{Name: o.Name, Address: o.Address, Hours: o.Schedule})
	}
	return out, nil
}
