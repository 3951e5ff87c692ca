package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/ppetrovv/bisera/internal/domain"
)

type Econt struct {
	baseURL    string
	httpClient *http.Client
}

func NewEcontFromEnv() *Econt {
	base := os.Getenv("ECONT_API_URL")
	if base == "" {
		return nil
	}
	return &Econt{baseURL: base, httpClient: &http.Client{Timeout: lookupTimeout}}
}

type econtOffice struct {
	Name    string `json:"name"`
	Address struct {
		FullAddress string `json:"fullAddress"`
	} `json:"address"`
	WorkTime string `json:"workTime"`
}

// OfficesByCity posts a city filter to the Econt nomenclature endpoint.
func (e *Econt) OfficesByCity(ctx context.Context, city string) ([]domain.Office, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"cityName": city})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/Nomenclatures/NomenclaturesService.getOffices.json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("econt lookup failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("econt lookup status %d", res.StatusCode)
	}

	var payload struct {
		Offices []econtOffice `json:"offices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	out := make([]domain.Office, 0, len(payload.Offices))
	for _, o := range payload.Offices {
		out = append(out, domain.Office{Name: o.Name, Address: o.Address.FullAddress, Hours: o.WorkTime})
	}
	return out, nil
}
