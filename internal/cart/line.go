package cart

import (
	"encoding/json"
	"time"
)

// Line is one cart entry: a product snapshot plus quantity. It is what gets
// persisted into the signed cart cookie, so its wire form has to stay stable.
type Line struct {
	ProductCode string
	Name        string
	Price       float64
	Images      []string
	Quantity    int
	AddedAt     time.Time
}

type lineJSON struct {
	ProductCode string   `json:"productCode"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Quantity    int      `json:"quantity"`
	AddedAt     string   `json:"addedAt"`
}

// MarshalJSON serializes the date as an ISO-8601 string rather than leaving it
// to the default time encoding used by whichever client wrote the cache.
func (l Line) MarshalJSON() ([]byte, error) {
	imgs := l.Images
	if imgs == nil {
		imgs = []string{}
	}
	return json.Marshal(lineJSON{
		ProductCode: l.ProductCode,
		Name:        l.Name,
		Price:       l.Price,
		Images:      imgs,
		Quantity:    l.Quantity,
		AddedAt:     l.AddedAt.UTC().Format(time.RFC3339),
	})
}

// UnmarshalJSON reconstructs a persisted line. A missing or unparseable date
// becomes the current time instead of failing the whole cart.
func (l *Line) UnmarshalJSON(data []byte) error {
	var raw lineJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.ProductCode = raw.ProductCode
	l.Name = raw.Name
	l.Price = raw.Price
	l.Images = raw.Images
	if l.Images == nil {
		l.Images = []string{}
	}
	l.Quantity = raw.Quantity
	if l.Quantity < 1 {
		l.Quantity = 1
	}
	t, err := time.Parse(time.RFC3339, raw.AddedAt)
	if err != nil {
		t = time.Now()
	}
	l.AddedAt = t
	return nil
}
