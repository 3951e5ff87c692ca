package domain

import "context"

// Mailer is the outbound email boundary. Every send is fire-and-forget from
// the caller's point of view; failures are logged, never propagated into the
// operation that triggered them.
type Mailer interface {
	SendOrderStatus(ctx context.Context, o *Order) error
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, name, resetURL string) error
}

// ImageUploader stores a base64 or URL image payload under a folder and
// returns a secure URL.
type ImageUploader interface {
	Upload(ctx context.Context, payload, folder string) (string, error)
}

// CaptchaVerifier checks a client-side challenge token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// Office is a courier pickup point.
type Office struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Hours   string `json:"hours"`
}

// OfficeDirectory lists courier offices for a city. Lookups are bounded by a
// timeout and degrade to an empty list on upstream failure.
type OfficeDirectory interface {
	OfficesByCity(ctx context.Context, city string) ([]Office, error)
}
