package domain

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email string    `gorm:"size:140;uniqueIndex" json:"email"`
	// Empty for accounts created through Google sign-in.
	PasswordHash string `gorm:"size:120" json:"-"`
	FirstName    string `gorm:"size:120" json:"firstName"`
	LastName     string `gorm:"size:120" json:"lastName"`
	Phone        string `gorm:"size:60" json:"phone"`
	City         string `gorm:"size:120" json:"city"`
	Address      string `gorm:"size:255" json:"address"`
	IsVerified   bool   `gorm:"not null;default:false" json:"isVerified"`
	GoogleID     string `gorm:"size:80;index" json:"-"`

	VerificationToken string     `gorm:"size:80;index" json:"-"`
	TokenExpiration   *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// TokenValid reports whether the stored verification token matches and is
// still inside its validity window.
func (c *Customer) TokenValid(token string, now time.Time) bool {
	if c.VerificationToken == "" || c.VerificationToken != token {
		return false
	}
	return c.TokenExpiration != nil && now.Before(*c.TokenExpiration)
}
