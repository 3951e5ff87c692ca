package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a contact-form submission, readable from the admin dashboard.
type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:140" json:"name"`
	Email     string    `gorm:"size:140" json:"email"`
	Body      string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
