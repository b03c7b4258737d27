// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account resolved from the OAuth provider.
// ID is the provider's subject identifier and never changes; it is the only
// join key used for ownership and voting.
type User struct {
	ID        string    `gorm:"primaryKey;size:255" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	AvatarURL *string   `gorm:"size:255" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`

	Proxies []Proxy `gorm:"foreignKey:UploaderID;constraint:OnDelete:CASCADE" json:"proxies,omitempty"`
}
