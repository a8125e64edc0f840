package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Profile is created lazily after first login and gates access to the
// todo list until completed. Its ID is the owning user's ID.
type Profile struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Username  string    `json:"username" gorm:"unique;not null"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
