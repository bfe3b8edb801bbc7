package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	UUID     uuid.UUID `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	Name     string    `json:"name" gorm:"default:''"`
	Email    string    `json:"email" gorm:"unique;not null"`
	Password string    `json:"-" gorm:"not null"`
	// WebhookURL, when set, receives a POST for every attempt submitted
	// against a quiz this user owns.
	WebhookURL string     `json:"webhook_url" gorm:"default:''"`
	LastLogin  *time.Time `json:"last_login"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	return nil
}
