package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookDelivery is an audit row for every outgoing webhook post.
type WebhookDelivery struct {
	gorm.Model
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	URL        string         `json:"url" gorm:"not null"`
	Event      string         `json:"event" gorm:"not null"`
	Payload    datatypes.JSON `json:"payload"`
	StatusCode int            `json:"status_code"`
	SendError  string         `json:"send_error" gorm:"default:''"`
}
