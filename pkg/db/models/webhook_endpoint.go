package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEndpoint is an admin-registered outbound notification target.
type WebhookEndpoint struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	URL       string    `gorm:"column:url;not null"`
	Secret    *string   `gorm:"column:secret"`
	Events    []string  `gorm:"column:events;type:jsonb;serializer:json"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
