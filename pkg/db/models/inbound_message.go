package models

import (
	"time"

	"github.com/google/uuid"
)

// InboundMessage is a WhatsApp message delivered through the inbound webhook
// and surfaced in the admin inbox.
type InboundMessage struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Phone      string    `gorm:"column:phone;not null;index"`
	Body       string    `gorm:"column:body;not null"`
	Processed  bool      `gorm:"column:processed;not null;default:false"`
	ReceivedAt time.Time `gorm:"column:received_at;autoCreateTime"`
}
