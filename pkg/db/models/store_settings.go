package models

import (
	"time"

	"github.com/gabrielmoneiro/mariadoce/pkg/types"
)

// SettingsRowID is the primary key of the singleton settings row.
const SettingsRowID = 1

// StoreSettings is the admin-owned configuration singleton. Exactly one row
// exists; it is seeded on first boot and edited through the back-office.
type StoreSettings struct {
	ID        int                    `gorm:"column:id;primaryKey"`
	Delivery  types.DeliverySettings `gorm:"column:delivery;type:jsonb;serializer:json"`
	Schedule  types.ScheduleConfig   `gorm:"column:schedule;type:jsonb;serializer:json"`
	UpdatedBy *string                `gorm:"column:updated_by"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
