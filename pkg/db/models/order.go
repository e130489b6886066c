package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
)

// Order is the persisted checkout aggregate. It is created exactly once per
// submission with server-recomputed totals and afterwards mutated only
// through status transitions.
type Order struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	CustomerName   string                `gorm:"column:customer_name;not null"`
	CustomerPhone  string                `gorm:"column:customer_phone;not null"`
	CustomerUID    *string               `gorm:"column:customer_uid"`
	Address        types.DeliveryAddress `gorm:"column:address;type:jsonb;serializer:json"`
	PaymentMethod  enums.PaymentMethod   `gorm:"column:payment_method;not null"`
	ChangeDue      *decimal.Decimal      `gorm:"column:change_due;type:numeric(10,2)"`
	Notes          *string               `gorm:"column:notes"`
	Totals         types.OrderTotals     `gorm:"column:totals;type:jsonb;serializer:json"`
	Status         enums.OrderStatus     `gorm:"column:status;not null;index"`
	Origin         enums.OrderOrigin     `gorm:"column:origin;not null;default:'webapp'"`
	ScheduleDate   *string               `gorm:"column:schedule_date"`
	ScheduleWindow *string               `gorm:"column:schedule_window"`
	Items          []OrderLineItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	UpdatedBy      *string               `gorm:"column:updated_by"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
