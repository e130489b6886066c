package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceOption is one purchasable size of a product.
type PriceOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// AddonOption is an optional extra with its own surcharge.
type AddonOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Product is the canonical catalog listing. LegacyPrice carries the
// single-price field from records created before multi-size pricing existed;
// reads go through catalog normalization so business logic only ever sees
// PriceOptions.
type Product struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID   *uuid.UUID       `gorm:"column:category_id;type:uuid;index"`
	Name         string           `gorm:"column:name;not null"`
	Description  *string          `gorm:"column:description"`
	LegacyPrice  *decimal.Decimal `gorm:"column:legacy_price;type:numeric(10,2)"`
	PriceOptions []PriceOption    `gorm:"column:price_options;type:jsonb;serializer:json"`
	AddonOptions []AddonOption    `gorm:"column:addon_options;type:jsonb;serializer:json"`
	ImageURL     *string          `gorm:"column:image_url"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true"`
	IsFeatured   bool             `gorm:"column:is_featured;not null;default:false"`
	Category     *Category        `gorm:"foreignKey:CategoryID"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
