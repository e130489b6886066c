package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabrielmoneiro/mariadoce/internal/catalog"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
)

// Repository is the persistence surface for order aggregates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, actor string) error
}

// PriceSource resolves the authoritative unit price for a product size. The
// catalog service satisfies this.
type PriceSource interface {
	QuoteItem(ctx context.Context, productID uuid.UUID, sizeName string) (*catalog.PriceQuote, error)
}

// ScheduleSource yields the current operating schedule.
type ScheduleSource interface {
	Schedule(ctx context.Context) (types.ScheduleConfig, error)
}

// Notifier delivers the order-created event after commit. Implementations
// must be best-effort: an error is logged by the caller, never propagated.
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.Order)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
