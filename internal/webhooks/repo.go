package webhooks

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
)

// Repository persists webhook endpoints and the inbound message inbox.
type Repository interface {
	CreateEndpoint(ctx context.Context, endpoint *models.WebhookEndpoint) error
	UpdateEndpoint(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteEndpoint(ctx context.Context, id uuid.UUID) error
	FindEndpointByID(ctx context.Context, id uuid.UUID) (*models.WebhookEndpoint, error)
	ListEndpoints(ctx context.Context, activeOnly bool) ([]models.WebhookEndpoint, error)

	CreateInboundMessage(ctx context.Context, message *models.InboundMessage) error
	ListInboundMessages(ctx context.Context, unprocessedOnly bool) ([]models.InboundMessage, error)
	MarkMessageProcessed(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a webhook repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEndpoint(ctx context.Context, endpoint *models.WebhookEndpoint) error {
	return r.db.WithContext(ctx).Create(endpoint).Error
}

func (r *repository) UpdateEndpoint(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.WebhookEndpoint{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteEndpoint(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.WebhookEndpoint{}).Error
}

func (r *repository) FindEndpointByID(ctx context.Context, id uuid.UUID) (*models.WebhookEndpoint, error) {
	var endpoint models.WebhookEndpoint
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&endpoint).Error
	if err != nil {
		return nil, err
	}
	return &endpoint, nil
}

func (r *repository) ListEndpoints(ctx context.Context, activeOnly bool) ([]models.WebhookEndpoint, error) {
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var endpoints []models.WebhookEndpoint
	if err := query.Order("created_at ASC").Find(&endpoints).Error; err != nil {
		return nil, err
	}
	return endpoints, nil
}

func (r *repository) CreateInboundMessage(ctx context.Context, message *models.InboundMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) ListInboundMessages(ctx context.Context, unprocessedOnly bool) ([]models.InboundMessage, error) {
	query := r.db.WithContext(ctx)
	if unprocessedOnly {
		query = query.Where("processed = ?", false)
	}

	var messages []models.InboundMessage
	if err := query.Order("received_at DESC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repository) MarkMessageProcessed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.InboundMessage{}).
		Where("id = ?", id).
		Update("processed", true).Error
}
