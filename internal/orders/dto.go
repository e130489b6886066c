package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
)

// LineItemInput is one cart line as the client submitted it. Any price the
// client attached is a display hint only; the authoritative value is re-read
// from the catalog at submission time.
type LineItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Size      string
	Addons    string
	ItemNotes string
}

// ScheduleSelection is the user's chosen delivery slot. Either both fields
// are set or the selection is absent; a half-filled selection is invalid.
type ScheduleSelection struct {
	Date       string // YYYY-MM-DD
	TimeWindow string // HH:MM-HH:MM
}

// SubmitInput carries a full checkout payload across the trusted boundary.
// DeclaredTotal travels along purely for drift logging and is never persisted.
type SubmitInput struct {
	CustomerName  string
	CustomerPhone string
	CustomerUID   *string
	Address       types.DeliveryAddress
	Items         []LineItemInput
	PaymentMethod enums.PaymentMethod
	ChangeDue     *decimal.Decimal
	Notes         string
	DeliveryFee   decimal.Decimal
	Discounts     decimal.Decimal
	DeclaredTotal *decimal.Decimal
	Schedule      *ScheduleSelection
	Origin        enums.OrderOrigin
}

// SubmitResult is returned to the storefront after a successful submission.
type SubmitResult struct {
	OrderID      uuid.UUID       `json:"order_id"`
	Status       string          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	WhatsAppLink string          `json:"whatsapp_link,omitempty"`
}

// ListFilter narrows the back-office order listing.
type ListFilter struct {
	Status *enums.OrderStatus
	Limit  int
	Offset int
}

// TransitionInput is one admin- or webhook-triggered status change.
type TransitionInput struct {
	OrderID   uuid.UUID
	NewStatus enums.OrderStatus
	Actor     string
}

// itemError reports one invalid line in an itemized validation failure.
type itemError struct {
	Index     int    `json:"index"`
	ProductID string `json:"product_id,omitempty"`
	Reason    string `json:"reason"`
}
