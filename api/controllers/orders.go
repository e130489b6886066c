package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gabrielmoneiro/mariadoce/api/responses"
	"github.com/gabrielmoneiro/mariadoce/api/validators"
	orderssvc "github.com/gabrielmoneiro/mariadoce/internal/orders"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
	"github.com/gabrielmoneiro/mariadoce/pkg/whatsapp"
)

type submitItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Size      string `json:"size,omitempty"`
	Addons    string `json:"addons,omitempty"`
	ItemNotes string `json:"item_notes,omitempty"`
}

type submitScheduleRequest struct {
	Date       string `json:"date" validate:"required"`
	TimeWindow string `json:"time_window" validate:"required"`
}

type submitOrderRequest struct {
	CustomerName  string                 `json:"customer_name" validate:"required"`
	CustomerPhone string                 `json:"customer_phone" validate:"required"`
	CustomerUID   *string                `json:"customer_uid,omitempty"`
	Address       types.DeliveryAddress  `json:"address"`
	Items         []submitItemRequest    `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string                 `json:"payment_method" validate:"required"`
	ChangeDue     *decimal.Decimal       `json:"change_due,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
	DeliveryFee   decimal.Decimal        `json:"delivery_fee"`
	Discounts     decimal.Decimal        `json:"discounts"`
	DeclaredTotal *decimal.Decimal       `json:"declared_total,omitempty"`
	Schedule      *submitScheduleRequest `json:"schedule,omitempty"`
}

// SubmitOrder is the storefront checkout endpoint. Totals are recomputed
// server-side; the response carries the WhatsApp deep link the storefront
// opens for the customer.
func SubmitOrder(svc orderssvc.Service, logg *logger.Logger, storePhone string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload submitOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(enums.OrderOriginWebApp)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := orderssvc.SubmitResult{
			OrderID: order.ID,
			Status:  order.Status.String(),
			Total:   order.Totals.Total,
		}
		if storePhone != "" {
			result.WhatsAppLink = whatsapp.DeepLink(storePhone, orderWhatsAppMessage(order))
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func (p submitOrderRequest) toInput(origin enums.OrderOrigin) (orderssvc.SubmitInput, error) {
	method, err := enums.ParsePaymentMethod(p.PaymentMethod)
	if err != nil {
		return orderssvc.SubmitInput{}, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	items := make([]orderssvc.LineItemInput, 0, len(p.Items))
	for _, item := range p.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return orderssvc.SubmitInput{}, pkgerrors.New(pkgerrors.CodeValidation, "product_id must be a UUID")
		}
		items = append(items, orderssvc.LineItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Addons:    item.Addons,
			ItemNotes: item.ItemNotes,
		})
	}

	input := orderssvc.SubmitInput{
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		CustomerUID:   p.CustomerUID,
		Address:       p.Address,
		Items:         items,
		PaymentMethod: method,
		ChangeDue:     p.ChangeDue,
		Notes:         p.Notes,
		DeliveryFee:   p.DeliveryFee,
		Discounts:     p.Discounts,
		DeclaredTotal: p.DeclaredTotal,
		Origin:        origin,
	}
	if p.Schedule != nil {
		input.Schedule = &orderssvc.ScheduleSelection{
			Date:       p.Schedule.Date,
			TimeWindow: p.Schedule.TimeWindow,
		}
	}
	return input, nil
}

func orderWhatsAppMessage(order *models.Order) whatsapp.OrderMessage {
	lines := make([]whatsapp.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		line := whatsapp.OrderLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.LineSubtotal,
		}
		if item.Size != nil {
			line.Size = *item.Size
		}
		if item.Addons != nil && *item.Addons != "" {
			line.Addons = strings.Split(*item.Addons, ", ")
		}
		lines = append(lines, line)
	}

	msg := whatsapp.OrderMessage{
		CustomerName:   order.CustomerName,
		CustomerPhone:  order.CustomerPhone,
		AddressDisplay: order.Address.Display(),
		Pickup:         order.Address.Pickup,
		Lines:          lines,
		ItemsSubtotal:  order.Totals.ItemsSubtotal,
		DeliveryFee:    order.Totals.DeliveryFee,
		Total:          order.Totals.Total,
		PaymentMethod:  order.PaymentMethod,
		ChangeDue:      order.ChangeDue,
	}
	if order.Notes != nil {
		msg.Notes = *order.Notes
	}
	if order.ScheduleDate != nil {
		if date, err := time.Parse("2006-01-02", *order.ScheduleDate); err == nil {
			msg.ScheduleDate = date.Format("02/01/2006")
		}
	}
	if order.ScheduleWindow != nil {
		msg.ScheduleWindow = strings.ReplaceAll(*order.ScheduleWindow, "-", " - ")
	}
	return msg
}
