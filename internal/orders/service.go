package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/gabrielmoneiro/mariadoce/internal/schedule"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
	"github.com/gabrielmoneiro/mariadoce/pkg/metrics"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
)

const minPhoneDigits = 10

// Service exposes checkout submission and the back-office order operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
}

type service struct {
	repo      Repository
	prices    PriceSource
	schedules ScheduleSource
	tx        txRunner
	notifier  Notifier
	logg      *logger.Logger
	metrics   *metrics.OrderMetrics
	now       func() time.Time
}

// NewService builds the order service. Notifier and metrics are optional.
func NewService(repo Repository, prices PriceSource, schedules ScheduleSource, tx txRunner, notifier Notifier, logg *logger.Logger, orderMetrics *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if prices == nil {
		return nil, fmt.Errorf("price source required")
	}
	if schedules == nil {
		return nil, fmt.Errorf("schedule source required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		prices:    prices,
		schedules: schedules,
		tx:        tx,
		notifier:  notifier,
		logg:      logg,
		metrics:   orderMetrics,
		now:       time.Now,
	}, nil
}

// Submit runs the full checkout pipeline: shape validation, concurrent
// authoritative price re-reads, server-side totals, payment and schedule
// checks, a single transactional write, then a best-effort notification.
// Nothing is persisted unless every line item validates.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Order, error) {
	started := s.now()
	origin := input.Origin
	if !origin.IsValid() {
		origin = enums.OrderOriginWebApp
	}

	if err := validateShape(input); err != nil {
		s.metrics.IncRejected("validation")
		return nil, err
	}

	items, itemsSubtotal, err := s.priceLineItems(ctx, input.Items)
	if err != nil {
		s.metrics.IncRejected("pricing")
		return nil, err
	}

	totals := types.OrderTotals{
		ItemsSubtotal: itemsSubtotal,
		DeliveryFee:   input.DeliveryFee,
		Discounts:     input.Discounts,
		Total:         itemsSubtotal.Add(input.DeliveryFee).Sub(input.Discounts),
	}
	if totals.Total.IsNegative() {
		s.metrics.IncRejected("validation")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discounts exceed the order value")
	}
	if input.DeclaredTotal != nil && !input.DeclaredTotal.Equal(totals.Total) {
		s.logg.Warn(ctx, fmt.Sprintf("client declared total %s, server computed %s", input.DeclaredTotal, totals.Total))
	}

	if err := validateChange(input, totals.Total); err != nil {
		s.metrics.IncRejected("payment")
		return nil, err
	}

	status, err := s.resolveStatus(ctx, input.Schedule)
	if err != nil {
		s.metrics.IncRejected("schedule")
		return nil, err
	}

	order := &models.Order{
		ID:            uuid.New(),
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerPhone: normalizePhone(input.CustomerPhone),
		CustomerUID:   input.CustomerUID,
		Address:       input.Address,
		PaymentMethod: input.PaymentMethod,
		ChangeDue:     input.ChangeDue,
		Totals:        totals,
		Status:        status,
		Origin:        origin,
		Items:         items,
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		order.Notes = &notes
	}
	if input.Schedule != nil {
		date, window := input.Schedule.Date, input.Schedule.TimeWindow
		order.ScheduleDate = &date
		order.ScheduleWindow = &window
	}
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateOrder(ctx, order)
	})
	if err != nil {
		s.metrics.IncRejected("persistence")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, fmt.Sprintf("order accepted with status %s, total %s", order.Status, totals.Total))
	s.metrics.IncSubmitted(string(origin), string(order.Status))
	s.metrics.ObserveSubmitDuration(string(origin), s.now().Sub(started))

	if s.notifier != nil {
		s.notifier.OrderCreated(ctx, order)
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// Transition applies one step of the status machine. Invalid moves surface a
// state conflict with the attempted transition in the details.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if !input.NewStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", input.NewStatus))
	}

	order, err := s.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == input.NewStatus {
		return order, nil
	}
	if !order.Status.CanTransitionTo(input.NewStatus) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, input.NewStatus)).
			WithDetails(map[string]any{"from": order.Status, "to": input.NewStatus})
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, input.NewStatus, input.Actor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, fmt.Sprintf("order moved from %s to %s by %s", order.Status, input.NewStatus, input.Actor))
	return s.Get(ctx, order.ID)
}

// priceLineItems fans the authoritative price lookups out concurrently; any
// failed lookup aborts the whole submission with an itemized error before
// anything is written.
func (s *service) priceLineItems(ctx context.Context, inputs []LineItemInput) ([]models.OrderLineItem, decimal.Decimal, error) {
	items := make([]models.OrderLineItem, len(inputs))
	itemErrs := make([]*itemError, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	for i, line := range inputs {
		i, line := i, line
		g.Go(func() error {
			quote, err := s.prices.QuoteItem(gctx, line.ProductID, line.Size)
			if err != nil {
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeDependency {
					return typed
				}
				itemErrs[i] = &itemError{
					Index:     i,
					ProductID: line.ProductID.String(),
					Reason:    reasonFor(err),
				}
				return nil
			}

			item := models.OrderLineItem{
				ProductID:    line.ProductID,
				Name:         quote.ProductName,
				Quantity:     line.Quantity,
				UnitPrice:    quote.UnitPrice,
				LineSubtotal: quote.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
			}
			if quote.SizeName != "" {
				size := quote.SizeName
				item.Size = &size
			}
			if addons := strings.TrimSpace(line.Addons); addons != "" {
				item.Addons = &addons
			}
			if notes := strings.TrimSpace(line.ItemNotes); notes != "" {
				item.ItemNotes = &notes
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, decimal.Zero, err
	}

	var details []itemError
	for _, ie := range itemErrs {
		if ie != nil {
			details = append(details, *ie)
		}
	}
	if len(details) > 0 {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "one or more line items are invalid").
			WithDetails(map[string]any{"items": details})
	}

	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].LineSubtotal)
	}
	return items, subtotal, nil
}

// resolveStatus enforces the eligibility decision against the live schedule
// and picks the initial status.
func (s *service) resolveStatus(ctx context.Context, selection *ScheduleSelection) (enums.OrderStatus, error) {
	cfg, err := s.schedules.Schedule(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule settings")
	}

	decision := schedule.Decide(s.now(), cfg)
	if selection == nil {
		if decision.SchedulingRequired {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "a delivery date and time window must be selected")
		}
		if !decision.AllowImmediate {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "the store is closed for orders right now")
		}
		return enums.OrderStatusReceived, nil
	}

	if !decision.AllowScheduled {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "scheduled orders are not accepted right now")
	}
	if !schedule.WithinHorizon(cfg, selection.Date, s.now()) {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("date %s is outside the booking window", selection.Date))
	}
	if !schedule.MatchesWindow(cfg, selection.Date, selection.TimeWindow) {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("time window %s on %s is not available", selection.TimeWindow, selection.Date))
	}
	return enums.OrderStatusScheduled, nil
}

func validateShape(input SubmitInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if len(normalizePhone(input.CustomerPhone)) < minPhoneDigits {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("phone must have at least %d digits", minPhoneDigits))
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one line item is required")
	}
	for i, line := range input.Items {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d is missing a product id", i))
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d must have a positive quantity", i))
		}
	}
	if input.DeliveryFee.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery fee cannot be negative")
	}
	if input.Discounts.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discounts cannot be negative")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", input.PaymentMethod))
	}
	if !input.Address.Pickup && strings.TrimSpace(input.Address.FullAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "a delivery address or pickup marker is required")
	}
	if input.Schedule != nil {
		if strings.TrimSpace(input.Schedule.Date) == "" || strings.TrimSpace(input.Schedule.TimeWindow) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "schedule selection needs both date and time window")
		}
	}
	return nil
}

func validateChange(input SubmitInput, total decimal.Decimal) error {
	if input.ChangeDue == nil {
		return nil
	}
	if input.PaymentMethod != enums.PaymentMethodCash {
		return pkgerrors.New(pkgerrors.CodeValidation, "change only applies to cash payments")
	}
	if input.ChangeDue.LessThan(total) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("change amount %s is below the order total %s", input.ChangeDue, total))
	}
	return nil
}

func normalizePhone(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}

func reasonFor(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		if typed.Code() == pkgerrors.CodeNotFound {
			return "product not found"
		}
		return typed.Message()
	}
	return "price lookup failed"
}
