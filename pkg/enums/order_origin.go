package enums

// OrderOrigin records which surface created an order.
type OrderOrigin string

const (
	OrderOriginWebApp  OrderOrigin = "webapp"
	OrderOriginAdmin   OrderOrigin = "admin"
	OrderOriginWebhook OrderOrigin = "webhook"
)

// IsValid reports whether the value is a known OrderOrigin.
func (o OrderOrigin) IsValid() bool {
	switch o {
	case OrderOriginWebApp, OrderOriginAdmin, OrderOriginWebhook:
		return true
	}
	return false
}
