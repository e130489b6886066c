package types

import "strings"

// DeliveryAddress is the customer-facing address captured during checkout.
// Lat/Lng are present once the address has been geocoded; Pickup marks an
// order collected at the store, in which case the remaining fields are blank.
type DeliveryAddress struct {
	FullAddress  string   `json:"full_address"`
	PostalCode   string   `json:"postal_code,omitempty"`
	Number       string   `json:"number,omitempty"`
	Complement   string   `json:"complement,omitempty"`
	Reference    string   `json:"reference,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	Pickup       bool     `json:"pickup,omitempty"`
}

// IsGeocoded reports whether coordinates are attached.
func (a DeliveryAddress) IsGeocoded() bool {
	return a.Lat != nil && a.Lng != nil
}

// Display returns the human-readable address line, or a pickup marker.
func (a DeliveryAddress) Display() string {
	if a.Pickup {
		return "Retirada na loja"
	}
	return strings.TrimSpace(a.FullAddress)
}
