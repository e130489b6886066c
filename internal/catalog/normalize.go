package catalog

import (
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
)

// DefaultSizeName labels the single option produced from a legacy
// single-price product.
const DefaultSizeName = "Único"

// Normalize folds the legacy single-price column into the PriceOptions list
// so everything past the read boundary sees one pricing shape. Products that
// already carry options are returned untouched; a legacy price only fills in
// when no options exist.
func Normalize(product *models.Product) *models.Product {
	if product == nil {
		return nil
	}
	if len(product.PriceOptions) > 0 {
		return product
	}
	if product.LegacyPrice != nil {
		product.PriceOptions = []models.PriceOption{{
			Name:  DefaultSizeName,
			Price: *product.LegacyPrice,
		}}
	}
	return product
}

// NormalizeAll applies Normalize across a listing.
func NormalizeAll(products []models.Product) []models.Product {
	for i := range products {
		Normalize(&products[i])
	}
	return products
}
