package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gabrielmoneiro/mariadoce/api/responses"
	"github.com/gabrielmoneiro/mariadoce/api/validators"
	catalogsvc "github.com/gabrielmoneiro/mariadoce/internal/catalog"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
)

type priceOptionRequest struct {
	Name  string `json:"name" validate:"required"`
	Price string `json:"price" validate:"required"`
}

type addonOptionRequest struct {
	Name  string `json:"name" validate:"required"`
	Price string `json:"price" validate:"required"`
}

type createProductRequest struct {
	CategoryID   *string              `json:"category_id,omitempty"`
	Name         string               `json:"name" validate:"required"`
	Description  *string              `json:"description,omitempty"`
	PriceOptions []priceOptionRequest `json:"price_options" validate:"required,min=1,dive"`
	AddonOptions []addonOptionRequest `json:"addon_options,omitempty" validate:"omitempty,dive"`
	ImageURL     *string              `json:"image_url,omitempty"`
	IsActive     *bool                `json:"is_active,omitempty"`
	IsFeatured   *bool                `json:"is_featured,omitempty"`
}

type updateProductRequest struct {
	CategoryID   *string               `json:"category_id,omitempty"`
	Name         *string               `json:"name,omitempty"`
	Description  *string               `json:"description,omitempty"`
	PriceOptions *[]priceOptionRequest `json:"price_options,omitempty" validate:"omitempty,min=1,dive"`
	AddonOptions *[]addonOptionRequest `json:"addon_options,omitempty" validate:"omitempty,dive"`
	ImageURL     *string               `json:"image_url,omitempty"`
	IsActive     *bool                 `json:"is_active,omitempty"`
	IsFeatured   *bool                 `json:"is_featured,omitempty"`
}

type categoryRequest struct {
	Name     string  `json:"name" validate:"required"`
	Slug     string  `json:"slug,omitempty"`
	Icon     *string `json:"icon,omitempty"`
	Position int     `json:"position,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// AdminCreateProduct handles back-office product creation.
func AdminCreateProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct applies a partial product update.
func AdminUpdateProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parsePathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product from the catalog.
func AdminDeleteProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parsePathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// AdminListProducts lists every product, inactive included.
func AdminListProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListProducts(r.Context(), catalogsvc.ProductFilter{})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// AdminCreateCategory creates a storefront category.
func AdminCreateCategory(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// AdminUpdateCategory replaces a category's editable fields.
func AdminUpdateCategory(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := parsePathUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.UpdateCategory(r.Context(), categoryID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

// AdminDeleteCategory removes a category.
func AdminDeleteCategory(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := parsePathUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteCategory(r.Context(), categoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// AdminListCategories lists every category, inactive included.
func AdminListCategories(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context(), false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func (p createProductRequest) toInput() (catalogsvc.CreateProductInput, error) {
	options, err := parsePriceOptions(p.PriceOptions)
	if err != nil {
		return catalogsvc.CreateProductInput{}, err
	}
	addons, err := parseAddonOptions(p.AddonOptions)
	if err != nil {
		return catalogsvc.CreateProductInput{}, err
	}
	categoryID, err := parseOptionalUUID(p.CategoryID, "category_id")
	if err != nil {
		return catalogsvc.CreateProductInput{}, err
	}

	input := catalogsvc.CreateProductInput{
		CategoryID:   categoryID,
		Name:         p.Name,
		Description:  p.Description,
		PriceOptions: options,
		AddonOptions: addons,
		ImageURL:     p.ImageURL,
		IsActive:     true,
	}
	if p.IsActive != nil {
		input.IsActive = *p.IsActive
	}
	if p.IsFeatured != nil {
		input.IsFeatured = *p.IsFeatured
	}
	return input, nil
}

func (p updateProductRequest) toInput() (catalogsvc.UpdateProductInput, error) {
	input := catalogsvc.UpdateProductInput{
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		IsFeatured:  p.IsFeatured,
	}

	categoryID, err := parseOptionalUUID(p.CategoryID, "category_id")
	if err != nil {
		return catalogsvc.UpdateProductInput{}, err
	}
	input.CategoryID = categoryID

	if p.PriceOptions != nil {
		options, err := parsePriceOptions(*p.PriceOptions)
		if err != nil {
			return catalogsvc.UpdateProductInput{}, err
		}
		input.PriceOptions = &options
	}
	if p.AddonOptions != nil {
		addons, err := parseAddonOptions(*p.AddonOptions)
		if err != nil {
			return catalogsvc.UpdateProductInput{}, err
		}
		input.AddonOptions = &addons
	}
	return input, nil
}

func (p categoryRequest) toInput() catalogsvc.CategoryInput {
	input := catalogsvc.CategoryInput{
		Name:     p.Name,
		Slug:     p.Slug,
		Icon:     p.Icon,
		Position: p.Position,
		IsActive: true,
	}
	if p.IsActive != nil {
		input.IsActive = *p.IsActive
	}
	return input
}

func parsePriceOptions(raw []priceOptionRequest) ([]models.PriceOption, error) {
	options := make([]models.PriceOption, 0, len(raw))
	for _, opt := range raw {
		price, err := parsePrice(opt.Price, opt.Name)
		if err != nil {
			return nil, err
		}
		options = append(options, models.PriceOption{Name: opt.Name, Price: price})
	}
	return options, nil
}

func parseAddonOptions(raw []addonOptionRequest) ([]models.AddonOption, error) {
	addons := make([]models.AddonOption, 0, len(raw))
	for _, opt := range raw {
		price, err := parsePrice(opt.Price, opt.Name)
		if err != nil {
			return nil, err
		}
		addons = append(addons, models.AddonOption{Name: opt.Name, Price: price})
	}
	return addons, nil
}

func parsePrice(raw, label string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal string").
			WithDetails(map[string]any{"option": label})
	}
	return price, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a UUID")
	}
	return &id, nil
}
