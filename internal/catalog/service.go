package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gabrielmoneiro/mariadoce/pkg/db"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
)

// Service exposes catalog browsing plus the admin CRUD surface.
type Service interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	UnitPrice(ctx context.Context, productID uuid.UUID, sizeName string) (decimal.Decimal, string, error)
	QuoteItem(ctx context.Context, productID uuid.UUID, sizeName string) (*PriceQuote, error)
}

// PriceQuote is the authoritative catalog answer for one order line.
type PriceQuote struct {
	ProductName string
	SizeName    string
	UnitPrice   decimal.Decimal
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	CategoryID   *uuid.UUID
	Name         string
	Description  *string
	PriceOptions []models.PriceOption
	AddonOptions []models.AddonOption
	ImageURL     *string
	IsActive     bool
	IsFeatured   bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	CategoryID   *uuid.UUID
	Name         *string
	Description  *string
	PriceOptions *[]models.PriceOption
	AddonOptions *[]models.AddonOption
	ImageURL     *string
	IsActive     *bool
	IsFeatured   *bool
}

// CategoryInput holds the payload for category writes.
type CategoryInput struct {
	Name     string
	Slug     string
	Icon     *string
	Position int
	IsActive bool
}

type service struct {
	repo     Repository
	dbClient *db.Client
}

// NewService constructs the catalog service.
func NewService(repo Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return NormalizeAll(products), nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return Normalize(product), nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := validatePricing(input.PriceOptions); err != nil {
		return nil, err
	}
	if input.CategoryID != nil {
		if _, err := s.repo.FindCategoryByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category")
		}
	}

	product := &models.Product{
		ID:           uuid.New(),
		CategoryID:   input.CategoryID,
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		PriceOptions: input.PriceOptions,
		AddonOptions: input.AddonOptions,
		ImageURL:     input.ImageURL,
		IsActive:     input.IsActive,
		IsFeatured:   input.IsFeatured,
	}
	if product.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.CategoryID != nil {
		updates["category_id"] = *input.CategoryID
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be blank")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PriceOptions != nil {
		if err := validatePricing(*input.PriceOptions); err != nil {
			return nil, err
		}
		updates["price_options"] = *input.PriceOptions
		// Replacing the options list retires any legacy single price.
		updates["legacy_price"] = nil
	}
	if input.AddonOptions != nil {
		updates["addon_options"] = *input.AddonOptions
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.IsFeatured != nil {
		updates["is_featured"] = *input.IsFeatured
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateProduct(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
	}
	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = slugify(name)
	}

	category := &models.Category{
		ID:       uuid.New(),
		Name:     name,
		Slug:     slug,
		Icon:     input.Icon,
		Position: input.Position,
		IsActive: input.IsActive,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error) {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	updates := map[string]any{
		"position":  input.Position,
		"is_active": input.IsActive,
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if slug := strings.TrimSpace(input.Slug); slug != "" {
		updates["slug"] = slug
	}
	if input.Icon != nil {
		updates["icon"] = *input.Icon
	}

	if err := s.repo.UpdateCategory(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return s.repo.FindCategoryByID(ctx, id)
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

// UnitPrice returns the authoritative price for a product size. An empty size
// resolves to the first (or legacy) option. The returned name is the resolved
// option label, used when echoing line items back.
func (s *service) UnitPrice(ctx context.Context, productID uuid.UUID, sizeName string) (decimal.Decimal, string, error) {
	quote, err := s.QuoteItem(ctx, productID, sizeName)
	if err != nil {
		return decimal.Zero, "", err
	}
	return quote.UnitPrice, quote.SizeName, nil
}

// QuoteItem resolves product name, size label, and unit price in one read for
// order submission.
func (s *service) QuoteItem(ctx context.Context, productID uuid.UUID, sizeName string) (*PriceQuote, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	if len(product.PriceOptions) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product has no pricing configured")
	}

	size := strings.TrimSpace(sizeName)
	if size == "" {
		opt := product.PriceOptions[0]
		return &PriceQuote{ProductName: product.Name, SizeName: opt.Name, UnitPrice: opt.Price}, nil
	}
	for _, opt := range product.PriceOptions {
		if strings.EqualFold(opt.Name, size) {
			return &PriceQuote{ProductName: product.Name, SizeName: opt.Name, UnitPrice: opt.Price}, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("size %q not offered for this product", size))
}

func validatePricing(options []models.PriceOption) error {
	if len(options) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one price option is required")
	}
	seen := map[string]bool{}
	for _, opt := range options {
		name := strings.ToLower(strings.TrimSpace(opt.Name))
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "price option name is required")
		}
		if seen[name] {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate price option %q", opt.Name))
		}
		seen[name] = true
		if opt.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("price option %q cannot be negative", opt.Name))
		}
	}
	return nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}
