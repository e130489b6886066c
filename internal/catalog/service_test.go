package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
)

type stubRepo struct {
	Repository

	products   map[uuid.UUID]*models.Product
	categories map[uuid.UUID]*models.Category
	updates    map[string]any

	createCategoryErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		products:   map[uuid.UUID]*models.Product{},
		categories: map[uuid.UUID]*models.Category{},
	}
}

func (r *stubRepo) CreateProduct(_ context.Context, product *models.Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *stubRepo) UpdateProduct(_ context.Context, id uuid.UUID, updates map[string]any) error {
	r.updates = updates
	return nil
}

func (r *stubRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *stubRepo) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *stubRepo) ListProducts(_ context.Context, _ ProductFilter) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubRepo) FindCategoryByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return category, nil
}

func (r *stubRepo) CreateCategory(_ context.Context, category *models.Category) error {
	if r.createCategoryErr != nil {
		return r.createCategoryErr
	}
	r.categories[category.ID] = category
	return nil
}

func ptrDecimal(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTestService(repo Repository) *service {
	return &service{repo: repo}
}

func TestNormalizeLegacyPrice(t *testing.T) {
	product := &models.Product{LegacyPrice: ptrDecimal("18.90")}

	Normalize(product)
	if len(product.PriceOptions) != 1 {
		t.Fatalf("expected one option, got %v", product.PriceOptions)
	}
	if product.PriceOptions[0].Name != DefaultSizeName {
		t.Fatalf("unexpected option name %q", product.PriceOptions[0].Name)
	}
	if !product.PriceOptions[0].Price.Equal(decimal.RequireFromString("18.90")) {
		t.Fatalf("unexpected option price %s", product.PriceOptions[0].Price)
	}
}

func TestNormalizeKeepsExistingOptions(t *testing.T) {
	product := &models.Product{
		LegacyPrice: ptrDecimal("18.90"),
		PriceOptions: []models.PriceOption{
			{Name: "Pequeno", Price: decimal.RequireFromString("12.00")},
		},
	}

	Normalize(product)
	if len(product.PriceOptions) != 1 || product.PriceOptions[0].Name != "Pequeno" {
		t.Fatalf("existing options must win: %v", product.PriceOptions)
	}
}

func TestUnitPriceBySize(t *testing.T) {
	repo := newStubRepo()
	id := uuid.New()
	repo.products[id] = &models.Product{
		ID:       id,
		Name:     "Bolo de Pote",
		IsActive: true,
		PriceOptions: []models.PriceOption{
			{Name: "Pequeno", Price: decimal.RequireFromString("12.00")},
			{Name: "Grande", Price: decimal.RequireFromString("18.00")},
		},
	}
	svc := newTestService(repo)

	price, name, err := svc.UnitPrice(context.Background(), id, "grande")
	if err != nil {
		t.Fatalf("unit price: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("18.00")) || name != "Grande" {
		t.Fatalf("unexpected price %s / name %q", price, name)
	}

	// Empty size resolves to the first option.
	price, name, err = svc.UnitPrice(context.Background(), id, "")
	if err != nil {
		t.Fatalf("unit price default: %v", err)
	}
	if name != "Pequeno" || !price.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("default option wrong: %s %q", price, name)
	}
}

func TestQuoteItemCarriesProductName(t *testing.T) {
	repo := newStubRepo()
	id := uuid.New()
	repo.products[id] = &models.Product{
		ID:       id,
		Name:     "Bolo de Pote",
		IsActive: true,
		PriceOptions: []models.PriceOption{
			{Name: "Pequeno", Price: decimal.RequireFromString("12.00")},
		},
	}
	svc := newTestService(repo)

	quote, err := svc.QuoteItem(context.Background(), id, "pequeno")
	if err != nil {
		t.Fatalf("quote item: %v", err)
	}
	if quote.ProductName != "Bolo de Pote" || quote.SizeName != "Pequeno" {
		t.Fatalf("unexpected quote %+v", quote)
	}
	if !quote.UnitPrice.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("unexpected unit price %s", quote.UnitPrice)
	}
}

func TestUnitPriceLegacyProduct(t *testing.T) {
	repo := newStubRepo()
	id := uuid.New()
	repo.products[id] = &models.Product{
		ID:          id,
		Name:        "Brigadeiro",
		IsActive:    true,
		LegacyPrice: ptrDecimal("3.50"),
	}
	svc := newTestService(repo)

	price, name, err := svc.UnitPrice(context.Background(), id, "")
	if err != nil {
		t.Fatalf("unit price: %v", err)
	}
	if name != DefaultSizeName || !price.Equal(decimal.RequireFromString("3.50")) {
		t.Fatalf("legacy normalization broken: %s %q", price, name)
	}
}

func TestUnitPriceUnknownProductAndSize(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	_, _, err := svc.UnitPrice(context.Background(), uuid.New(), "")
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	id := uuid.New()
	repo.products[id] = &models.Product{
		ID:       id,
		IsActive: true,
		PriceOptions: []models.PriceOption{
			{Name: "Pequeno", Price: decimal.RequireFromString("12.00")},
		},
	}
	_, _, err = svc.UnitPrice(context.Background(), id, "Gigante")
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown size, got %v", err)
	}
}

func TestUnitPriceInactiveProduct(t *testing.T) {
	repo := newStubRepo()
	id := uuid.New()
	repo.products[id] = &models.Product{
		ID:       id,
		IsActive: false,
		PriceOptions: []models.PriceOption{
			{Name: "Pequeno", Price: decimal.RequireFromString("12.00")},
		},
	}
	svc := newTestService(repo)

	if _, _, err := svc.UnitPrice(context.Background(), id, ""); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inactive product, got %v", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(newStubRepo())

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "Torta"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected pricing validation error, got %v", err)
	}

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		Name: "Torta",
		PriceOptions: []models.PriceOption{
			{Name: "Fatia", Price: decimal.RequireFromString("9.00")},
			{Name: "fatia", Price: decimal.RequireFromString("10.00")},
		},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected duplicate option error, got %v", err)
	}

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		Name: "  ",
		PriceOptions: []models.PriceOption{
			{Name: "Fatia", Price: decimal.RequireFromString("9.00")},
		},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected blank name error, got %v", err)
	}
}

func TestUpdateProductRetiresLegacyPrice(t *testing.T) {
	repo := newStubRepo()
	id := uuid.New()
	repo.products[id] = &models.Product{
		ID:          id,
		Name:        "Brigadeiro",
		IsActive:    true,
		LegacyPrice: ptrDecimal("3.50"),
	}
	svc := newTestService(repo)

	options := []models.PriceOption{{Name: "Caixa", Price: decimal.RequireFromString("35.00")}}
	if _, err := svc.UpdateProduct(context.Background(), id, UpdateProductInput{PriceOptions: &options}); err != nil {
		t.Fatalf("update product: %v", err)
	}

	if _, ok := repo.updates["legacy_price"]; !ok {
		t.Fatalf("legacy price must be cleared when options replace it: %v", repo.updates)
	}
	if repo.updates["legacy_price"] != nil {
		t.Fatalf("legacy price should be set to nil, got %v", repo.updates["legacy_price"])
	}
}

func TestCreateCategoryDuplicateSlugConflicts(t *testing.T) {
	for name, dbErr := range map[string]error{
		"postgres": errors.New(`duplicate key value violates unique constraint "idx_categories_slug"`),
		"sqlite":   errors.New("UNIQUE constraint failed: categories.slug"),
	} {
		repo := newStubRepo()
		repo.createCategoryErr = dbErr
		svc := newTestService(repo)

		_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Doces", IsActive: true})
		if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
			t.Fatalf("%s duplicate slug must map to conflict, got %v", name, err)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Bolos de Pote":  "bolos-de-pote",
		"  Doces  ":      "doces",
		"Tortas_Geladas": "tortas-geladas",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
