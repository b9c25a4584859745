package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"grocery-backend/internal/models"
	"grocery-backend/internal/pricing"
	"grocery-backend/internal/store"
)

// ProductInput is a create or partial update; nil fields are left alone on
// update. CategoryIDs is nil when not submitted.
type ProductInput struct {
	Name        *string
	Price       *float64
	SaleEnabled *bool
	SalePrice   *float64
	CategoryIDs []string
	Description *string
	Barcode     *string
	Brand       *string
	ImagePath   *string
	Stock       *int
	IsActive    *bool
	IsCampaign  *bool
}

type CatalogService struct {
	products   store.ProductStore
	categories store.CategoryStore
	log        *zap.Logger
}

func NewCatalogService(products store.ProductStore, categories store.CategoryStore, log *zap.Logger) *CatalogService {
	return &CatalogService{products: products, categories: categories, log: log}
}

// ListPublic lists what the storefront may show: active, not deleted.
func (s *CatalogService) ListPublic(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	filter.ActiveOnly = true
	filter.IsActive = nil
	return s.products.List(ctx, filter)
}

func (s *CatalogService) ListCampaign(ctx context.Context, page, limit int64) ([]models.Product, int64, error) {
	return s.products.List(ctx, models.ProductFilter{ActiveOnly: true, CampaignOnly: true, Page: page, Limit: limit})
}

func (s *CatalogService) ListAdmin(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	filter.ActiveOnly = false
	return s.products.List(ctx, filter)
}

func (s *CatalogService) GetProduct(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	product, err := s.products.Get(ctx, id)
	return product, storeErr("product", err)
}

// resolveCategories maps category ids to names, keeping submission order and
// dropping duplicates.
func (s *CatalogService) resolveCategories(ctx context.Context, rawIDs []string) (models.StringList, error) {
	ids := make([]primitive.ObjectID, 0, len(rawIDs))
	seen := map[primitive.ObjectID]struct{}{}
	for _, raw := range rawIDs {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(value)
		if err != nil {
			return nil, &ValidationError{Message: "invalid category", Fields: map[string]string{"category_id": "invalid id " + value}}
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, &ValidationError{Message: "invalid category", Fields: map[string]string{"category_id": "required"}}
	}

	found, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	nameByID := make(map[primitive.ObjectID]string, len(found))
	for _, c := range found {
		nameByID[c.ID] = c.Name
	}

	names := make(models.StringList, 0, len(ids))
	for _, id := range ids {
		name, ok := nameByID[id]
		if !ok {
			return nil, &ValidationError{Message: "invalid category", Fields: map[string]string{"category_id": "not found " + id.Hex()}}
		}
		names = append(names, name)
	}
	return names, nil
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	fe := fieldErrors{}
	name := trimmed(in.Name)
	fe.require("name", name)
	if in.Price == nil || *in.Price <= 0 {
		fe["price"] = "must be greater than 0"
	}
	if in.Stock == nil {
		fe["stock"] = "required"
	} else if *in.Stock < 0 {
		fe["stock"] = "must be zero or greater"
	}
	if err := fe.err("invalid product"); err != nil {
		return models.Product{}, err
	}

	sale, err := pricing.ResolveSaleUpdate(*in.Price, false, 0, pricing.SaleUpdateInput{
		SaleEnabled: in.SaleEnabled,
		SalePrice:   in.SalePrice,
	})
	if err != nil {
		return models.Product{}, &ValidationError{Message: err.Error()}
	}

	categories, err := s.resolveCategories(ctx, in.CategoryIDs)
	if err != nil {
		return models.Product{}, err
	}

	now := time.Now()
	product := models.Product{
		Name:        name,
		Price:       sale.Price,
		SaleEnabled: sale.SaleEnabled,
		SalePrice:   sale.SalePrice,
		Category:    categories,
		Description: trimmed(in.Description),
		Barcode:     trimmed(in.Barcode),
		Brand:       trimmed(in.Brand),
		ImagePath:   trimmed(in.ImagePath),
		Stock:       *in.Stock,
		IsActive:    in.IsActive == nil || *in.IsActive,
		IsCampaign:  in.IsCampaign != nil && *in.IsCampaign,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, &product); err != nil {
		return models.Product{}, storeErr("product with this barcode", err)
	}

	product.InStock = product.Stock > 0
	product.IsOnSale = pricing.IsOnSale(product.Price, product.SaleEnabled, product.SalePrice)
	s.log.Info("product created", zap.String("productId", product.ID.Hex()))
	return product, nil
}

// UpdateProduct applies a partial update. The previous image path is
// returned when the image was replaced so the caller can delete the file.
func (s *CatalogService) UpdateProduct(ctx context.Context, id primitive.ObjectID, in ProductInput) (models.Product, string, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return models.Product{}, "", storeErr("product", err)
	}

	fe := fieldErrors{}
	if in.Name != nil {
		if name := trimmed(in.Name); name == "" {
			fe["name"] = "required"
		} else {
			product.Name = name
		}
	}
	if in.Price != nil && *in.Price <= 0 {
		fe["price"] = "must be greater than 0"
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			fe["stock"] = "must be zero or greater"
		} else {
			product.Stock = *in.Stock
		}
	}
	if err := fe.err("invalid product"); err != nil {
		return models.Product{}, "", err
	}

	sale, err := pricing.ResolveSaleUpdate(product.Price, product.SaleEnabled, product.SalePrice, pricing.SaleUpdateInput{
		Price:       in.Price,
		SaleEnabled: in.SaleEnabled,
		SalePrice:   in.SalePrice,
	})
	if err != nil {
		return models.Product{}, "", &ValidationError{Message: err.Error()}
	}
	product.Price, product.SaleEnabled, product.SalePrice = sale.Price, sale.SaleEnabled, sale.SalePrice

	if in.CategoryIDs != nil {
		categories, err := s.resolveCategories(ctx, in.CategoryIDs)
		if err != nil {
			return models.Product{}, "", err
		}
		product.Category = categories
	}
	if in.Description != nil {
		product.Description = trimmed(in.Description)
	}
	if in.Barcode != nil {
		product.Barcode = trimmed(in.Barcode)
	}
	if in.Brand != nil {
		product.Brand = trimmed(in.Brand)
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if in.IsCampaign != nil {
		product.IsCampaign = *in.IsCampaign
	}

	var previousImage string
	if in.ImagePath != nil && trimmed(in.ImagePath) != product.ImagePath {
		previousImage = product.ImagePath
		product.ImagePath = trimmed(in.ImagePath)
	}

	product.UpdatedAt = time.Now()
	if err := s.products.Update(ctx, &product); err != nil {
		return models.Product{}, "", storeErr("product with this barcode", err)
	}

	product.InStock = product.Stock > 0
	product.IsOnSale = pricing.IsOnSale(product.Price, product.SaleEnabled, product.SalePrice)
	s.log.Info("product updated", zap.String("productId", id.Hex()))
	return product, previousImage, nil
}

// DeleteProduct soft-deletes; order lines keep their own snapshot.
func (s *CatalogService) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	if err := s.products.SoftDelete(ctx, id); err != nil {
		return storeErr("product", err)
	}
	s.log.Info("product deleted", zap.String("productId", id.Hex()))
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context, isActive *bool) ([]models.Category, error) {
	return s.categories.List(ctx, isActive)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string, isActive *bool) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, &ValidationError{Message: "invalid category", Fields: map[string]string{"name": "required"}}
	}
	exists, err := s.categories.ExistsByName(ctx, name, primitive.NilObjectID)
	if err != nil {
		return models.Category{}, err
	}
	if exists {
		return models.Category{}, conflict("category already exists")
	}

	now := time.Now()
	category := models.Category{
		Name:      name,
		IsActive:  isActive == nil || *isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.categories.Create(ctx, &category); err != nil {
		return models.Category{}, storeErr("category", err)
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id primitive.ObjectID, name *string, isActive *bool) (models.Category, error) {
	category, err := s.categories.Get(ctx, id)
	if err != nil {
		return models.Category{}, storeErr("category", err)
	}

	if name != nil {
		newName := strings.TrimSpace(*name)
		if newName == "" {
			return models.Category{}, &ValidationError{Message: "invalid category", Fields: map[string]string{"name": "required"}}
		}
		exists, err := s.categories.ExistsByName(ctx, newName, id)
		if err != nil {
			return models.Category{}, err
		}
		if exists {
			return models.Category{}, conflict("category already exists")
		}
		category.Name = newName
	}
	if isActive != nil {
		category.IsActive = *isActive
	}
	category.UpdatedAt = time.Now()

	if err := s.categories.Update(ctx, &category); err != nil {
		return models.Category{}, storeErr("category", err)
	}
	return category, nil
}

func (s *CatalogService) DeactivateCategory(ctx context.Context, id primitive.ObjectID) error {
	return storeErr("category", s.categories.Deactivate(ctx, id))
}
