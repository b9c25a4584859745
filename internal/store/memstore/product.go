package memstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grocery-backend/internal/models"
	"grocery-backend/internal/pricing"
	"grocery-backend/internal/store"
)

type ProductStore struct {
	base
	byID map[primitive.ObjectID]models.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{byID: map[primitive.ObjectID]models.Product{}}
}

func decorate(p models.Product) models.Product {
	p = cloneProduct(p)
	p.InStock = p.Stock > 0
	p.IsOnSale = pricing.IsOnSale(p.Price, p.SaleEnabled, p.SalePrice)
	return p
}

func (s *ProductStore) Get(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok || p.IsDeleted {
		return models.Product{}, store.ErrNotFound
	}
	return decorate(p), nil
}

func (s *ProductStore) GetMany(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.byID[id]; ok && !p.IsDeleted {
			out = append(out, decorate(p))
		}
	}
	return out, nil
}

func matchesProduct(p models.Product, f models.ProductFilter) bool {
	if p.IsDeleted {
		return false
	}
	if f.ActiveOnly && !p.IsActive {
		return false
	}
	if !f.ActiveOnly && f.IsActive != nil && p.IsActive != *f.IsActive {
		return false
	}
	if f.CampaignOnly && !p.IsCampaign {
		return false
	}
	if f.Category != "" && !p.Category.Has(f.Category) {
		return false
	}
	if f.Search != "" {
		if !containsFold(p.Name, f.Search) && !containsFold(p.Brand, f.Search) &&
			!containsFold(p.Description, f.Search) && !containsFold(p.Barcode, f.Search) {
			return false
		}
	}
	return true
}

func (s *ProductStore) List(_ context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]models.Product, 0)
	for _, p := range s.byID {
		if matchesProduct(p, filter) {
			matched = append(matched, decorate(p))
		}
	}
	newestFirst(matched, func(p models.Product) time.Time { return p.CreatedAt })
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (s *ProductStore) Create(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.Barcode != "" {
		for _, p := range s.byID {
			if !p.IsDeleted && p.Barcode == product.Barcode {
				return store.ErrDuplicate
			}
		}
	}
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	s.byID[product.ID] = cloneProduct(*product)
	return nil
}

func (s *ProductStore) Update(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[product.ID]
	if !ok || existing.IsDeleted {
		return store.ErrNotFound
	}
	if product.Barcode != "" {
		for id, p := range s.byID {
			if id != product.ID && !p.IsDeleted && p.Barcode == product.Barcode {
				return store.ErrDuplicate
			}
		}
	}
	updated := cloneProduct(*product)
	updated.CreatedAt = existing.CreatedAt
	s.byID[product.ID] = updated
	return nil
}

func (s *ProductStore) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok || p.IsDeleted {
		return store.ErrNotFound
	}
	now := time.Now()
	p.IsDeleted = true
	p.IsActive = false
	p.DeletedAt = &now
	p.Barcode = ""
	s.byID[id] = p
	return nil
}

func (s *ProductStore) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok || p.IsDeleted || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	s.byID[id] = p
	return true, nil
}

func (s *ProductStore) IncrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.byID[id]; ok {
		p.Stock += qty
		s.byID[id] = p
	}
	return nil
}
