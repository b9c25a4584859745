package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"grocery-backend/internal/models"
	"grocery-backend/internal/pricing"
	"grocery-backend/internal/store"
)

// CartService keeps carts as bare product/quantity pairs; prices always come
// from the live product record when the cart is read.
type CartService struct {
	carts    store.CartStore
	products store.ProductStore
	log      *zap.Logger
}

func NewCartService(carts store.CartStore, products store.ProductStore, log *zap.Logger) *CartService {
	return &CartService{carts: carts, products: products, log: log}
}

func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (models.CartView, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	return s.view(ctx, cart)
}

func (s *CartService) Add(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (models.CartView, error) {
	if quantity < 1 {
		return models.CartView{}, &ValidationError{Message: "invalid quantity", Fields: map[string]string{"quantity": "must be at least 1"}}
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}

	wanted := quantity
	idx := cart.IndexOf(productID)
	if idx >= 0 {
		wanted += cart.Items[idx].Quantity
	}
	if err := s.checkAvailable(ctx, productID, wanted); err != nil {
		return models.CartView{}, err
	}

	if idx >= 0 {
		cart.Items[idx].Quantity = wanted
	} else {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}
	return s.save(ctx, &cart)
}

func (s *CartService) Remove(ctx context.Context, userID, productID primitive.ObjectID) (models.CartView, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	idx := cart.IndexOf(productID)
	if idx < 0 {
		return models.CartView{}, notFound("cart item")
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	return s.save(ctx, &cart)
}

// SetQuantity replaces the line quantity; zero or less removes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (models.CartView, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}

	idx := cart.IndexOf(productID)
	if quantity <= 0 {
		if idx < 0 {
			return s.view(ctx, cart)
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		return s.save(ctx, &cart)
	}

	if err := s.checkAvailable(ctx, productID, quantity); err != nil {
		return models.CartView{}, err
	}
	if idx >= 0 {
		cart.Items[idx].Quantity = quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}
	return s.save(ctx, &cart)
}

func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	return s.carts.Clear(ctx, userID)
}

func (s *CartService) checkAvailable(ctx context.Context, productID primitive.ObjectID, quantity int) error {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return storeErr("product", err)
	}
	if !product.Purchasable() {
		return notFound("product")
	}
	if product.Stock < quantity {
		return &ValidationError{
			Message: "insufficient stock",
			Fields:  map[string]string{"quantity": fmt.Sprintf("only %d available", product.Stock)},
		}
	}
	return nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (models.CartView, error) {
	cart.UpdatedAt = time.Now()
	if err := s.carts.Save(ctx, cart); err != nil {
		s.log.Error("save cart failed", zap.String("userId", cart.UserID.Hex()), zap.Error(err))
		return models.CartView{}, err
	}
	return s.view(ctx, *cart)
}

// view prices the cart from the live products. Lines whose product was
// deleted or deactivated are left out.
func (s *CartService) view(ctx context.Context, cart models.Cart) (models.CartView, error) {
	view := models.CartView{Lines: make([]models.CartLine, 0, len(cart.Items))}
	if len(cart.Items) == 0 {
		return view, nil
	}

	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return models.CartView{}, err
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	total := decimal.Zero
	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		if !ok || !product.Purchasable() {
			continue
		}
		unit := pricing.EffectivePrice(product.Price, product.SaleEnabled, product.SalePrice)
		subtotal := pricing.Line(unit, item.Quantity)
		total = total.Add(subtotal)

		view.Lines = append(view.Lines, models.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			ImagePath: product.ImagePath,
			UnitPrice: unit,
			Quantity:  item.Quantity,
			Subtotal:  pricing.Amount(subtotal),
			InStock:   product.Stock >= item.Quantity,
		})
		view.TotalQuantity += item.Quantity
	}
	view.Total = pricing.Amount(total)
	return view, nil
}
