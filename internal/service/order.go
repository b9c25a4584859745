package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"grocery-backend/internal/lock"
	"grocery-backend/internal/models"
	"grocery-backend/internal/payment"
	"grocery-backend/internal/pricing"
	"grocery-backend/internal/store"
)

//go:generate mockgen -destination=mock_gateway_test.go -package=service . PaymentGateway

// PaymentGateway opens hosted checkout sessions for online orders.
type PaymentGateway interface {
	CreateHostedCheckout(ctx context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error)
}

type StatusPolicy string

const (
	// StrictPolicy enforces the order transition table and the cash-only
	// rule of ConfirmCashPayment.
	StrictPolicy StatusPolicy = "strict"
	// PermissivePolicy writes any known status over any other and confirms
	// payment on any order.
	PermissivePolicy StatusPolicy = "permissive"
)

type OrderDeps struct {
	Orders        store.OrderStore
	Carts         store.CartStore
	Products      store.ProductStore
	Addresses     store.AddressStore
	Users         store.UserStore
	Gateway       PaymentGateway
	Notifications *NotificationService
	Locker        lock.Locker
	Policy        StatusPolicy
	Log           *zap.Logger
}

type OrderService struct {
	orders        store.OrderStore
	carts         store.CartStore
	products      store.ProductStore
	addresses     store.AddressStore
	users         store.UserStore
	gateway       PaymentGateway
	notifications *NotificationService
	locker        lock.Locker
	policy        StatusPolicy
	log           *zap.Logger
}

func NewOrderService(d OrderDeps) *OrderService {
	policy := d.Policy
	if policy != PermissivePolicy {
		policy = StrictPolicy
	}
	return &OrderService{
		orders:        d.Orders,
		carts:         d.Carts,
		products:      d.Products,
		addresses:     d.Addresses,
		users:         d.Users,
		gateway:       d.Gateway,
		notifications: d.Notifications,
		locker:        d.Locker,
		policy:        policy,
		log:           d.Log,
	}
}

type PlaceOrderInput struct {
	AddressID   primitive.ObjectID
	PaymentType models.PaymentType
	Note        string
}

type PlacedOrder struct {
	Order      models.Order
	PaymentURL string
}

func newOrderRef(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + now.Format("20060102") + "-" + strings.ToUpper(id[:12])
}

func orderLockKey(id primitive.ObjectID) string {
	return "order:" + id.Hex()
}

func (s *OrderService) withOrderLock(ctx context.Context, id primitive.ObjectID, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, orderLockKey(id))
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// PlaceOrder snapshots the caller's cart into a new order. Stock is reserved
// with conditional decrements and given back on every failure path after it.
func (s *OrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (PlacedOrder, error) {
	if !in.PaymentType.Valid() {
		return PlacedOrder{}, &ValidationError{Message: "invalid payment type", Fields: map[string]string{"paymentType": "must be cash or online"}}
	}

	address, err := s.addresses.Get(ctx, userID, in.AddressID)
	if err != nil {
		return PlacedOrder{}, storeErr("address", err)
	}

	unlock, err := s.locker.Lock(ctx, "checkout:"+userID.Hex())
	if err != nil {
		return PlacedOrder{}, err
	}
	defer unlock()

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return PlacedOrder{}, err
	}
	if len(cart.Items) == 0 {
		return PlacedOrder{}, invalid("cart is empty")
	}

	items, amount, err := s.reserve(ctx, cart)
	if err != nil {
		return PlacedOrder{}, err
	}

	now := time.Now()
	order := models.Order{
		Ref:             newOrderRef(now),
		UserID:          userID,
		Items:           items,
		Amount:          pricing.Amount(amount),
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentType:     in.PaymentType,
		DeliveryAddress: address.Snapshot(),
		Note:            strings.TrimSpace(in.Note),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.PaymentType == models.PaymentTypeCash {
		// Cash is collected on delivery, so the order goes straight to the
		// seller; payment stays pending until confirmed.
		order.Status = models.OrderStatusProcessing
	}

	if err := s.orders.Create(ctx, &order); err != nil {
		s.restoreStock(ctx, items)
		s.log.Error("create order failed", zap.String("userId", userID.Hex()), zap.Error(err))
		return PlacedOrder{}, err
	}

	placed := PlacedOrder{Order: order}
	if in.PaymentType == models.PaymentTypeOnline {
		session, err := s.openCheckout(ctx, order, address)
		if err != nil {
			s.abandon(ctx, order)
			return PlacedOrder{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		ref, url := session.Ref, session.URL
		updated, err := s.orders.Update(ctx, order.ID, models.OrderPatch{PaymentRef: &ref, PaymentURL: &url})
		if err != nil {
			return PlacedOrder{}, err
		}
		placed.Order = updated
		placed.PaymentURL = session.URL
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.log.Warn("clear cart after order failed", zap.String("userId", userID.Hex()), zap.Error(err))
	}

	s.log.Info("order placed",
		zap.String("orderId", order.ID.Hex()),
		zap.String("ref", order.Ref),
		zap.String("paymentType", string(order.PaymentType)),
		zap.Float64("amount", order.Amount),
	)
	s.notifications.Dispatch(ctx, models.AdminRecipient, order.ID,
		fmt.Sprintf("New order %s (%s, %.2f)", order.Ref, order.PaymentType, order.Amount),
		models.NotificationNewOrder)

	return placed, nil
}

// reserve prices every cart line from the live product and decrements its
// stock. On failure the stock taken so far is restored.
func (s *OrderService) reserve(ctx context.Context, cart models.Cart) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	total := decimal.Zero
	for _, line := range cart.Items {
		product, ok := byID[line.ProductID]
		if !ok || !product.Purchasable() {
			s.restoreStock(ctx, items)
			return nil, decimal.Zero, &ValidationError{
				Message: "product unavailable",
				Fields:  map[string]string{line.ProductID.Hex(): "no longer available"},
			}
		}

		taken, err := s.products.DecrementStock(ctx, product.ID, line.Quantity)
		if err != nil {
			s.restoreStock(ctx, items)
			return nil, decimal.Zero, err
		}
		if !taken {
			s.restoreStock(ctx, items)
			return nil, decimal.Zero, &ValidationError{
				Message: "insufficient stock",
				Fields:  map[string]string{product.ID.Hex(): fmt.Sprintf("only %d available", product.Stock)},
			}
		}

		unit := pricing.EffectivePrice(product.Price, product.SaleEnabled, product.SalePrice)
		subtotal := pricing.Line(unit, line.Quantity)
		total = total.Add(subtotal)
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     unit,
			Quantity:  line.Quantity,
			ImagePath: product.ImagePath,
			Subtotal:  pricing.Amount(subtotal),
		})
	}
	return items, total, nil
}

// reserveItems takes the stock of already priced items again, all or
// nothing.
func (s *OrderService) reserveItems(ctx context.Context, items []models.OrderItem) error {
	for i, item := range items {
		taken, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err == nil && !taken {
			err = conflict("not enough stock of %s to reopen the order", item.Name)
		}
		if err != nil {
			s.restoreStock(ctx, items[:i])
			return err
		}
	}
	return nil
}

func (s *OrderService) restoreStock(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Error("restore stock failed",
				zap.String("productId", item.ProductID.Hex()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
}

func (s *OrderService) openCheckout(ctx context.Context, order models.Order, address models.Address) (payment.CheckoutSession, error) {
	if s.gateway == nil {
		return payment.CheckoutSession{}, payment.ErrNotConfigured
	}

	customer := payment.Customer{
		Phone:    address.Phone,
		Line1:    address.Street,
		Line2:    address.District,
		City:     address.City,
		Region:   address.District,
		Postcode: address.PostalCode,
	}
	if user, err := s.users.Get(ctx, order.UserID); err == nil {
		customer.Name = user.Name
		customer.Email = user.Email
		if customer.Phone == "" {
			customer.Phone = user.Phone
		}
	}

	return s.gateway.CreateHostedCheckout(ctx, payment.CheckoutRequest{
		CartID:      order.Ref,
		Amount:      order.Amount,
		Description: "Order " + order.Ref,
		Customer:    customer,
	})
}

// abandon compensates an online order whose checkout session could not be
// opened: the order is closed as cancelled/failed and its stock returned.
// The cart is left intact so the customer can retry.
func (s *OrderService) abandon(ctx context.Context, order models.Order) {
	status, paid := models.OrderStatusCancelled, models.PaymentStatusFailed
	if _, err := s.orders.Update(ctx, order.ID, models.OrderPatch{Status: &status, PaymentStatus: &paid}); err != nil {
		s.log.Error("mark abandoned order failed", zap.String("orderId", order.ID.Hex()), zap.Error(err))
	}
	s.restoreStock(ctx, order.Items)
	s.log.Warn("checkout session failed, order cancelled", zap.String("orderId", order.ID.Hex()), zap.String("ref", order.Ref))
}

// GetOrder hides other customers' orders behind ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, who Principal, orderID primitive.ObjectID) (models.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, storeErr("order", err)
	}
	if !who.Staff() && order.UserID != who.UserID {
		return models.Order{}, notFound("order")
	}
	return order, nil
}

// ListOrders restricts customers to their own orders.
func (s *OrderService) ListOrders(ctx context.Context, who Principal, filter models.OrderFilter) ([]models.Order, int64, error) {
	fe := fieldErrors{}
	if filter.Status != "" && !filter.Status.Valid() {
		fe["status"] = "unknown status"
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		fe["paymentStatus"] = "unknown payment status"
	}
	if err := fe.err("invalid filter"); err != nil {
		return nil, 0, err
	}

	if !who.Staff() {
		userID := who.UserID
		filter.UserID = &userID
	}
	return s.orders.List(ctx, filter)
}

func (s *OrderService) allowTransition(from, to models.OrderStatus) error {
	if s.policy == PermissivePolicy {
		return nil
	}
	if !models.CanTransition(from, to) {
		return conflict("cannot move order from %s to %s", from, to)
	}
	return nil
}

// UpdateStatus is the seller/admin status change.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, &ValidationError{Message: "invalid status", Fields: map[string]string{"status": "unknown status"}}
	}

	var updated models.Order
	err := s.withOrderLock(ctx, orderID, func() error {
		order, err := s.orders.Get(ctx, orderID)
		if err != nil {
			return storeErr("order", err)
		}
		if err := s.allowTransition(order.Status, status); err != nil {
			return err
		}
		updated, err = s.setStatus(ctx, order, status)
		return err
	})
	if err != nil {
		return models.Order{}, err
	}

	s.notifications.Dispatch(ctx, updated.UserID.Hex(), updated.ID,
		fmt.Sprintf("Your order %s is now %s", updated.Ref, updated.Status),
		models.NotificationStatusUpdate)
	return updated, nil
}

// CancelOrder lets a customer cancel their own order. The transition table
// always applies here, whatever the admin policy.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID primitive.ObjectID) (models.Order, error) {
	var updated models.Order
	err := s.withOrderLock(ctx, orderID, func() error {
		order, err := s.orders.Get(ctx, orderID)
		if err != nil {
			return storeErr("order", err)
		}
		if order.UserID != userID {
			return notFound("order")
		}
		if !models.CanTransition(order.Status, models.OrderStatusCancelled) {
			return conflict("order in status %s can no longer be cancelled", order.Status)
		}
		updated, err = s.setStatus(ctx, order, models.OrderStatusCancelled)
		return err
	})
	if err != nil {
		return models.Order{}, err
	}

	s.notifications.Dispatch(ctx, models.AdminRecipient, updated.ID,
		fmt.Sprintf("Order %s was cancelled by the customer", updated.Ref),
		models.NotificationStatusUpdate)
	return updated, nil
}

// setStatus writes the status. A non-cancelled order holds its stock: it is
// given back on cancel and taken again when the permissive policy reopens a
// cancelled order. Cancelling an unpaid order fails its payment so a late
// gateway approval cannot complete it. Callers hold the order lock.
func (s *OrderService) setStatus(ctx context.Context, order models.Order, status models.OrderStatus) (models.Order, error) {
	cancelling := status == models.OrderStatusCancelled && order.Status != models.OrderStatusCancelled
	reopening := order.Status == models.OrderStatusCancelled && status != models.OrderStatusCancelled

	if reopening {
		if err := s.reserveItems(ctx, order.Items); err != nil {
			return models.Order{}, err
		}
	}

	patch := models.OrderPatch{Status: &status}
	if cancelling && order.PaymentStatus == models.PaymentStatusPending {
		failed := models.PaymentStatusFailed
		patch.PaymentStatus = &failed
	}
	updated, err := s.orders.Update(ctx, order.ID, patch)
	if err != nil {
		if reopening {
			s.restoreStock(ctx, order.Items)
		}
		return models.Order{}, storeErr("order", err)
	}
	if cancelling {
		s.restoreStock(ctx, order.Items)
	}
	s.log.Info("order status changed",
		zap.String("orderId", order.ID.Hex()),
		zap.String("from", string(order.Status)),
		zap.String("to", string(status)),
	)
	return updated, nil
}

// ConfirmCashPayment marks the payment of a cash-on-delivery order as
// collected.
func (s *OrderService) ConfirmCashPayment(ctx context.Context, orderID primitive.ObjectID) (models.Order, error) {
	var updated models.Order
	err := s.withOrderLock(ctx, orderID, func() error {
		order, err := s.orders.Get(ctx, orderID)
		if err != nil {
			return storeErr("order", err)
		}
		if s.policy == StrictPolicy {
			switch {
			case order.PaymentType != models.PaymentTypeCash:
				return conflict("order %s is not a cash order", order.Ref)
			case order.PaymentStatus == models.PaymentStatusCompleted:
				return conflict("payment of order %s is already completed", order.Ref)
			case order.Status == models.OrderStatusCancelled:
				return conflict("order %s is cancelled", order.Ref)
			}
		}

		completed := models.PaymentStatusCompleted
		updated, err = s.orders.Update(ctx, orderID, models.OrderPatch{PaymentStatus: &completed})
		return storeErr("order", err)
	})
	if err != nil {
		return models.Order{}, err
	}

	s.log.Info("cash payment confirmed", zap.String("orderId", updated.ID.Hex()), zap.String("paymentType", string(updated.PaymentType)))
	s.notifications.Dispatch(ctx, updated.UserID.Hex(), updated.ID,
		fmt.Sprintf("Payment for order %s was received", updated.Ref),
		models.NotificationPaymentUpdate)
	return updated, nil
}

type WebhookOutcome struct {
	Order models.Order
	// Applied is false for replays and for non-final gateway statuses.
	Applied bool
	// RefundRequired marks an approval that reached an already cancelled
	// order. The order is left as it is.
	RefundRequired bool
}

// checkPaidAmount logs callbacks whose amount differs from the order total.
func (s *OrderService) checkPaidAmount(order models.Order, result payment.WebhookResult) {
	if result.Amount == "" {
		return
	}
	paid, err := decimal.NewFromString(result.Amount)
	if err == nil && paid.Equal(decimal.NewFromFloat(order.Amount).Round(2)) {
		return
	}
	s.log.Warn("payment amount mismatch",
		zap.String("orderId", order.ID.Hex()),
		zap.Float64("expected", order.Amount),
		zap.String("paid", result.Amount),
		zap.String("currency", result.Currency),
	)
}

func (s *OrderService) findForWebhook(ctx context.Context, result payment.WebhookResult) (models.Order, error) {
	order, err := s.orders.GetByRef(ctx, result.CartID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, store.ErrNotFound) || result.TransactionRef == "" {
		return models.Order{}, storeErr("order", err)
	}
	order, err = s.orders.GetByPaymentRef(ctx, result.TransactionRef)
	return order, storeErr("order", err)
}

// HandlePaymentWebhook applies a gateway result to the matching order. Only
// orders whose payment is still pending are changed, so redelivered
// callbacks are harmless.
func (s *OrderService) HandlePaymentWebhook(ctx context.Context, result payment.WebhookResult) (WebhookOutcome, error) {
	found, err := s.findForWebhook(ctx, result)
	if err != nil {
		return WebhookOutcome{}, err
	}

	var out WebhookOutcome
	err = s.withOrderLock(ctx, found.ID, func() error {
		order, err := s.orders.Get(ctx, found.ID)
		if err != nil {
			return storeErr("order", err)
		}
		out.Order = order
		if result.Outcome == payment.OutcomeApproved && order.Status == models.OrderStatusCancelled &&
			order.PaymentStatus != models.PaymentStatusCompleted {
			out.RefundRequired = true
			return nil
		}
		if order.PaymentStatus != models.PaymentStatusPending || result.Outcome == payment.OutcomePending {
			return nil
		}
		if result.Outcome == payment.OutcomeApproved {
			s.checkPaidAmount(order, result)
		}

		patch := models.OrderPatch{}
		switch result.Outcome {
		case payment.OutcomeApproved:
			completed := models.PaymentStatusCompleted
			patch.PaymentStatus = &completed
			if order.Status == models.OrderStatusPending {
				processing := models.OrderStatusProcessing
				patch.Status = &processing
			}
		case payment.OutcomeDeclined:
			failed := models.PaymentStatusFailed
			patch.PaymentStatus = &failed
			if !order.Status.Terminal() {
				cancelled := models.OrderStatusCancelled
				patch.Status = &cancelled
			}
		}
		if result.TransactionRef != "" && order.PaymentRef == "" {
			ref := result.TransactionRef
			patch.PaymentRef = &ref
		}

		updated, err := s.orders.Update(ctx, order.ID, patch)
		if err != nil {
			return storeErr("order", err)
		}
		if patch.Status != nil && *patch.Status == models.OrderStatusCancelled {
			s.restoreStock(ctx, order.Items)
		}
		out = WebhookOutcome{Order: updated, Applied: true}
		return nil
	})
	if err != nil {
		return WebhookOutcome{}, err
	}

	s.log.Info("payment webhook handled",
		zap.String("orderId", out.Order.ID.Hex()),
		zap.String("type", result.Type),
		zap.String("outcome", result.Outcome.String()),
		zap.Bool("applied", out.Applied),
	)
	if out.RefundRequired {
		s.log.Error("payment approved for a cancelled order",
			zap.String("orderId", out.Order.ID.Hex()),
			zap.String("ref", out.Order.Ref),
			zap.String("tranRef", result.TransactionRef),
			zap.String("amount", result.Amount),
		)
		s.notifications.Dispatch(ctx, models.AdminRecipient, out.Order.ID,
			fmt.Sprintf("Payment %s arrived for cancelled order %s; refund required", result.TransactionRef, out.Order.Ref),
			models.NotificationPaymentUpdate)
	}
	if out.Applied {
		msg := fmt.Sprintf("Payment for order %s %s", out.Order.Ref, out.Order.PaymentStatus)
		s.notifications.Dispatch(ctx, models.AdminRecipient, out.Order.ID, msg, models.NotificationPaymentUpdate)
		s.notifications.Dispatch(ctx, out.Order.UserID.Hex(), out.Order.ID, msg, models.NotificationPaymentUpdate)
	}
	return out, nil
}

func (s *OrderService) Statistics(ctx context.Context) (models.OrderStatistics, error) {
	return s.orders.Statistics(ctx)
}

func (s *OrderService) Delete(ctx context.Context, orderID primitive.ObjectID) error {
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return storeErr("order", err)
	}
	s.log.Info("order deleted", zap.String("orderId", orderID.Hex()))
	return nil
}
