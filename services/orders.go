package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository"
	"github.com/northmart/backend-go/utils"
)

// OrderService is the order lifecycle workflow: cart to order with stock
// decrement, cancellation with stock restoration, and admin status
// transitions.
type OrderService struct {
	orders   repository.OrderRepository
	carts    repository.CartRepository
	products repository.ProductRepository
	queue    JobEnqueuer
}

func NewOrderService(orders repository.OrderRepository, carts repository.CartRepository, products repository.ProductRepository, queue JobEnqueuer) *OrderService {
	return &OrderService{orders: orders, carts: carts, products: products, queue: queue}
}

// CreateOrder converts the user's cart into an order. Stock is taken with
// conditional decrements, so two concurrent checkouts of the last unit
// cannot both succeed; a lost race rolls back any decrements already
// applied and reports the offending product.
func (s *OrderService) CreateOrder(ctx context.Context, userID primitive.ObjectID, address models.ShippingAddress, method models.PaymentMethod) (*models.Order, error) {
	if !models.ValidPaymentMethod(method) {
		return nil, utils.BadRequest("Invalid payment method")
	}

	cart, err := s.carts.GetByUser(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, utils.BadRequest("Cart is empty")
	}
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, utils.BadRequest("Cart is empty")
	}

	// First pass: re-fetch every product, verify stock, build snapshots.
	// All-or-nothing: any shortage aborts before anything is written.
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err == repository.ErrNotFound {
			return nil, utils.BadRequest(fmt.Sprintf("Product %s is no longer available", line.ProductID.Hex()))
		}
		if err != nil {
			return nil, err
		}
		if !product.InStock() || product.Stock < line.Quantity {
			return nil, utils.BadRequest(fmt.Sprintf("Product %s is out of stock", product.Name))
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Image:     product.PrimaryImage(),
		})
	}

	// Second pass: take the stock. Each decrement re-checks availability
	// in its filter; losing a race here undoes the ones already taken.
	taken := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if err := s.products.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
			s.restoreStock(ctx, taken)
			if err == repository.ErrInsufficientStock {
				return nil, utils.BadRequest(fmt.Sprintf("Product %s is out of stock", item.Name))
			}
			return nil, err
		}
		taken = append(taken, item)
	}

	now := time.Now()
	totals := models.ComputeOrderTotals(cart.TotalPrice)
	order := &models.Order{
		ID:              primitive.NewObjectID(),
		OrderNumber:     models.NewOrderNumber(now),
		UserID:          userID,
		Items:           items,
		ShippingAddress: address,
		PaymentMethod:   method,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		ShippingCost:    totals.ShippingCost,
		Discount:        totals.Discount,
		Total:           totals.Total,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.SetStatus(models.OrderStatusPending, "Order placed", now)

	if err := s.orders.Insert(ctx, order); err != nil {
		s.restoreStock(ctx, taken)
		return nil, err
	}

	// Clear the cart; the row persists, emptied. Losing this write leaves
	// a stale cart, not a broken order, so it is logged and not fatal.
	cart.Clear()
	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		log.Printf("failed to clear cart after order %s: %v", order.OrderNumber, err)
	}

	s.enqueue(ctx, JobOrderConfirmation, OrderJobPayload{
		UserID:      userID.Hex(),
		OrderID:     order.ID.Hex(),
		OrderNumber: order.OrderNumber,
	})
	s.enqueue(ctx, JobLowStockCheck, nil)

	ordersCreatedTotal.Inc()
	return order, nil
}

func (s *OrderService) restoreStock(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		if err := s.products.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("failed to restore stock for product %s: %v", item.ProductID.Hex(), err)
		}
	}
}

func (s *OrderService) enqueue(ctx context.Context, jobType string, payload interface{}) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, jobType, payload); err != nil {
		log.Printf("failed to enqueue %s job: %v", jobType, err)
	}
}

// CancelOrder cancels the caller's order and puts every item's stock
// back. Delivered, cancelled and refunded orders are past the point of
// cancellation.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID primitive.ObjectID, reason string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Order not found")
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, utils.Forbidden("Not authorized to cancel this order")
	}
	if !order.CanCancel() {
		return nil, utils.Conflict(fmt.Sprintf("Cannot cancel order with status: %s", order.Status))
	}

	s.restoreStock(ctx, order.Items)

	order.Cancel(reason, time.Now())
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	ordersCancelledTotal.Inc()
	return order, nil
}

// AutoCancel cancels a stale pending order on behalf of the sweep job.
// Same path as a user cancellation, minus the ownership check.
func (s *OrderService) AutoCancel(ctx context.Context, orderID primitive.ObjectID, reason string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.CanCancel() {
		return nil
	}

	s.restoreStock(ctx, order.Items)

	order.Cancel(reason, time.Now())
	if err := s.orders.Update(ctx, order); err != nil {
		return err
	}

	ordersCancelledTotal.Inc()
	return nil
}

// UpdateOrderStatus is the admin transition: it overwrites the status,
// appends to the history, stamps deliveredAt, and kicks off the shipment
// email when the order goes out.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, status models.OrderStatus, note string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, utils.BadRequest("Invalid order status")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Order not found")
	}
	if err != nil {
		return nil, err
	}

	order.SetStatus(status, note, time.Now())
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	// Best effort: a failed enqueue never rolls back the status change.
	if status == models.OrderStatusShipped {
		s.enqueue(ctx, JobOrderShipped, OrderJobPayload{
			UserID:      order.UserID.Hex(),
			OrderID:     order.ID.Hex(),
			OrderNumber: order.OrderNumber,
		})
	}

	return order, nil
}

// OrderList bundles a page of orders with its pagination metadata.
type OrderList struct {
	Orders     []models.Order    `json:"orders"`
	Pagination models.Pagination `json:"pagination"`
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID primitive.ObjectID, f repository.OrderFilter) (*OrderList, error) {
	normalizeOrderFilter(&f)
	orders, total, err := s.orders.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderList{Orders: orders, Pagination: models.NewPagination(total, f.Page, f.Limit)}, nil
}

func (s *OrderService) GetAllOrders(ctx context.Context, f repository.OrderFilter) (*OrderList, error) {
	normalizeOrderFilter(&f)
	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderList{Orders: orders, Pagination: models.NewPagination(total, f.Page, f.Limit)}, nil
}

func normalizeOrderFilter(f *repository.OrderFilter) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}
}

// GetOrder returns the order if it belongs to the caller.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Order not found")
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, utils.Forbidden("Not authorized to access this order")
	}
	return order, nil
}

// StalePendingOrders lists pending orders older than the cutoff for the
// auto-cancel sweep.
func (s *OrderService) StalePendingOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	return s.orders.FindStalePending(ctx, cutoff)
}
