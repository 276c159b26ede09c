// Package memory is an in-memory implementation of the repository
// contracts. It backs unit tests and local development without a running
// MongoDB. All methods copy on read so callers never alias stored state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository"
)

type Store struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]models.Product
	carts    map[primitive.ObjectID]models.Cart // keyed by user id
	orders   map[primitive.ObjectID]models.Order
	payments map[primitive.ObjectID]models.Payment
	users    map[primitive.ObjectID]models.User
}

func NewStore() *Store {
	return &Store{
		products: make(map[primitive.ObjectID]models.Product),
		carts:    make(map[primitive.ObjectID]models.Cart),
		orders:   make(map[primitive.ObjectID]models.Order),
		payments: make(map[primitive.ObjectID]models.Payment),
		users:    make(map[primitive.ObjectID]models.User),
	}
}

func (s *Store) Products() repository.ProductRepository { return (*productRepo)(s) }
func (s *Store) Carts() repository.CartRepository       { return (*cartRepo)(s) }
func (s *Store) Orders() repository.OrderRepository     { return (*orderRepo)(s) }
func (s *Store) Payments() repository.PaymentRepository { return (*paymentRepo)(s) }
func (s *Store) Users() repository.UserRepository       { return (*userRepo)(s) }

type productRepo Store

func (r *productRepo) List(_ context.Context, f repository.ProductFilter) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Product
	for _, p := range r.products {
		if !f.IncludeAll && !p.IsActive {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MinPrice > 0 && p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Name), needle) &&
				!strings.Contains(strings.ToLower(p.Description), needle) {
				continue
			}
		}
		matched = append(matched, p)
	}

	switch f.SortBy {
	case "price":
		sort.Slice(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case "-price":
		sort.Slice(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	case "createdAt":
		sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	default:
		sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	}

	total := int64(len(matched))
	return pageSlice(matched, f.Page, f.Limit), total, nil
}

func (r *productRepo) Featured(_ context.Context, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Product
	for _, p := range r.products {
		if p.IsFeatured && p.IsActive {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *productRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r *productRepo) Insert(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *productRepo) Update(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	r.products[p.ID] = *p
	return nil
}

func (r *productRepo) AdjustStock(_ context.Context, id primitive.ObjectID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if delta < 0 && p.Stock < -delta {
		return repository.ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = time.Now()
	r.products[id] = p
	return nil
}

func (r *productRepo) FindLowStock(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Product
	for _, p := range r.products {
		if p.IsActive && p.LowStock() {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

type cartRepo Store

func (r *cartRepo) GetByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp, nil
}

func (r *cartRepo) Save(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *cart
	cp.Items = append([]models.CartItem(nil), cart.Items...)
	r.carts[cart.UserID] = cp
	return nil
}

type orderRepo Store

func (r *orderRepo) Insert(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := copyOrder(&o)
	return &cp, nil
}

func (r *orderRepo) Update(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID]; !ok {
		return repository.ErrNotFound
	}
	r.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *orderRepo) ListByUser(_ context.Context, userID primitive.ObjectID, f repository.OrderFilter) ([]models.Order, int64, error) {
	return r.listWhere(func(o models.Order) bool {
		return o.UserID == userID && (f.Status == "" || o.Status == f.Status)
	}, f)
}

func (r *orderRepo) List(_ context.Context, f repository.OrderFilter) ([]models.Order, int64, error) {
	return r.listWhere(func(o models.Order) bool {
		return f.Status == "" || o.Status == f.Status
	}, f)
}

func (r *orderRepo) listWhere(match func(models.Order) bool, f repository.OrderFilter) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Order
	for _, o := range r.orders {
		if match(o) {
			matched = append(matched, copyOrder(&o))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	return pageSlice(matched, f.Page, f.Limit), total, nil
}

func (r *orderRepo) FindStalePending(_ context.Context, cutoff time.Time) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Order
	for _, o := range r.orders {
		if o.Status == models.OrderStatusPending && o.CreatedAt.Before(cutoff) {
			matched = append(matched, copyOrder(&o))
		}
	}
	return matched, nil
}

func copyOrder(o *models.Order) models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	cp.StatusHistory = append([]models.StatusEntry(nil), o.StatusHistory...)
	return cp
}

type paymentRepo Store

func (r *paymentRepo) Insert(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.ID] = *p
	return nil
}

func (r *paymentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Payment, error) {
	return r.findWhere(func(p models.Payment) bool { return p.ID == id })
}

func (r *paymentRepo) GetByOrder(_ context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	return r.findWhere(func(p models.Payment) bool { return p.OrderID == orderID })
}

func (r *paymentRepo) GetByIntentID(_ context.Context, intentID string) (*models.Payment, error) {
	return r.findWhere(func(p models.Payment) bool { return p.PaymentIntentID == intentID })
}

func (r *paymentRepo) findWhere(match func(models.Payment) bool) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.payments {
		if match(p) {
			cp := p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *paymentRepo) Update(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.payments[p.ID] = *p
	return nil
}

type userRepo Store

func (r *userRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) Insert(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func pageSlice[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
