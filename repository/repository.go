// Package repository defines the persistence contracts the services are
// built against. Production runs on the MongoDB implementation; tests run
// on the in-memory one.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/models"
)

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned when a conditional stock decrement
	// finds less inventory than requested.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductFilter narrows and pages a catalog listing.
type ProductFilter struct {
	Category    models.ProductCategory
	MinPrice    float64
	MaxPrice    float64
	Search      string
	SortBy      string // "price", "-price", "createdAt", "-createdAt"
	IncludeAll  bool   // admin listing: include inactive products
	Page        int
	Limit       int
}

// OrderFilter narrows and pages an order listing.
type OrderFilter struct {
	Status models.OrderStatus
	Page   int
	Limit  int
}

type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	// AdjustStock atomically applies a stock delta. A negative delta only
	// succeeds when the document still holds at least -delta units; a lost
	// race yields ErrInsufficientStock, never negative stock.
	AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error
	FindLowStock(ctx context.Context) ([]models.Product, error)
}

type CartRepository interface {
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
}

type OrderRepository interface {
	Insert(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Update(ctx context.Context, o *models.Order) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, f OrderFilter) ([]models.Order, int64, error)
	List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error)
	// FindStalePending returns pending orders created before the cutoff,
	// feeding the auto-cancel sweep.
	FindStalePending(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type PaymentRepository interface {
	Insert(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	GetByOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
}
