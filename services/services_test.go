package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository/memory"
)

// captureQueue records enqueued jobs instead of touching Redis.
type captureQueue struct {
	mu   sync.Mutex
	jobs []capturedJob
}

type capturedJob struct {
	Type    string
	Payload interface{}
}

func (q *captureQueue) Enqueue(_ context.Context, jobType string, payload interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, capturedJob{Type: jobType, Payload: payload})
	return nil
}

func (q *captureQueue) ofType(jobType string) []capturedJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []capturedJob
	for _, j := range q.jobs {
		if j.Type == jobType {
			out = append(out, j)
		}
	}
	return out
}

func seedProduct(t *testing.T, store *memory.Store, name string, price float64, stock int) *models.Product {
	t.Helper()
	now := time.Now()
	product := &models.Product{
		ID:                primitive.NewObjectID(),
		Name:              name,
		Description:       name,
		Price:             price,
		Category:          models.CategoryOther,
		Stock:             stock,
		LowStockThreshold: 10,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, store.Products().Insert(context.Background(), product))
	return product
}

func seedCart(t *testing.T, store *memory.Store, userID primitive.ObjectID, lines ...models.CartItem) *models.Cart {
	t.Helper()
	cart := models.NewCart(userID)
	cart.Items = lines
	cart.Recalculate()
	require.NoError(t, store.Carts().Save(context.Background(), cart))
	return cart
}

func cartLine(product *models.Product, quantity int) models.CartItem {
	return models.CartItem{
		ID:        primitive.NewObjectID(),
		ProductID: product.ID,
		Quantity:  quantity,
		Price:     product.Price,
	}
}

func testAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Street:  "1 Main St",
		City:    "Springfield",
		State:   "IL",
		Country: "US",
		ZipCode: "62704",
	}
}
