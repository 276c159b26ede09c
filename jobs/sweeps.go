package jobs

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/northmart/backend-go/services"
)

const stalePendingAge = 24 * time.Hour

// Sweeper runs the periodic maintenance passes: auto-cancelling pending
// orders that were never paid, and flagging low inventory.
type Sweeper struct {
	orders  *services.OrderService
	catalog *services.CatalogService
}

func NewSweeper(orders *services.OrderService, catalog *services.CatalogService) *Sweeper {
	return &Sweeper{orders: orders, catalog: catalog}
}

// Register attaches the low-stock check so order creation can queue one.
func (s *Sweeper) Register(w *Worker) {
	w.Handle(services.JobLowStockCheck, func(ctx context.Context, _ json.RawMessage) error {
		return s.CheckLowStock(ctx)
	})
}

// AutoCancelPending cancels pending orders older than 24 hours, restoring
// their stock through the normal cancellation path.
func (s *Sweeper) AutoCancelPending(ctx context.Context) error {
	cutoff := time.Now().Add(-stalePendingAge)
	stale, err := s.orders.StalePendingOrders(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, order := range stale {
		if err := s.orders.AutoCancel(ctx, order.ID, "Auto-cancelled due to no payment"); err != nil {
			log.Printf("failed to auto-cancel order %s: %v", order.OrderNumber, err)
			continue
		}
		log.Printf("auto-cancelled order %s", order.OrderNumber)
	}
	return nil
}

// CheckLowStock logs every active product at or under its threshold.
func (s *Sweeper) CheckLowStock(ctx context.Context) error {
	products, err := s.catalog.LowStockProducts(ctx)
	if err != nil {
		return err
	}

	for _, p := range products {
		log.Printf("low stock alert: %s (%d remaining)", p.Name, p.Stock)
	}
	return nil
}

// RunScheduled runs both sweeps on the given interval until the context
// is cancelled.
func (s *Sweeper) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper shutting down")
			return
		case <-ticker.C:
			if err := s.AutoCancelPending(ctx); err != nil {
				log.Printf("auto-cancel sweep failed: %v", err)
			}
			if err := s.CheckLowStock(ctx); err != nil {
				log.Printf("low-stock sweep failed: %v", err)
			}
		}
	}
}
