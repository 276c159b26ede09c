package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository"
	"github.com/northmart/backend-go/utils"
)

// CartService owns per-user carts. Totals are recomputed through
// Cart.Recalculate before every save; nothing relies on persistence-side
// hooks.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// GetCart returns the user's cart, creating an empty one on first use.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err == repository.ErrNotFound {
		cart = models.NewCart(userID)
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}
	return cart, err
}

// AddToCart merges the product into the cart, checking requested quantity
// against stock including what the cart already holds.
func (s *CartService) AddToCart(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, utils.BadRequest("Quantity must be at least 1")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, utils.BadRequest("Product is not available")
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if existing := cart.ItemFor(productID); existing != nil {
		if product.Stock < existing.Quantity+quantity {
			return nil, utils.BadRequest("Insufficient stock")
		}
		existing.Quantity += quantity
	} else {
		if product.Stock < quantity {
			return nil, utils.BadRequest("Insufficient stock")
		}
		cart.Items = append(cart.Items, models.CartItem{
			ID:        primitive.NewObjectID(),
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
		})
	}

	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) UpdateCartItem(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, utils.BadRequest("Quantity must be at least 1")
	}

	cart, err := s.carts.GetByUser(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Cart not found")
	}
	if err != nil {
		return nil, err
	}

	item := cart.Item(itemID)
	if item == nil {
		return nil, utils.NotFound("Item not found in cart")
	}

	product, err := s.products.GetByID(ctx, item.ProductID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, utils.BadRequest("Insufficient stock")
	}

	item.Quantity = quantity
	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, itemID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Cart not found")
	}
	if err != nil {
		return nil, err
	}

	if !cart.RemoveItem(itemID) {
		return nil, utils.NotFound("Item not found in cart")
	}

	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart empties the cart; the cart row itself stays around.
func (s *CartService) ClearCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Cart not found")
	}
	if err != nil {
		return nil, err
	}

	cart.Clear()
	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SyncCartPrices refreshes line-item price snapshots to current catalog
// prices, e.g. before rendering the checkout page.
func (s *CartService) SyncCartPrices(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Cart not found")
	}
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		product, err := s.products.GetByID(ctx, cart.Items[i].ProductID)
		if err != nil {
			continue
		}
		cart.Items[i].Price = product.Price
	}

	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
