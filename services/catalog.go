package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository"
	"github.com/northmart/backend-go/utils"
)

// CatalogService owns the product catalog: listings, reviews, rating
// aggregation and the stock adjustments the order workflow relies on.
type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// ProductList bundles a page of products with its pagination metadata.
type ProductList struct {
	Products   []models.Product  `json:"products"`
	Pagination models.Pagination `json:"pagination"`
}

func (s *CatalogService) ListProducts(ctx context.Context, f repository.ProductFilter) (*ProductList, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}

	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}

	return &ProductList{
		Products:   products,
		Pagination: models.NewPagination(total, f.Page, f.Limit),
	}, nil
}

func (s *CatalogService) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	products, err := s.products.Featured(ctx, limit)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err == repository.ErrNotFound {
		return nil, utils.NotFound("Product not found")
	}
	return product, err
}

func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.Name == "" {
		return utils.BadRequest("Product name is required")
	}
	if product.Price < 0 {
		return utils.BadRequest("Price cannot be negative")
	}
	if product.Stock < 0 {
		return utils.BadRequest("Stock cannot be negative")
	}
	if !models.ValidCategory(product.Category) {
		return utils.BadRequest("Invalid product category")
	}

	now := time.Now()
	product.ID = primitive.NewObjectID()
	product.IsActive = true
	if product.LowStockThreshold == 0 {
		product.LowStockThreshold = 10
	}
	product.Reviews = []models.Review{}
	product.CreatedAt = now
	product.UpdatedAt = now

	return s.products.Insert(ctx, product)
}

// ProductUpdate carries the mutable product fields; nil means unchanged.
type ProductUpdate struct {
	Name              *string                 `json:"name"`
	Description       *string                 `json:"description"`
	Price             *float64                `json:"price"`
	ComparePrice      *float64                `json:"comparePrice"`
	Category          *models.ProductCategory `json:"category"`
	Images            []models.ProductImage   `json:"images"`
	Stock             *int                    `json:"stock"`
	LowStockThreshold *int                    `json:"lowStockThreshold"`
	IsFeatured        *bool                   `json:"isFeatured"`
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id primitive.ObjectID, upd ProductUpdate) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		product.Name = *upd.Name
	}
	if upd.Description != nil {
		product.Description = *upd.Description
	}
	if upd.Price != nil {
		if *upd.Price < 0 {
			return nil, utils.BadRequest("Price cannot be negative")
		}
		product.Price = *upd.Price
	}
	if upd.ComparePrice != nil {
		product.ComparePrice = *upd.ComparePrice
	}
	if upd.Category != nil {
		if !models.ValidCategory(*upd.Category) {
			return nil, utils.BadRequest("Invalid product category")
		}
		product.Category = *upd.Category
	}
	if upd.Images != nil {
		product.Images = upd.Images
	}
	if upd.Stock != nil {
		if *upd.Stock < 0 {
			return nil, utils.BadRequest("Stock cannot be negative")
		}
		product.Stock = *upd.Stock
	}
	if upd.LowStockThreshold != nil {
		product.LowStockThreshold = *upd.LowStockThreshold
	}
	if upd.IsFeatured != nil {
		product.IsFeatured = *upd.IsFeatured
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct soft-deletes: the document survives so carts and order
// snapshots keep resolving, it just stops being sellable.
func (s *CatalogService) DeleteProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.IsActive = false
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) AddReview(ctx context.Context, productID, userID primitive.ObjectID, rating int, comment string) (*models.Product, error) {
	if rating < 1 || rating > 5 {
		return nil, utils.BadRequest("Rating must be between 1 and 5")
	}

	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if product.HasReviewBy(userID) {
		return nil, utils.BadRequest("You have already reviewed this product")
	}

	product.AddReview(models.Review{
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	})

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// AdjustStock applies a stock delta for admin corrections. The order
// workflow calls the repository directly so its decrements stay
// conditional.
func (s *CatalogService) AdjustStock(ctx context.Context, productID primitive.ObjectID, delta int) (*models.Product, error) {
	err := s.products.AdjustStock(ctx, productID, delta)
	switch err {
	case nil:
	case repository.ErrNotFound:
		return nil, utils.NotFound("Product not found")
	case repository.ErrInsufficientStock:
		return nil, utils.BadRequest("Insufficient stock")
	default:
		return nil, err
	}
	return s.GetProduct(ctx, productID)
}

func (s *CatalogService) LowStockProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.FindLowStock(ctx)
}
