// Package mongodb implements the repository contracts on the official
// MongoDB driver. One collection per aggregate; single-document updates
// only, so every write is atomic at the document level.
package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository"
)

type ProductRepo struct {
	collection *mongo.Collection
}

func NewProductRepo(db *mongo.Database) *ProductRepo {
	return &ProductRepo{collection: db.Collection("products")}
}

func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]models.Product, int64, error) {
	query := bson.M{}
	if !f.IncludeAll {
		query["isActive"] = true
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.MinPrice > 0 || f.MaxPrice > 0 {
		price := bson.M{}
		if f.MinPrice > 0 {
			price["$gte"] = f.MinPrice
		}
		if f.MaxPrice > 0 {
			price["$lte"] = f.MaxPrice
		}
		query["price"] = price
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: f.Search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(sortSpec(f.SortBy)).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func sortSpec(sortBy string) bson.D {
	switch sortBy {
	case "price":
		return bson.D{{Key: "price", Value: 1}}
	case "-price":
		return bson.D{{Key: "price", Value: -1}}
	case "createdAt":
		return bson.D{{Key: "createdAt", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

func (r *ProductRepo) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"isFeatured": true, "isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepo) Insert(ctx context.Context, p *models.Product) error {
	_, err := r.collection.InsertOne(ctx, p)
	return err
}

func (r *ProductRepo) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		// Conditional decrement: the filter re-checks stock so two
		// concurrent orders can never drive it negative.
		filter["stock"] = bson.M{"$gte": -delta}
	}

	update := bson.M{
		"$inc": bson.M{"stock": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if delta < 0 {
			return repository.ErrInsufficientStock
		}
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) FindLowStock(ctx context.Context) ([]models.Product, error) {
	query := bson.M{
		"isActive": true,
		"stock":    bson.M{"$gt": 0},
		"$expr":    bson.M{"$lte": bson.A{"$stock", "$lowStockThreshold"}},
	}

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
