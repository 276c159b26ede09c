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

type OrderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{collection: db.Collection("orders")}
}

func (r *OrderRepo) Insert(ctx context.Context, o *models.Order) error {
	_, err := r.collection.InsertOne(ctx, o)
	return err
}

func (r *OrderRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) Update(ctx context.Context, o *models.Order) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, f repository.OrderFilter) ([]models.Order, int64, error) {
	query := bson.M{"userId": userID}
	if f.Status != "" {
		query["status"] = f.Status
	}
	return r.list(ctx, query, f)
}

func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]models.Order, int64, error) {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	}
	return r.list(ctx, query, f)
}

func (r *OrderRepo) list(ctx context.Context, query bson.M, f repository.OrderFilter) ([]models.Order, int64, error) {
	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderRepo) FindStalePending(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	query := bson.M{
		"status":    models.OrderStatusPending,
		"createdAt": bson.M{"$lt": cutoff},
	}

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
