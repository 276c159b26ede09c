package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository"
)

type PaymentRepo struct {
	collection *mongo.Collection
}

func NewPaymentRepo(db *mongo.Database) *PaymentRepo {
	return &PaymentRepo{collection: db.Collection("payments")}
}

func (r *PaymentRepo) Insert(ctx context.Context, p *models.Payment) error {
	_, err := r.collection.InsertOne(ctx, p)
	return err
}

func (r *PaymentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *PaymentRepo) GetByOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"orderId": orderID})
}

func (r *PaymentRepo) GetByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"paymentIntentId": intentID})
}

func (r *PaymentRepo) findOne(ctx context.Context, query bson.M) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, query).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepo) Update(ctx context.Context, p *models.Payment) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
