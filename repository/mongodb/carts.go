package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/repository"
)

type CartRepo struct {
	collection *mongo.Collection
}

func NewCartRepo(db *mongo.Database) *CartRepo {
	return &CartRepo{collection: db.Collection("carts")}
}

func (r *CartRepo) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *CartRepo) Save(ctx context.Context, cart *models.Cart) error {
	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"userId": cart.UserID},
		cart,
		options.Replace().SetUpsert(true),
	)
	return err
}
