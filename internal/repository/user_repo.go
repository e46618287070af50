package repository

import (
	"anamnese/internal/model"
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepo handles MongoDB operations for staff users
type UserRepo interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, tenantID, id string) (*model.User, error)
}

type userRepo struct {
	collection *mongo.Collection
}

// NewUserRepo creates a new user repository with indexes
func NewUserRepo(db *mongo.Database) UserRepo {
	repo := &userRepo{
		collection: db.Collection("users"),
	}
	createIndex(context.Background(), repo.collection, bson.D{{Key: "email", Value: 1}}, true)
	return repo
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	_, err := r.collection.InsertOne(ctx, user)
	return translate(err)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *userRepo) GetByID(ctx context.Context, tenantID, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id, "tenantId": tenantID})
}

func (r *userRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
