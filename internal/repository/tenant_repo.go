package repository

import (
	"anamnese/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TenantRepo handles MongoDB operations for tenants
type TenantRepo interface {
	Upsert(ctx context.Context, tenant *model.Tenant) error
	GetByID(ctx context.Context, id string) (*model.Tenant, error)
}

type tenantRepo struct {
	collection *mongo.Collection
}

// NewTenantRepo creates a new tenant repository
func NewTenantRepo(db *mongo.Database) TenantRepo {
	return &tenantRepo{
		collection: db.Collection("tenants"),
	}
}

func (r *tenantRepo) Upsert(ctx context.Context, tenant *model.Tenant) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": tenant.ID}, tenant, opts)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tenant)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
