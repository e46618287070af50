package repository

import (
	"anamnese/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TemplateRepo handles MongoDB operations for template versions
type TemplateRepo interface {
	Create(ctx context.Context, tpl *model.Template) error
	GetLatest(ctx context.Context, tenantID, templateID string) (*model.Template, error)
	GetVersion(ctx context.Context, tenantID, templateID string, version int) (*model.Template, error)
	ListLatest(ctx context.Context, tenantID string) ([]*model.Template, error)
}

type templateRepo struct {
	collection *mongo.Collection
}

// NewTemplateRepo creates a new template repository with indexes
func NewTemplateRepo(db *mongo.Database) TemplateRepo {
	repo := &templateRepo{
		collection: db.Collection("templates"),
	}
	createIndex(context.Background(), repo.collection, bson.D{
		{Key: "tenantId", Value: 1},
		{Key: "templateId", Value: 1},
		{Key: "version", Value: -1},
	}, true)
	return repo
}

// Create inserts a new version. Two writers racing for the same version
// get ErrDuplicate
func (r *templateRepo) Create(ctx context.Context, tpl *model.Template) error {
	_, err := r.collection.InsertOne(ctx, tpl)
	return translate(err)
}

func (r *templateRepo) GetLatest(ctx context.Context, tenantID, templateID string) (*model.Template, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	return r.findOne(ctx, bson.M{"tenantId": tenantID, "templateId": templateID}, opts)
}

func (r *templateRepo) GetVersion(ctx context.Context, tenantID, templateID string, version int) (*model.Template, error) {
	return r.findOne(ctx, bson.M{"tenantId": tenantID, "templateId": templateID, "version": version})
}

func (r *templateRepo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*model.Template, error) {
	var tpl model.Template
	err := r.collection.FindOne(ctx, filter, opts...).Decode(&tpl)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// ListLatest returns the newest version of every template of a tenant
func (r *templateRepo) ListLatest(ctx context.Context, tenantID string) ([]*model.Template, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tenantId": tenantID}}},
		{{Key: "$sort", Value: bson.D{{Key: "templateId", Value: 1}, {Key: "version", Value: -1}}}},
		{{Key: "$group", Value: bson.M{"_id": "$templateId", "doc": bson.M{"$first": "$$ROOT"}}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$doc"}}},
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []*model.Template
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}
