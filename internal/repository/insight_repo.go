package repository

import (
	"anamnese/internal/model"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsightRepo handles MongoDB operations for session insights
type InsightRepo interface {
	GetBySession(ctx context.Context, tenantID, sessionID string) (*model.InsightRecord, error)
	// CreateIfAbsent stores rec unless an insight for the session exists. It
	// returns the stored record and whether this call created it
	CreateIfAbsent(ctx context.Context, rec *model.InsightRecord) (*model.InsightRecord, bool, error)
}

type insightRepo struct {
	collection *mongo.Collection
}

// NewInsightRepo creates a new insight repository with indexes
func NewInsightRepo(db *mongo.Database) InsightRepo {
	repo := &insightRepo{
		collection: db.Collection("insights"),
	}
	createIndex(context.Background(), repo.collection, bson.D{
		{Key: "tenantId", Value: 1},
		{Key: "templateId", Value: 1},
	}, false)
	return repo
}

func (r *insightRepo) GetBySession(ctx context.Context, tenantID, sessionID string) (*model.InsightRecord, error) {
	var rec model.InsightRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": sessionID, "tenantId": tenantID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *insightRepo) CreateIfAbsent(ctx context.Context, rec *model.InsightRecord) (*model.InsightRecord, bool, error) {
	filter := bson.M{"_id": rec.SessionID, "tenantId": rec.TenantID}
	update := bson.M{"$setOnInsert": bson.M{
		"templateId":      rec.TemplateID,
		"templateVersion": rec.TemplateVersion,
		"answerHash":      rec.AnswerHash,
		"summary":         rec.Summary,
		"risks":           rec.Risks,
		"recommendations": rec.Recommendations,
		"createdAt":       rec.CreatedAt,
	}}
	// The pre-image is empty exactly when this call inserted the document.
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before)

	var existing model.InsightRecord
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&existing)
	switch {
	case err == nil:
		return &existing, false, nil
	case err == mongo.ErrNoDocuments:
		return rec, true, nil
	case mongo.IsDuplicateKeyError(err):
		// Lost the upsert race; the winner's document is there now.
		winner, getErr := r.GetBySession(ctx, rec.TenantID, rec.SessionID)
		if getErr != nil {
			return nil, false, getErr
		}
		if winner == nil {
			return nil, false, errors.Join(ErrDuplicate, err)
		}
		return winner, false, nil
	default:
		return nil, false, err
	}
}
