package repository

import (
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AnswerWrite is one answer plus the session state it leads to
type AnswerWrite struct {
	QuestionID string
	Answer     model.StoredAnswer
	Progress   int
	Status     engine.Status
	At         time.Time
}

// SessionRepo handles MongoDB operations for sessions
type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, tenantID, id string) (*model.Session, error)
	// ApplyAnswer writes the answer, progress and status in one update. It
	// only matches an in-progress session still at expectedVersion and
	// reports false when nothing matched
	ApplyAnswer(ctx context.Context, tenantID, id string, expectedVersion int64, w AnswerWrite) (bool, error)
	ListByTemplate(ctx context.Context, tenantID, templateID string, limit int64) ([]*model.Session, error)
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a new session repository with indexes
func NewSessionRepo(db *mongo.Database) SessionRepo {
	repo := &sessionRepo{
		collection: db.Collection("sessions"),
	}
	createIndex(context.Background(), repo.collection, bson.D{
		{Key: "tenantId", Value: 1},
		{Key: "templateId", Value: 1},
		{Key: "startedAt", Value: -1},
	}, false)
	return repo
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.collection.InsertOne(ctx, session)
	return translate(err)
}

func (r *sessionRepo) GetByID(ctx context.Context, tenantID, id string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "tenantId": tenantID}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ApplyAnswer(ctx context.Context, tenantID, id string, expectedVersion int64, w AnswerWrite) (bool, error) {
	if w.QuestionID == "" || strings.ContainsAny(w.QuestionID, ".$") {
		return false, fmt.Errorf("question id %q cannot be used as a field name", w.QuestionID)
	}

	filter := bson.M{
		"_id":      id,
		"tenantId": tenantID,
		"status":   engine.StatusInProgress,
		"version":  expectedVersion,
	}
	set := bson.M{
		"answers." + w.QuestionID: w.Answer,
		"progress":                w.Progress,
		"status":                  w.Status,
		"updatedAt":               w.At,
	}
	if w.Status == engine.StatusCompleted {
		set["completedAt"] = w.At
	}
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *sessionRepo) ListByTemplate(ctx context.Context, tenantID, templateID string, limit int64) ([]*model.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID, "templateId": templateID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
