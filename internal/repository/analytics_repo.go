package repository

import (
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AnalyticsRepo aggregates sessions and insights and keeps the last computed
// stats per template
type AnalyticsRepo interface {
	ComputeTemplateStats(ctx context.Context, tenantID, templateID string) (*model.TemplateStats, error)
	SaveSnapshot(ctx context.Context, stats *model.TemplateStats) error
	GetSnapshot(ctx context.Context, tenantID, templateID string) (*model.TemplateStats, error)
}

type analyticsRepo struct {
	sessions  *mongo.Collection
	insights  *mongo.Collection
	snapshots *mongo.Collection
}

// NewAnalyticsRepo creates a new analytics repository
func NewAnalyticsRepo(db *mongo.Database) AnalyticsRepo {
	return &analyticsRepo{
		sessions:  db.Collection("sessions"),
		insights:  db.Collection("insights"),
		snapshots: db.Collection("template_stats"),
	}
}

type statusCount struct {
	Status engine.Status `bson:"_id"`
	Count  int           `bson:"count"`
}

type riskAverages struct {
	Count        int     `bson:"count"`
	Readiness    float64 `bson:"readiness"`
	DropoutRisk  float64 `bson:"dropoutRisk"`
	Stress       float64 `bson:"stress"`
	SleepQuality float64 `bson:"sleepQuality"`
}

func (r *analyticsRepo) ComputeTemplateStats(ctx context.Context, tenantID, templateID string) (*model.TemplateStats, error) {
	match := bson.M{"tenantId": tenantID, "templateId": templateID}
	stats := &model.TemplateStats{TenantID: tenantID, TemplateID: templateID}

	cursor, err := r.sessions.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	var counts []statusCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.Total += c.Count
		switch c.Status {
		case engine.StatusCompleted:
			stats.Completed = c.Count
		case engine.StatusInProgress:
			stats.InProgress = c.Count
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total)
	}

	cursor, err = r.insights.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"count":        bson.M{"$sum": 1},
			"readiness":    bson.M{"$avg": "$risks.readiness"},
			"dropoutRisk":  bson.M{"$avg": "$risks.dropoutRisk"},
			"stress":       bson.M{"$avg": "$risks.stress"},
			"sleepQuality": bson.M{"$avg": "$risks.sleepQuality"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	var avgs []riskAverages
	if err := cursor.All(ctx, &avgs); err != nil {
		return nil, err
	}
	if len(avgs) == 1 {
		a := avgs[0]
		stats.InsightCount = a.Count
		stats.AvgRisks = engine.Risks{
			Readiness:    int(math.Round(a.Readiness)),
			DropoutRisk:  int(math.Round(a.DropoutRisk)),
			Stress:       int(math.Round(a.Stress)),
			SleepQuality: int(math.Round(a.SleepQuality)),
		}
	}
	return stats, nil
}

func (r *analyticsRepo) SaveSnapshot(ctx context.Context, stats *model.TemplateStats) error {
	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"tenantId": stats.TenantID, "templateId": stats.TemplateID}
	_, err := r.snapshots.ReplaceOne(ctx, filter, stats, opts)
	return err
}

func (r *analyticsRepo) GetSnapshot(ctx context.Context, tenantID, templateID string) (*model.TemplateStats, error) {
	var stats model.TemplateStats
	err := r.snapshots.FindOne(ctx, bson.M{"tenantId": tenantID, "templateId": templateID}).Decode(&stats)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
