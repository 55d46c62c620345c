package mongodb

import (
	"context"
	"time"

	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"github.com/gra-paradise/patrol-contest-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HoursRepository implements the repositories.HoursRepository interface
type HoursRepository struct {
	collection *mongo.Collection
}

// NewHoursRepository creates a new HoursRepository
func NewHoursRepository(db *mongo.Database) repositories.HoursRepository {
	return &HoursRepository{
		collection: db.Collection("patrol_hours"),
	}
}

// Create appends a new ledger record
func (r *HoursRepository) Create(ctx context.Context, record *models.HoursRecord) error {
	record.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid
	}
	return nil
}

// FindByID finds a ledger record by ID
func (r *HoursRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.HoursRecord, error) {
	var record models.HoursRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindBySession finds the record a session already produced for a
// participant, if any. Used as the idempotency guard.
func (r *HoursRepository) FindBySession(ctx context.Context, contestID primitive.ObjectID, participantID, sessionID string) (*models.HoursRecord, error) {
	filter := bson.M{
		"contestId":     contestID,
		"participantId": participantID,
		"sessionId":     sessionID,
	}
	var record models.HoursRecord
	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByParticipant finds all ledger records for a participant, oldest first
func (r *HoursRepository) FindByParticipant(ctx context.Context, contestID primitive.ObjectID, participantID string) ([]*models.HoursRecord, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"contestId": contestID, "participantId": participantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*models.HoursRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SumValidOnDate sums the counted hours of valid records for a participant
// on one calendar date. Reads the ledger, not the summary row, so same-day
// sessions that have not been aggregated yet are still counted.
func (r *HoursRepository) SumValidOnDate(ctx context.Context, contestID primitive.ObjectID, participantID, patrolDate string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"contestId":     contestID,
			"participantId": participantID,
			"patrolDate":    patrolDate,
			"valid":         true,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalHours": bson.M{"$sum": "$totalHours"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []repositories.HoursTotals
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].TotalHours, nil
}

// SumValidTotals sums counted, afternoon and night hours across all valid
// records for a participant.
func (r *HoursRepository) SumValidTotals(ctx context.Context, contestID primitive.ObjectID, participantID string) (repositories.HoursTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"contestId":     contestID,
			"participantId": participantID,
			"valid":         true,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"totalHours":     bson.M{"$sum": "$totalHours"},
			"afternoonHours": bson.M{"$sum": "$afternoonHours"},
			"nightHours":     bson.M{"$sum": "$nightHours"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return repositories.HoursTotals{}, err
	}
	defer cursor.Close(ctx)

	var results []repositories.HoursTotals
	if err := cursor.All(ctx, &results); err != nil {
		return repositories.HoursTotals{}, err
	}
	if len(results) == 0 {
		return repositories.HoursTotals{}, nil
	}
	return results[0], nil
}

// Invalidate soft-deletes a record by flipping its valid flag
func (r *HoursRepository) Invalidate(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"valid": false}})
	return err
}
