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

// ParticipantRepository implements the repositories.ParticipantRepository interface
type ParticipantRepository struct {
	collection *mongo.Collection
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *mongo.Database) repositories.ParticipantRepository {
	return &ParticipantRepository{
		collection: db.Collection("patrol_participants"),
	}
}

func winnerField(tier models.DrawTier) string {
	if tier == models.TierNightVip {
		return "nightVipWinner"
	}
	return "afternoonWinner"
}

// Upsert writes the summary row for a (contest, participant) pair. Winner
// flags are only initialized on insert, never overwritten here.
func (r *ParticipantRepository) Upsert(ctx context.Context, participant *models.Participant) error {
	filter := bson.M{
		"contestId":     participant.ContestID,
		"participantId": participant.ParticipantID,
	}
	update := bson.M{
		"$set": bson.M{
			"displayName":         participant.DisplayName,
			"totalAfternoonHours": participant.TotalAfternoonHours,
			"totalNightHours":     participant.TotalNightHours,
			"totalHours":          participant.TotalHours,
			"eligible":            participant.Eligible,
			"afternoonEligible":   participant.AfternoonEligible,
			"nightEligible":       participant.NightEligible,
			"lastUpdated":         time.Now(),
		},
		"$setOnInsert": bson.M{
			"afternoonWinner": false,
			"nightVipWinner":  false,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// FindByContestAndParticipant finds one summary row
func (r *ParticipantRepository) FindByContestAndParticipant(ctx context.Context, contestID primitive.ObjectID, participantID string) (*models.Participant, error) {
	filter := bson.M{"contestId": contestID, "participantId": participantID}
	var participant models.Participant
	err := r.collection.FindOne(ctx, filter).Decode(&participant)
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *ParticipantRepository) findSorted(ctx context.Context, filter bson.M) ([]*models.Participant, error) {
	opts := options.Find().SetSort(bson.M{"totalHours": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var participants []*models.Participant
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// FindByContest finds all summary rows for a contest, highest hours first
func (r *ParticipantRepository) FindByContest(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	return r.findSorted(ctx, bson.M{"contestId": contestID})
}

// FindEligible finds participants meeting the hours threshold, highest first
func (r *ParticipantRepository) FindEligible(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	return r.findSorted(ctx, bson.M{"contestId": contestID, "eligible": true})
}

// FindAfternoonEligible finds the afternoon draw pool
func (r *ParticipantRepository) FindAfternoonEligible(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	return r.findSorted(ctx, bson.M{"contestId": contestID, "afternoonEligible": true})
}

// FindAfternoonEligibleNonWinners finds afternoon-eligible participants who
// did not win the afternoon draw. They get a second chance at the VIP tier.
func (r *ParticipantRepository) FindAfternoonEligibleNonWinners(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	return r.findSorted(ctx, bson.M{
		"contestId":         contestID,
		"afternoonEligible": true,
		"afternoonWinner":   false,
	})
}

// FindNightEligible finds the night part of the VIP draw pool
func (r *ParticipantRepository) FindNightEligible(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	return r.findSorted(ctx, bson.M{"contestId": contestID, "nightEligible": true})
}

// FindWinners finds the current winners of a tier
func (r *ParticipantRepository) FindWinners(ctx context.Context, contestID primitive.ObjectID, tier models.DrawTier) ([]*models.Participant, error) {
	return r.findSorted(ctx, bson.M{"contestId": contestID, winnerField(tier): true})
}

// ResetWinners clears a tier's winner flag for the whole contest, so a
// re-draw reflects only the latest result.
func (r *ParticipantRepository) ResetWinners(ctx context.Context, contestID primitive.ObjectID, tier models.DrawTier) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"contestId": contestID},
		bson.M{"$set": bson.M{winnerField(tier): false}},
	)
	return err
}

// MarkWinners sets a tier's winner flag for the drawn participants
func (r *ParticipantRepository) MarkWinners(ctx context.Context, contestID primitive.ObjectID, participantIDs []string, tier models.DrawTier) error {
	if len(participantIDs) == 0 {
		return nil
	}
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"contestId": contestID, "participantId": bson.M{"$in": participantIDs}},
		bson.M{"$set": bson.M{winnerField(tier): true}},
	)
	return err
}
