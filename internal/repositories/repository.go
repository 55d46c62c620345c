package repositories

import (
	"context"
	"time"

	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HoursTotals carries the aggregated valid-ledger sums for one
// (contest, participant) pair.
type HoursTotals struct {
	TotalHours     float64 `bson:"totalHours"`
	AfternoonHours float64 `bson:"afternoonHours"`
	NightHours     float64 `bson:"nightHours"`
}

// ContestRepository defines the interface for contest directory operations
type ContestRepository interface {
	Create(ctx context.Context, contest *models.Contest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Contest, error)
	FindActiveByGuild(ctx context.Context, guildID string, at time.Time) (*models.Contest, error)
	FindByGuild(ctx context.Context, guildID string) ([]*models.Contest, error)
	Update(ctx context.Context, contest *models.Contest) error
}

// HoursRepository defines the interface for the hours ledger. Create is the
// only way records enter the ledger; Invalidate is the only mutation.
type HoursRepository interface {
	Create(ctx context.Context, record *models.HoursRecord) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.HoursRecord, error)
	FindBySession(ctx context.Context, contestID primitive.ObjectID, participantID, sessionID string) (*models.HoursRecord, error)
	FindByParticipant(ctx context.Context, contestID primitive.ObjectID, participantID string) ([]*models.HoursRecord, error)
	SumValidOnDate(ctx context.Context, contestID primitive.ObjectID, participantID, patrolDate string) (float64, error)
	SumValidTotals(ctx context.Context, contestID primitive.ObjectID, participantID string) (HoursTotals, error)
	Invalidate(ctx context.Context, id primitive.ObjectID) error
}

// ParticipantRepository defines the interface for participant summary rows.
// Upsert writes totals and eligibility but never touches winner flags;
// winner flags are owned by ResetWinners/MarkWinners.
type ParticipantRepository interface {
	Upsert(ctx context.Context, participant *models.Participant) error
	FindByContestAndParticipant(ctx context.Context, contestID primitive.ObjectID, participantID string) (*models.Participant, error)
	FindByContest(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error)
	FindEligible(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error)
	FindAfternoonEligible(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error)
	FindAfternoonEligibleNonWinners(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error)
	FindNightEligible(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error)
	FindWinners(ctx context.Context, contestID primitive.ObjectID, tier models.DrawTier) ([]*models.Participant, error)
	ResetWinners(ctx context.Context, contestID primitive.ObjectID, tier models.DrawTier) error
	MarkWinners(ctx context.Context, contestID primitive.ObjectID, participantIDs []string, tier models.DrawTier) error
}

// OperatorRepository defines the interface for operator account operations
type OperatorRepository interface {
	Create(ctx context.Context, operator *models.Operator) error
	FindByEmail(ctx context.Context, email string) (*models.Operator, error)
	Count(ctx context.Context) (int64, error)
}
