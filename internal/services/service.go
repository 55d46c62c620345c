package services

import (
	"context"

	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContestService defines the interface for the contest directory
type ContestService interface {
	// CreateContest validates and stores a new contest. A guild may have
	// at most one active contest at a time.
	CreateContest(ctx context.Context, contest *models.Contest) (*models.Contest, error)

	// GetContest retrieves a contest by ID
	GetContest(ctx context.Context, id primitive.ObjectID) (*models.Contest, error)

	// GetActiveContest retrieves the guild's currently active contest
	GetActiveContest(ctx context.Context, guildID string) (*models.Contest, error)

	// ListContests retrieves all contests for a guild, newest first
	ListContests(ctx context.Context, guildID string) ([]*models.Contest, error)

	// DeactivateContest ends a contest early
	DeactivateContest(ctx context.Context, id primitive.ObjectID) (*models.Contest, error)
}

// HoursService defines the interface for the hours ledger and the
// participant aggregator
type HoursService interface {
	// RecordSession converts a session-closed event into a ledger record
	// and refreshes the participant summary. Duplicate, out-of-window and
	// no-active-contest events are absorbed without error; the returned
	// record is nil when nothing was recorded.
	RecordSession(ctx context.Context, event *models.SessionClosedEvent) (*models.HoursRecord, error)

	// InvalidateRecord soft-deletes a ledger record and re-aggregates
	InvalidateRecord(ctx context.Context, recordID primitive.ObjectID) (*models.Participant, error)

	// GetParticipant retrieves one participant summary row
	GetParticipant(ctx context.Context, contestID primitive.ObjectID, participantID string) (*models.Participant, error)

	// GetEligible retrieves eligible participants, highest hours first
	GetEligible(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error)

	// GetLeaderboard retrieves all participants, highest hours first
	GetLeaderboard(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error)

	// GetParticipantRecords retrieves a participant's ledger entries
	GetParticipantRecords(ctx context.Context, contestID primitive.ObjectID, participantID string) ([]*models.HoursRecord, error)
}

// LotteryService defines the interface for reward draws
type LotteryService interface {
	// DrawAfternoon re-draws the afternoon tier from scratch
	DrawAfternoon(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error)

	// DrawNightVip re-draws the night VIP tier from scratch
	DrawNightVip(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error)

	// DrawFull runs both tiers in sequence under one contest lock
	DrawFull(ctx context.Context, contestID primitive.ObjectID) (*models.LotteryResult, error)

	// GetWinners retrieves the current winners of a tier
	GetWinners(ctx context.Context, contestID primitive.ObjectID, tier models.DrawTier) ([]*models.Participant, error)

	// HasDrawnWinners reports whether any tier has winners recorded
	HasDrawnWinners(ctx context.Context, contestID primitive.ObjectID) (bool, error)
}

// AuthService defines the interface for operator authentication
type AuthService interface {
	// Login verifies operator credentials and issues a JWT
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)

	// EnsureBootstrapOperator seeds the configured operator account when
	// the operator collection is empty
	EnsureBootstrapOperator(ctx context.Context) error
}
