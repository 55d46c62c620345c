package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"github.com/gra-paradise/patrol-contest-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure ContestServiceImpl implements ContestService
var _ ContestService = (*ContestServiceImpl)(nil)

// ErrActiveContestExists is returned when a guild already has an active
// contest; a guild runs at most one at a time.
var ErrActiveContestExists = errors.New("guild already has an active contest")

// ContestServiceImpl is the contest directory: configuration storage and
// active-contest lookup. The engine reads contests, it never edits their
// core fields after creation.
type ContestServiceImpl struct {
	contestRepo repositories.ContestRepository
}

// NewContestService creates a new ContestServiceImpl
func NewContestService(contestRepo repositories.ContestRepository) *ContestServiceImpl {
	return &ContestServiceImpl{contestRepo: contestRepo}
}

// applyDefaults fills unset contest configuration with the standard event
// rules.
func applyDefaults(contest *models.Contest) {
	if contest.RequiredHours == 0 {
		contest.RequiredHours = models.DefaultRequiredHours
	}
	if contest.MaxDailyHours == 0 {
		contest.MaxDailyHours = models.DefaultMaxDailyHours
	}
	if contest.Afternoon == (models.Period{}) {
		contest.Afternoon = models.DefaultAfternoonPeriod()
	}
	if contest.Night == (models.Period{}) {
		contest.Night = models.DefaultNightPeriod()
	}
	if contest.AfternoonWinners == 0 {
		contest.AfternoonWinners = models.DefaultAfternoonWinners
	}
	if contest.NightVipWinners == 0 {
		contest.NightVipWinners = models.DefaultNightVipWinners
	}
}

// CreateContest validates and stores a new contest.
func (s *ContestServiceImpl) CreateContest(ctx context.Context, contest *models.Contest) (*models.Contest, error) {
	applyDefaults(contest)

	if contest.GuildID == "" {
		return nil, errors.New("guild id is required")
	}
	if contest.Title == "" {
		return nil, errors.New("title is required")
	}
	if !contest.EndDate.After(contest.StartDate) {
		return nil, errors.New("contest end must be after start")
	}
	if contest.MaxDailyHours <= 0 {
		return nil, errors.New("maxDailyHours must be positive")
	}
	if contest.RequiredHours < 0 {
		return nil, errors.New("requiredHours must not be negative")
	}
	if err := ValidatePeriod(contest.Afternoon); err != nil {
		return nil, fmt.Errorf("afternoon period: %w", err)
	}
	if err := ValidatePeriod(contest.Night); err != nil {
		return nil, fmt.Errorf("night period: %w", err)
	}

	existing, err := s.contestRepo.FindByGuild(ctx, contest.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing contests: %w", err)
	}
	for _, c := range existing {
		if c.Active {
			slog.Warn("Rejected contest creation, guild already has an active contest",
				"guildId", contest.GuildID, "existingContestId", c.ID)
			return nil, ErrActiveContestExists
		}
	}

	contest.Active = true
	if err := s.contestRepo.Create(ctx, contest); err != nil {
		slog.Error("Failed to create contest", "error", err, "guildId", contest.GuildID)
		return nil, fmt.Errorf("failed to create contest: %w", err)
	}

	slog.Info("Patrol contest created", "contestId", contest.ID, "guildId", contest.GuildID, "title", contest.Title)
	return contest, nil
}

// GetContest retrieves a contest by ID.
func (s *ContestServiceImpl) GetContest(ctx context.Context, id primitive.ObjectID) (*models.Contest, error) {
	return s.contestRepo.FindByID(ctx, id)
}

// GetActiveContest retrieves the guild's currently active contest.
func (s *ContestServiceImpl) GetActiveContest(ctx context.Context, guildID string) (*models.Contest, error) {
	return s.contestRepo.FindActiveByGuild(ctx, guildID, time.Now())
}

// ListContests retrieves all contests for a guild, newest first.
func (s *ContestServiceImpl) ListContests(ctx context.Context, guildID string) ([]*models.Contest, error) {
	return s.contestRepo.FindByGuild(ctx, guildID)
}

// DeactivateContest ends a contest early. Ledger and participant data stay
// untouched; draws remain possible on an inactive contest.
func (s *ContestServiceImpl) DeactivateContest(ctx context.Context, id primitive.ObjectID) (*models.Contest, error) {
	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("contest not found: %w", err)
	}
	if !contest.Active {
		return contest, nil
	}
	contest.Active = false
	if err := s.contestRepo.Update(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to deactivate contest: %w", err)
	}
	slog.Info("Patrol contest deactivated", "contestId", contest.ID, "guildId", contest.GuildID)
	return contest, nil
}
