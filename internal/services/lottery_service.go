package services

import (
	"context"
	"fmt"

	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"github.com/gra-paradise/patrol-contest-backend/internal/repositories"
	"github.com/gra-paradise/patrol-contest-backend/pkg/discord"
	"github.com/gra-paradise/patrol-contest-backend/pkg/keymutex"
	"github.com/gra-paradise/patrol-contest-backend/pkg/random"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure LotteryServiceImpl implements LotteryService
var _ LotteryService = (*LotteryServiceImpl)(nil)

// LotteryServiceImpl runs the reward draws. The random source is injected:
// production wiring passes random.NewSecureSource, tests pass a seeded one.
type LotteryServiceImpl struct {
	contestRepo     repositories.ContestRepository
	participantRepo repositories.ParticipantRepository
	contestLocks    *keymutex.KeyedRWMutex
	rng             random.Source
	announcer       discord.Announcer
}

// NewLotteryService creates a new LotteryServiceImpl
func NewLotteryService(
	contestRepo repositories.ContestRepository,
	participantRepo repositories.ParticipantRepository,
	contestLocks *keymutex.KeyedRWMutex,
	rng random.Source,
	announcer discord.Announcer,
) *LotteryServiceImpl {
	return &LotteryServiceImpl{
		contestRepo:     contestRepo,
		participantRepo: participantRepo,
		contestLocks:    contestLocks,
		rng:             rng,
		announcer:       announcer,
	}
}

// DrawAfternoon re-draws the afternoon tier. Any previous winner flags are
// cleared first; only the latest draw is authoritative.
func (s *LotteryServiceImpl) DrawAfternoon(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	contest, err := s.contestRepo.FindByID(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("contest not found: %w", err)
	}

	s.contestLocks.Lock(contestID.Hex())
	defer s.contestLocks.Unlock(contestID.Hex())

	return s.drawAfternoonLocked(ctx, contest)
}

func (s *LotteryServiceImpl) drawAfternoonLocked(ctx context.Context, contest *models.Contest) ([]*models.Participant, error) {
	if err := s.participantRepo.ResetWinners(ctx, contest.ID, models.TierAfternoon); err != nil {
		return nil, fmt.Errorf("failed to reset afternoon winners: %w", err)
	}

	pool, err := s.participantRepo.FindAfternoonEligible(ctx, contest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch afternoon pool: %w", err)
	}
	if len(pool) == 0 {
		slog.Info("No eligible participants for afternoon draw", "contestId", contest.ID)
		return []*models.Participant{}, nil
	}

	winners := s.pickWinners(pool, contest.AfternoonWinners)
	ids := make([]string, 0, len(winners))
	for _, winner := range winners {
		winner.AfternoonWinner = true
		ids = append(ids, winner.ParticipantID)
		slog.Info("Afternoon winner selected",
			"contestId", contest.ID, "participantId", winner.ParticipantID,
			"afternoonHours", winner.TotalAfternoonHours, "totalHours", winner.TotalHours)
	}
	if err := s.participantRepo.MarkWinners(ctx, contest.ID, ids, models.TierAfternoon); err != nil {
		return nil, fmt.Errorf("failed to mark afternoon winners: %w", err)
	}
	s.announce(ctx, contest, "Afternoon", winners)

	slog.Info("Afternoon draw complete", "contestId", contest.ID, "winners", len(winners), "pool", len(pool))
	return winners, nil
}

// DrawNightVip re-draws the night VIP tier. The pool unions night-eligible
// participants with afternoon-eligible participants who did not win the
// afternoon tier, deduplicated by participant identifier.
func (s *LotteryServiceImpl) DrawNightVip(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	contest, err := s.contestRepo.FindByID(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("contest not found: %w", err)
	}

	s.contestLocks.Lock(contestID.Hex())
	defer s.contestLocks.Unlock(contestID.Hex())

	return s.drawNightVipLocked(ctx, contest)
}

func (s *LotteryServiceImpl) drawNightVipLocked(ctx context.Context, contest *models.Contest) ([]*models.Participant, error) {
	if err := s.participantRepo.ResetWinners(ctx, contest.ID, models.TierNightVip); err != nil {
		return nil, fmt.Errorf("failed to reset night VIP winners: %w", err)
	}

	afternoonNonWinners, err := s.participantRepo.FindAfternoonEligibleNonWinners(ctx, contest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch afternoon non-winners: %w", err)
	}
	nightEligible, err := s.participantRepo.FindNightEligible(ctx, contest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch night pool: %w", err)
	}

	seen := make(map[string]bool, len(afternoonNonWinners)+len(nightEligible))
	pool := make([]*models.Participant, 0, len(afternoonNonWinners)+len(nightEligible))
	for _, p := range afternoonNonWinners {
		if !seen[p.ParticipantID] {
			seen[p.ParticipantID] = true
			pool = append(pool, p)
		}
	}
	for _, p := range nightEligible {
		if !seen[p.ParticipantID] {
			seen[p.ParticipantID] = true
			pool = append(pool, p)
		}
	}

	if len(pool) == 0 {
		slog.Info("No eligible participants for night VIP draw", "contestId", contest.ID)
		return []*models.Participant{}, nil
	}

	winners := s.pickWinners(pool, contest.NightVipWinners)
	ids := make([]string, 0, len(winners))
	for _, winner := range winners {
		winner.NightVipWinner = true
		ids = append(ids, winner.ParticipantID)
		slog.Info("Night VIP winner selected",
			"contestId", contest.ID, "participantId", winner.ParticipantID,
			"nightHours", winner.TotalNightHours, "totalHours", winner.TotalHours)
	}
	if err := s.participantRepo.MarkWinners(ctx, contest.ID, ids, models.TierNightVip); err != nil {
		return nil, fmt.Errorf("failed to mark night VIP winners: %w", err)
	}
	s.announce(ctx, contest, "Night VIP", winners)

	slog.Info("Night VIP draw complete", "contestId", contest.ID, "winners", len(winners), "pool", len(pool))
	return winners, nil
}

// pickWinners shuffles a copy of the pool and takes the first
// min(count, len(pool)) entries.
func (s *LotteryServiceImpl) pickWinners(pool []*models.Participant, count int) []*models.Participant {
	shuffled := make([]*models.Participant, len(pool))
	copy(shuffled, pool)
	random.Shuffle(shuffled, s.rng)

	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}

// announce posts the winner list to Discord. Announcement failures are
// logged, never propagated: the draw already committed.
func (s *LotteryServiceImpl) announce(ctx context.Context, contest *models.Contest, tier string, winners []*models.Participant) {
	if s.announcer == nil || len(winners) == 0 {
		return
	}
	names := make([]string, 0, len(winners))
	for _, winner := range winners {
		names = append(names, winner.DisplayName)
	}
	if err := s.announcer.AnnounceWinners(ctx, contest.Title, tier, names); err != nil {
		slog.Warn("Failed to announce winners", "contestId", contest.ID, "tier", tier, "error", err)
	}
}

// DrawFull runs the afternoon draw followed by the night VIP draw under a
// single contest lock, mirroring how the event is run in practice.
func (s *LotteryServiceImpl) DrawFull(ctx context.Context, contestID primitive.ObjectID) (*models.LotteryResult, error) {
	contest, err := s.contestRepo.FindByID(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("contest not found: %w", err)
	}

	s.contestLocks.Lock(contestID.Hex())
	defer s.contestLocks.Unlock(contestID.Hex())

	slog.Info("Starting full lottery", "contestId", contestID, "title", contest.Title)
	afternoonWinners, err := s.drawAfternoonLocked(ctx, contest)
	if err != nil {
		return nil, err
	}
	nightVipWinners, err := s.drawNightVipLocked(ctx, contest)
	if err != nil {
		return nil, err
	}
	return &models.LotteryResult{
		AfternoonWinners: afternoonWinners,
		NightVipWinners:  nightVipWinners,
	}, nil
}

// GetWinners retrieves the current winners of a tier.
func (s *LotteryServiceImpl) GetWinners(ctx context.Context, contestID primitive.ObjectID, tier models.DrawTier) ([]*models.Participant, error) {
	return s.participantRepo.FindWinners(ctx, contestID, tier)
}

// HasDrawnWinners reports whether either tier currently has winners.
func (s *LotteryServiceImpl) HasDrawnWinners(ctx context.Context, contestID primitive.ObjectID) (bool, error) {
	afternoon, err := s.participantRepo.FindWinners(ctx, contestID, models.TierAfternoon)
	if err != nil {
		return false, err
	}
	if len(afternoon) > 0 {
		return true, nil
	}
	night, err := s.participantRepo.FindWinners(ctx, contestID, models.TierNightVip)
	if err != nil {
		return false, err
	}
	return len(night) > 0, nil
}
