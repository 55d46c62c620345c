package services

import (
	"context"
	"fmt"
	"math"

	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"github.com/gra-paradise/patrol-contest-backend/internal/repositories"
	"github.com/gra-paradise/patrol-contest-backend/pkg/keymutex"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure HoursServiceImpl implements HoursService
var _ HoursService = (*HoursServiceImpl)(nil)

// HoursServiceImpl is the single write path into the hours ledger and the
// owner of participant aggregation.
type HoursServiceImpl struct {
	contestRepo      repositories.ContestRepository
	hoursRepo        repositories.HoursRepository
	participantRepo  repositories.ParticipantRepository
	participantLocks *keymutex.KeyedMutex
	contestLocks     *keymutex.KeyedRWMutex
}

// NewHoursService creates a new HoursServiceImpl. contestLocks must be the
// same registry handed to the lottery service so draws and ledger writes
// coordinate on the contest key.
func NewHoursService(
	contestRepo repositories.ContestRepository,
	hoursRepo repositories.HoursRepository,
	participantRepo repositories.ParticipantRepository,
	contestLocks *keymutex.KeyedRWMutex,
) *HoursServiceImpl {
	return &HoursServiceImpl{
		contestRepo:      contestRepo,
		hoursRepo:        hoursRepo,
		participantRepo:  participantRepo,
		participantLocks: keymutex.New(),
		contestLocks:     contestLocks,
	}
}

func participantKey(contestID primitive.ObjectID, participantID string) string {
	return contestID.Hex() + ":" + participantID
}

// clipToDailyCap scales a session's period hours down to what the daily cap
// still allows. The afternoon:night proportion of the raw input is
// preserved whenever scaling occurs. Returned values: the hours counted
// toward the contest, then the clipped afternoon and night components.
func clipToDailyCap(maxDailyHours, alreadyToday, sessionHours, rawAfternoon, rawNight float64) (total, afternoon, night float64) {
	remaining := maxDailyHours - alreadyToday
	if remaining < 0 {
		remaining = 0
	}

	total = math.Min(sessionHours, remaining)
	afternoon, night = rawAfternoon, rawNight

	rawPeriodTotal := rawAfternoon + rawNight
	if rawPeriodTotal > remaining {
		ratio := remaining / rawPeriodTotal
		afternoon = rawAfternoon * ratio
		night = rawNight * ratio
	}
	return total, afternoon, night
}

// RecordSession processes one session-closed event. Delivery is
// at-least-once, so the (contest, participant, session) triple is checked
// before anything is written. The cap read and the ledger append run under
// a per-(contest, participant) mutex: two closures for the same participant
// on the same day must not both see the same daily remainder.
func (s *HoursServiceImpl) RecordSession(ctx context.Context, event *models.SessionClosedEvent) (*models.HoursRecord, error) {
	if !event.EndTime.After(event.StartTime) {
		slog.Warn("Dropping session with non-positive duration", "sessionId", event.SessionID, "participantId", event.ParticipantID)
		return nil, nil
	}

	// An event outside every contest window resolves to no contest here,
	// which also covers the explicit start-within-window check: lookup is
	// anchored on the session's start instant.
	contest, err := s.contestRepo.FindActiveByGuild(ctx, event.GuildID, event.StartTime)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			slog.Info("No active contest covers session start, dropping event",
				"guildId", event.GuildID, "sessionId", event.SessionID, "start", event.StartTime)
			return nil, nil
		}
		slog.Error("Failed to resolve active contest", "error", err, "guildId", event.GuildID)
		return nil, fmt.Errorf("failed to resolve active contest: %w", err)
	}

	s.contestLocks.RLock(contest.ID.Hex())
	defer s.contestLocks.RUnlock(contest.ID.Hex())

	key := participantKey(contest.ID, event.ParticipantID)
	s.participantLocks.Lock(key)
	defer s.participantLocks.Unlock(key)

	existing, err := s.hoursRepo.FindBySession(ctx, contest.ID, event.ParticipantID, event.SessionID)
	if err == nil {
		slog.Info("Session already recorded, ignoring duplicate delivery",
			"sessionId", event.SessionID, "participantId", event.ParticipantID, "contestId", contest.ID)
		return existing, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to check for existing record: %w", err)
	}

	rawAfternoon, err := PeriodOverlapHours(event.StartTime, event.EndTime, contest.Afternoon, event.StartTime)
	if err != nil {
		return nil, fmt.Errorf("afternoon period: %w", err)
	}
	rawNight, err := PeriodOverlapHours(event.StartTime, event.EndTime, contest.Night, event.StartTime)
	if err != nil {
		return nil, fmt.Errorf("night period: %w", err)
	}

	sessionHours := event.EndTime.Sub(event.StartTime).Hours()
	patrolDate := event.StartTime.Format("2006-01-02")

	alreadyToday, err := s.hoursRepo.SumValidOnDate(ctx, contest.ID, event.ParticipantID, patrolDate)
	if err != nil {
		return nil, fmt.Errorf("failed to sum hours for %s: %w", patrolDate, err)
	}

	// A fully exhausted cap still produces a zero-hours record so the
	// ledger shows the session was seen rather than lost.
	total, afternoon, night := clipToDailyCap(contest.MaxDailyHours, alreadyToday, sessionHours, rawAfternoon, rawNight)

	record := &models.HoursRecord{
		ContestID:      contest.ID,
		ParticipantID:  event.ParticipantID,
		DisplayName:    event.DisplayName,
		SessionID:      event.SessionID,
		PatrolDate:     patrolDate,
		StartTime:      event.StartTime,
		EndTime:        event.EndTime,
		SessionHours:   sessionHours,
		TotalHours:     total,
		AfternoonHours: afternoon,
		NightHours:     night,
		PrimaryPeriod:  models.ClassifyPeriod(afternoon, night),
		Valid:          true,
	}
	if err := s.hoursRepo.Create(ctx, record); err != nil {
		slog.Error("Failed to append ledger record", "error", err, "sessionId", event.SessionID)
		return nil, fmt.Errorf("failed to append ledger record: %w", err)
	}

	if _, err := s.refreshParticipant(ctx, contest, event.ParticipantID, event.DisplayName); err != nil {
		return record, err
	}

	slog.Info("Processed patrol session",
		"contestId", contest.ID, "participantId", event.ParticipantID, "sessionId", event.SessionID,
		"hours", record.TotalHours, "afternoon", record.AfternoonHours, "night", record.NightHours,
		"period", record.PrimaryPeriod)
	return record, nil
}

// refreshParticipant rebuilds the summary row from the valid ledger rows.
// A full re-sum keeps the row correct under record invalidation, where an
// incremental delta would drift. Winner flags are not touched.
func (s *HoursServiceImpl) refreshParticipant(ctx context.Context, contest *models.Contest, participantID, displayName string) (*models.Participant, error) {
	totals, err := s.hoursRepo.SumValidTotals(ctx, contest.ID, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger for participant %s: %w", participantID, err)
	}

	eligible := totals.TotalHours >= float64(contest.RequiredHours)
	participant := &models.Participant{
		ContestID:           contest.ID,
		ParticipantID:       participantID,
		DisplayName:         displayName,
		TotalAfternoonHours: totals.AfternoonHours,
		TotalNightHours:     totals.NightHours,
		TotalHours:          totals.TotalHours,
		Eligible:            eligible,
		AfternoonEligible:   eligible && totals.AfternoonHours > 0,
		NightEligible:       eligible && totals.NightHours > 0,
	}
	if err := s.participantRepo.Upsert(ctx, participant); err != nil {
		slog.Error("Failed to upsert participant summary", "error", err, "participantId", participantID)
		return nil, fmt.Errorf("failed to upsert participant summary: %w", err)
	}
	return participant, nil
}

// InvalidateRecord soft-deletes a ledger record (e.g. farming detected)
// and re-aggregates the affected participant.
func (s *HoursServiceImpl) InvalidateRecord(ctx context.Context, recordID primitive.ObjectID) (*models.Participant, error) {
	record, err := s.hoursRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("record not found: %w", err)
	}
	contest, err := s.contestRepo.FindByID(ctx, record.ContestID)
	if err != nil {
		return nil, fmt.Errorf("contest not found: %w", err)
	}

	s.contestLocks.RLock(contest.ID.Hex())
	defer s.contestLocks.RUnlock(contest.ID.Hex())

	key := participantKey(contest.ID, record.ParticipantID)
	s.participantLocks.Lock(key)
	defer s.participantLocks.Unlock(key)

	if err := s.hoursRepo.Invalidate(ctx, recordID); err != nil {
		return nil, fmt.Errorf("failed to invalidate record: %w", err)
	}
	slog.Info("Invalidated ledger record", "recordId", recordID, "participantId", record.ParticipantID, "contestId", contest.ID)

	return s.refreshParticipant(ctx, contest, record.ParticipantID, record.DisplayName)
}

// GetParticipant retrieves one summary row.
func (s *HoursServiceImpl) GetParticipant(ctx context.Context, contestID primitive.ObjectID, participantID string) (*models.Participant, error) {
	return s.participantRepo.FindByContestAndParticipant(ctx, contestID, participantID)
}

// GetEligible retrieves eligible participants sorted by total hours
// descending, ready for leaderboard display.
func (s *HoursServiceImpl) GetEligible(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	return s.participantRepo.FindEligible(ctx, contestID)
}

// GetLeaderboard retrieves every participant sorted by total hours descending.
func (s *HoursServiceImpl) GetLeaderboard(ctx context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	return s.participantRepo.FindByContest(ctx, contestID)
}

// GetParticipantRecords retrieves a participant's ledger entries.
func (s *HoursServiceImpl) GetParticipantRecords(ctx context.Context, contestID primitive.ObjectID, participantID string) ([]*models.HoursRecord, error) {
	return s.hoursRepo.FindByParticipant(ctx, contestID, participantID)
}
