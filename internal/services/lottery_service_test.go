package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"github.com/gra-paradise/patrol-contest-backend/pkg/discord"
	"github.com/gra-paradise/patrol-contest-backend/pkg/keymutex"
	"github.com/gra-paradise/patrol-contest-backend/pkg/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type lotteryFixture struct {
	contestRepo     *fakeContestRepo
	participantRepo *fakeParticipantRepo
	service         *LotteryServiceImpl
	contest         *models.Contest
}

func newLotteryFixture(t *testing.T, seed int64) *lotteryFixture {
	t.Helper()
	contestRepo := newFakeContestRepo()
	participantRepo := newFakeParticipantRepo()

	contest := &models.Contest{
		GuildID:          "guild-1",
		Title:            "June Patrol Contest",
		StartDate:        time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC),
		RequiredHours:    models.DefaultRequiredHours,
		MaxDailyHours:    models.DefaultMaxDailyHours,
		Afternoon:        models.DefaultAfternoonPeriod(),
		Night:            models.DefaultNightPeriod(),
		AfternoonWinners: models.DefaultAfternoonWinners,
		NightVipWinners:  models.DefaultNightVipWinners,
		Active:           true,
	}
	require.NoError(t, contestRepo.Create(context.Background(), contest))

	service := NewLotteryService(contestRepo, participantRepo, keymutex.NewRW(),
		random.NewSeededSource(seed), discord.NewMockAnnouncer())
	return &lotteryFixture{
		contestRepo:     contestRepo,
		participantRepo: participantRepo,
		service:         service,
		contest:         contest,
	}
}

func (f *lotteryFixture) seedParticipant(id string, afternoonEligible, nightEligible bool) {
	f.participantRepo.seed(&models.Participant{
		ContestID:         f.contest.ID,
		ParticipantID:     id,
		DisplayName:       "Member " + id,
		TotalHours:        20,
		Eligible:          afternoonEligible || nightEligible,
		AfternoonEligible: afternoonEligible,
		NightEligible:     nightEligible,
	})
}

func TestDrawAfternoonSelectsFromEligiblePool(t *testing.T) {
	f := newLotteryFixture(t, 1)
	for i := 0; i < 5; i++ {
		f.seedParticipant(fmt.Sprintf("eligible-%d", i), true, false)
	}
	f.seedParticipant("ineligible-1", false, false)

	winners, err := f.service.DrawAfternoon(context.Background(), f.contest.ID)
	require.NoError(t, err)
	require.Len(t, winners, models.DefaultAfternoonWinners)
	for _, winner := range winners {
		assert.True(t, winner.AfternoonWinner)
		assert.NotEqual(t, "ineligible-1", winner.ParticipantID)
	}

	persisted, err := f.service.GetWinners(context.Background(), f.contest.ID, models.TierAfternoon)
	require.NoError(t, err)
	assert.Len(t, persisted, models.DefaultAfternoonWinners)
}

func TestDrawAfternoonSmallPool(t *testing.T) {
	f := newLotteryFixture(t, 1)
	f.seedParticipant("a", true, false)
	f.seedParticipant("b", true, false)

	winners, err := f.service.DrawAfternoon(context.Background(), f.contest.ID)
	require.NoError(t, err)
	assert.Len(t, winners, 2)
}

func TestDrawAfternoonEmptyPool(t *testing.T) {
	f := newLotteryFixture(t, 1)

	winners, err := f.service.DrawAfternoon(context.Background(), f.contest.ID)
	require.NoError(t, err)
	assert.Empty(t, winners)

	drawn, err := f.service.HasDrawnWinners(context.Background(), f.contest.ID)
	require.NoError(t, err)
	assert.False(t, drawn)
}

func TestDrawAfternoonUnknownContest(t *testing.T) {
	f := newLotteryFixture(t, 1)

	_, err := f.service.DrawAfternoon(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
}

func TestRedrawClearsPreviousWinners(t *testing.T) {
	f := newLotteryFixture(t, 1)
	for i := 0; i < 10; i++ {
		f.seedParticipant(fmt.Sprintf("member-%d", i), true, false)
	}

	_, err := f.service.DrawAfternoon(context.Background(), f.contest.ID)
	require.NoError(t, err)
	_, err = f.service.DrawAfternoon(context.Background(), f.contest.ID)
	require.NoError(t, err)

	// Re-draw replaces, never accumulates.
	winners, err := f.service.GetWinners(context.Background(), f.contest.ID, models.TierAfternoon)
	require.NoError(t, err)
	assert.Len(t, winners, models.DefaultAfternoonWinners)
}

func TestRedrawClearsStaleWinnersOutsidePool(t *testing.T) {
	f := newLotteryFixture(t, 1)
	// A previous winner who has since lost eligibility still gets the flag
	// cleared on re-draw.
	f.participantRepo.seed(&models.Participant{
		ContestID:       f.contest.ID,
		ParticipantID:   "demoted",
		AfternoonWinner: true,
	})

	winners, err := f.service.DrawAfternoon(context.Background(), f.contest.ID)
	require.NoError(t, err)
	assert.Empty(t, winners)

	persisted, err := f.service.GetWinners(context.Background(), f.contest.ID, models.TierAfternoon)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestDrawNightVipPoolUnionAndDedup(t *testing.T) {
	f := newLotteryFixture(t, 1)
	f.contest.NightVipWinners = 10
	require.NoError(t, f.contestRepo.Update(context.Background(), f.contest))

	// "both" is in both branches and must appear in the pool exactly once.
	f.seedParticipant("both", true, true)
	f.seedParticipant("night-only", false, true)
	f.seedParticipant("afternoon-loser", true, false)
	f.seedParticipant("afternoon-winner", true, false)
	require.NoError(t, f.participantRepo.MarkWinners(context.Background(), f.contest.ID,
		[]string{"afternoon-winner"}, models.TierAfternoon))

	winners, err := f.service.DrawNightVip(context.Background(), f.contest.ID)
	require.NoError(t, err)

	ids := make(map[string]int)
	for _, winner := range winners {
		ids[winner.ParticipantID]++
		assert.True(t, winner.NightVipWinner)
	}
	// Pool: both branches unioned, afternoon winners excluded from the
	// second-chance branch, duplicates collapsed.
	assert.Equal(t, map[string]int{"both": 1, "night-only": 1, "afternoon-loser": 1}, ids)
}

func TestDrawNightVipIncludesNightEligibleAfternoonWinner(t *testing.T) {
	f := newLotteryFixture(t, 1)
	f.contest.NightVipWinners = 10
	require.NoError(t, f.contestRepo.Update(context.Background(), f.contest))

	// An afternoon winner stays in the VIP pool through night eligibility;
	// only the second-chance branch excludes them.
	f.seedParticipant("night-champion", true, true)
	require.NoError(t, f.participantRepo.MarkWinners(context.Background(), f.contest.ID,
		[]string{"night-champion"}, models.TierAfternoon))

	winners, err := f.service.DrawNightVip(context.Background(), f.contest.ID)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, "night-champion", winners[0].ParticipantID)
}

func TestDrawFullRunsBothTiers(t *testing.T) {
	f := newLotteryFixture(t, 1)
	for i := 0; i < 6; i++ {
		f.seedParticipant(fmt.Sprintf("afternoon-%d", i), true, false)
	}
	for i := 0; i < 4; i++ {
		f.seedParticipant(fmt.Sprintf("night-%d", i), false, true)
	}

	result, err := f.service.DrawFull(context.Background(), f.contest.ID)
	require.NoError(t, err)
	assert.Len(t, result.AfternoonWinners, models.DefaultAfternoonWinners)
	assert.Len(t, result.NightVipWinners, models.DefaultNightVipWinners)
	assert.Equal(t, 5, result.TotalWinners())

	drawn, err := f.service.HasDrawnWinners(context.Background(), f.contest.ID)
	require.NoError(t, err)
	assert.True(t, drawn)
}

func TestDrawDeterministicWithSeed(t *testing.T) {
	winnersForSeed := func(seed int64) []string {
		f := newLotteryFixture(t, seed)
		for i := 0; i < 8; i++ {
			f.seedParticipant(fmt.Sprintf("member-%d", i), true, false)
		}
		winners, err := f.service.DrawAfternoon(context.Background(), f.contest.ID)
		require.NoError(t, err)
		ids := make([]string, 0, len(winners))
		for _, winner := range winners {
			ids = append(ids, winner.ParticipantID)
		}
		return ids
	}

	assert.Equal(t, winnersForSeed(42), winnersForSeed(42))
}
