package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"github.com/gra-paradise/patrol-contest-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory repository fakes. They reproduce the query semantics of the
// mongodb package closely enough for service-level tests, including the
// upsert rule that winner flags are only initialized on insert.

type fakeContestRepo struct {
	mu       sync.Mutex
	contests map[primitive.ObjectID]*models.Contest
}

func newFakeContestRepo() *fakeContestRepo {
	return &fakeContestRepo{contests: make(map[primitive.ObjectID]*models.Contest)}
}

func (r *fakeContestRepo) Create(_ context.Context, contest *models.Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if contest.ID.IsZero() {
		contest.ID = primitive.NewObjectID()
	}
	contest.CreatedAt = time.Now()
	contest.UpdatedAt = contest.CreatedAt
	stored := *contest
	r.contests[contest.ID] = &stored
	return nil
}

func (r *fakeContestRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	contest, ok := r.contests[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *contest
	return &copied, nil
}

func (r *fakeContestRepo) FindActiveByGuild(_ context.Context, guildID string, at time.Time) (*models.Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, contest := range r.contests {
		if contest.GuildID == guildID && contest.Active &&
			!at.Before(contest.StartDate) && !at.After(contest.EndDate) {
			copied := *contest
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeContestRepo) FindByGuild(_ context.Context, guildID string) ([]*models.Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var contests []*models.Contest
	for _, contest := range r.contests {
		if contest.GuildID == guildID {
			copied := *contest
			contests = append(contests, &copied)
		}
	}
	return contests, nil
}

func (r *fakeContestRepo) Update(_ context.Context, contest *models.Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contests[contest.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	contest.UpdatedAt = time.Now()
	stored := *contest
	r.contests[contest.ID] = &stored
	return nil
}

type fakeHoursRepo struct {
	mu      sync.Mutex
	records []*models.HoursRecord
}

func newFakeHoursRepo() *fakeHoursRepo {
	return &fakeHoursRepo{}
}

func (r *fakeHoursRepo) Create(_ context.Context, record *models.HoursRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = primitive.NewObjectID()
	record.CreatedAt = time.Now()
	stored := *record
	r.records = append(r.records, &stored)
	return nil
}

func (r *fakeHoursRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.HoursRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.ID == id {
			copied := *record
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeHoursRepo) FindBySession(_ context.Context, contestID primitive.ObjectID, participantID, sessionID string) (*models.HoursRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.ContestID == contestID && record.ParticipantID == participantID && record.SessionID == sessionID {
			copied := *record
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeHoursRepo) FindByParticipant(_ context.Context, contestID primitive.ObjectID, participantID string) ([]*models.HoursRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var records []*models.HoursRecord
	for _, record := range r.records {
		if record.ContestID == contestID && record.ParticipantID == participantID {
			copied := *record
			records = append(records, &copied)
		}
	}
	return records, nil
}

func (r *fakeHoursRepo) SumValidOnDate(_ context.Context, contestID primitive.ObjectID, participantID, patrolDate string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, record := range r.records {
		if record.ContestID == contestID && record.ParticipantID == participantID &&
			record.PatrolDate == patrolDate && record.Valid {
			sum += record.TotalHours
		}
	}
	return sum, nil
}

func (r *fakeHoursRepo) SumValidTotals(_ context.Context, contestID primitive.ObjectID, participantID string) (repositories.HoursTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var totals repositories.HoursTotals
	for _, record := range r.records {
		if record.ContestID == contestID && record.ParticipantID == participantID && record.Valid {
			totals.TotalHours += record.TotalHours
			totals.AfternoonHours += record.AfternoonHours
			totals.NightHours += record.NightHours
		}
	}
	return totals, nil
}

func (r *fakeHoursRepo) Invalidate(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.ID == id {
			record.Valid = false
			return nil
		}
	}
	return nil
}

func (r *fakeHoursRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeParticipantRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{rows: make(map[string]*models.Participant)}
}

func summaryKey(contestID primitive.ObjectID, participantID string) string {
	return contestID.Hex() + ":" + participantID
}

func (r *fakeParticipantRepo) Upsert(_ context.Context, participant *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := summaryKey(participant.ContestID, participant.ParticipantID)
	existing, ok := r.rows[key]
	if !ok {
		stored := *participant
		stored.ID = primitive.NewObjectID()
		stored.AfternoonWinner = false
		stored.NightVipWinner = false
		stored.LastUpdated = time.Now()
		r.rows[key] = &stored
		return nil
	}
	existing.DisplayName = participant.DisplayName
	existing.TotalAfternoonHours = participant.TotalAfternoonHours
	existing.TotalNightHours = participant.TotalNightHours
	existing.TotalHours = participant.TotalHours
	existing.Eligible = participant.Eligible
	existing.AfternoonEligible = participant.AfternoonEligible
	existing.NightEligible = participant.NightEligible
	existing.LastUpdated = time.Now()
	return nil
}

func (r *fakeParticipantRepo) FindByContestAndParticipant(_ context.Context, contestID primitive.ObjectID, participantID string) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[summaryKey(contestID, participantID)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *row
	return &copied, nil
}

func (r *fakeParticipantRepo) findSorted(match func(*models.Participant) bool) []*models.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []*models.Participant
	for _, row := range r.rows {
		if match(row) {
			copied := *row
			rows = append(rows, &copied)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalHours != rows[j].TotalHours {
			return rows[i].TotalHours > rows[j].TotalHours
		}
		return rows[i].ParticipantID < rows[j].ParticipantID
	})
	return rows
}

func (r *fakeParticipantRepo) FindByContest(_ context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	return r.findSorted(func(p *models.Participant) bool {
		return p.ContestID == contestID
	}), nil
}

func (r *fakeParticipantRepo) FindEligible(_ context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	return r.findSorted(func(p *models.Participant) bool {
		return p.ContestID == contestID && p.Eligible
	}), nil
}

func (r *fakeParticipantRepo) FindAfternoonEligible(_ context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	return r.findSorted(func(p *models.Participant) bool {
		return p.ContestID == contestID && p.AfternoonEligible
	}), nil
}

func (r *fakeParticipantRepo) FindAfternoonEligibleNonWinners(_ context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	return r.findSorted(func(p *models.Participant) bool {
		return p.ContestID == contestID && p.AfternoonEligible && !p.AfternoonWinner
	}), nil
}

func (r *fakeParticipantRepo) FindNightEligible(_ context.Context, contestID primitive.ObjectID) ([]*models.Participant, error) {
	return r.findSorted(func(p *models.Participant) bool {
		return p.ContestID == contestID && p.NightEligible
	}), nil
}

func (r *fakeParticipantRepo) FindWinners(_ context.Context, contestID primitive.ObjectID, tier models.DrawTier) ([]*models.Participant, error) {
	return r.findSorted(func(p *models.Participant) bool {
		if p.ContestID != contestID {
			return false
		}
		if tier == models.TierNightVip {
			return p.NightVipWinner
		}
		return p.AfternoonWinner
	}), nil
}

func (r *fakeParticipantRepo) ResetWinners(_ context.Context, contestID primitive.ObjectID, tier models.DrawTier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ContestID != contestID {
			continue
		}
		if tier == models.TierNightVip {
			row.NightVipWinner = false
		} else {
			row.AfternoonWinner = false
		}
	}
	return nil
}

func (r *fakeParticipantRepo) MarkWinners(_ context.Context, contestID primitive.ObjectID, participantIDs []string, tier models.DrawTier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make(map[string]bool, len(participantIDs))
	for _, id := range participantIDs {
		ids[id] = true
	}
	for _, row := range r.rows {
		if row.ContestID != contestID || !ids[row.ParticipantID] {
			continue
		}
		if tier == models.TierNightVip {
			row.NightVipWinner = true
		} else {
			row.AfternoonWinner = true
		}
	}
	return nil
}

// seed inserts a summary row directly, bypassing the upsert rules.
func (r *fakeParticipantRepo) seed(row *models.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row.ID.IsZero() {
		row.ID = primitive.NewObjectID()
	}
	r.rows[summaryKey(row.ContestID, row.ParticipantID)] = row
}

type fakeOperatorRepo struct {
	mu        sync.Mutex
	operators map[string]*models.Operator
}

func newFakeOperatorRepo() *fakeOperatorRepo {
	return &fakeOperatorRepo{operators: make(map[string]*models.Operator)}
}

func (r *fakeOperatorRepo) Create(_ context.Context, operator *models.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if operator.ID.IsZero() {
		operator.ID = primitive.NewObjectID()
	}
	stored := *operator
	r.operators[operator.Email] = &stored
	return nil
}

func (r *fakeOperatorRepo) FindByEmail(_ context.Context, email string) (*models.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	operator, ok := r.operators[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *operator
	return &copied, nil
}

func (r *fakeOperatorRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.operators)), nil
}

var (
	_ repositories.ContestRepository     = (*fakeContestRepo)(nil)
	_ repositories.HoursRepository       = (*fakeHoursRepo)(nil)
	_ repositories.ParticipantRepository = (*fakeParticipantRepo)(nil)
	_ repositories.OperatorRepository    = (*fakeOperatorRepo)(nil)
)
