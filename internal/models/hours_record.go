package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PatrolPeriod classifies where the bulk of a session's clipped hours fell.
type PatrolPeriod string

const (
	PeriodAfternoon PatrolPeriod = "AFTERNOON"
	PeriodNight     PatrolPeriod = "NIGHT"
	PeriodMixed     PatrolPeriod = "MIXED"
	PeriodOther     PatrolPeriod = "OTHER"
)

// HoursRecord is one ledger entry: the hours credited to a participant
// for a single closed session. Records are append-only; Valid is flipped
// to false instead of deleting so the audit trail survives.
//
// Invariant: AfternoonHours + NightHours <= TotalHours <= SessionHours.
type HoursRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ContestID     primitive.ObjectID `bson:"contestId" json:"contestId"`
	ParticipantID string             `bson:"participantId" json:"participantId"`
	DisplayName   string             `bson:"displayName" json:"displayName"`

	// SessionID guards idempotency: one record per session per participant.
	SessionID string `bson:"sessionId" json:"sessionId"`

	// PatrolDate is the session's local start date, "2006-01-02".
	PatrolDate string    `bson:"patrolDate" json:"patrolDate"`
	StartTime  time.Time `bson:"startTime" json:"startTime"`
	EndTime    time.Time `bson:"endTime" json:"endTime"`

	// SessionHours is the raw session duration; TotalHours is what
	// actually counts toward the contest after the daily cap.
	SessionHours   float64 `bson:"sessionHours" json:"sessionHours"`
	TotalHours     float64 `bson:"totalHours" json:"totalHours"`
	AfternoonHours float64 `bson:"afternoonHours" json:"afternoonHours"`
	NightHours     float64 `bson:"nightHours" json:"nightHours"`

	PrimaryPeriod PatrolPeriod `bson:"primaryPeriod" json:"primaryPeriod"`
	Valid         bool         `bson:"valid" json:"valid"`
	CreatedAt     time.Time    `bson:"createdAt" json:"createdAt"`
}

// ClassifyPeriod derives the primary period from clipped hours.
func ClassifyPeriod(afternoonHours, nightHours float64) PatrolPeriod {
	switch {
	case afternoonHours > nightHours:
		return PeriodAfternoon
	case nightHours > afternoonHours:
		return PeriodNight
	case afternoonHours > 0:
		return PeriodMixed
	default:
		return PeriodOther
	}
}
