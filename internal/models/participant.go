package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant is the materialized per-(contest, participant) summary row.
// Totals are always recomputed from valid HoursRecord rows and are never
// an independent source of truth. Winner flags are owned by the lottery.
type Participant struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ContestID     primitive.ObjectID `bson:"contestId" json:"contestId"`
	ParticipantID string             `bson:"participantId" json:"participantId"`
	DisplayName   string             `bson:"displayName" json:"displayName"`

	TotalAfternoonHours float64 `bson:"totalAfternoonHours" json:"totalAfternoonHours"`
	TotalNightHours     float64 `bson:"totalNightHours" json:"totalNightHours"`
	TotalHours          float64 `bson:"totalHours" json:"totalHours"`

	Eligible          bool `bson:"eligible" json:"eligible"`
	AfternoonEligible bool `bson:"afternoonEligible" json:"afternoonEligible"`
	NightEligible     bool `bson:"nightEligible" json:"nightEligible"`

	AfternoonWinner bool `bson:"afternoonWinner" json:"afternoonWinner"`
	NightVipWinner  bool `bson:"nightVipWinner" json:"nightVipWinner"`

	LastUpdated time.Time `bson:"lastUpdated" json:"lastUpdated"`
}
