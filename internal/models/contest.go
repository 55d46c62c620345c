package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Period is a named daily time window, expressed as local wall-clock
// times in "15:04" format. End at or before Start means the window
// crosses midnight, except End == Start which is a zero-width window.
type Period struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// Contest represents a patrol contest scoped to a single guild.
// Core fields are immutable after creation; only the Active flag and
// participant winner flags change afterwards.
type Contest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	GuildID     string             `bson:"guildId" json:"guildId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	StartDate   time.Time          `bson:"startDate" json:"startDate"`
	EndDate     time.Time          `bson:"endDate" json:"endDate"`

	// Reward requirements
	RequiredHours int     `bson:"requiredHours" json:"requiredHours"`
	MaxDailyHours float64 `bson:"maxDailyHours" json:"maxDailyHours"`

	// Reward periods
	Afternoon Period `bson:"afternoon" json:"afternoon"`
	Night     Period `bson:"night" json:"night"`

	// Draw sizes
	AfternoonWinners int `bson:"afternoonWinners" json:"afternoonWinners"`
	NightVipWinners  int `bson:"nightVipWinners" json:"nightVipWinners"`

	Active    bool      `bson:"active" json:"active"`
	CreatedBy string    `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Default contest configuration, matching the long-running event rules.
const (
	DefaultRequiredHours    = 18
	DefaultMaxDailyHours    = 4.5
	DefaultAfternoonWinners = 3
	DefaultNightVipWinners  = 2
)

// DefaultAfternoonPeriod returns the standard afternoon reward window.
func DefaultAfternoonPeriod() Period {
	return Period{Start: "13:00", End: "18:00"}
}

// DefaultNightPeriod returns the standard night reward window, which
// crosses midnight.
func DefaultNightPeriod() Period {
	return Period{Start: "19:00", End: "00:00"}
}
