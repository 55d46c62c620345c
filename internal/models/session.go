package models

import "time"

// SessionClosedEvent is the inbound event emitted when a patrol session
// finishes. Delivery is at-least-once; the ledger deduplicates on
// SessionID per participant.
type SessionClosedEvent struct {
	GuildID       string    `json:"guildId" binding:"required"`
	SessionID     string    `json:"sessionId" binding:"required"`
	ParticipantID string    `json:"participantId" binding:"required"`
	DisplayName   string    `json:"displayName"`
	StartTime     time.Time `json:"startTime" binding:"required"`
	EndTime       time.Time `json:"endTime" binding:"required"`
}

// DrawTier identifies which reward tier a draw command targets.
type DrawTier string

const (
	TierAfternoon DrawTier = "AFTERNOON"
	TierNightVip  DrawTier = "NIGHT_VIP"
)

// LotteryResult bundles the winners of a full lottery run.
type LotteryResult struct {
	AfternoonWinners []*Participant `json:"afternoonWinners"`
	NightVipWinners  []*Participant `json:"nightVipWinners"`
}

// TotalWinners returns the combined winner count across both tiers.
func (r *LotteryResult) TotalWinners() int {
	return len(r.AfternoonWinners) + len(r.NightVipWinners)
}
