package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"github.com/gra-paradise/patrol-contest-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ContestHandler handles contest directory and participant query requests
type ContestHandler struct {
	contestService services.ContestService
	hoursService   services.HoursService
}

// NewContestHandler creates a new ContestHandler
func NewContestHandler(contestService services.ContestService, hoursService services.HoursService) *ContestHandler {
	return &ContestHandler{
		contestService: contestService,
		hoursService:   hoursService,
	}
}

// CreateContestRequest is the payload for POST /contests
type CreateContestRequest struct {
	GuildID          string         `json:"guild_id" binding:"required"`
	Title            string         `json:"title" binding:"required"`
	Description      string         `json:"description"`
	StartDate        string         `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate          string         `json:"end_date" binding:"required"`   // YYYY-MM-DD, inclusive
	RequiredHours    int            `json:"required_hours"`
	MaxDailyHours    float64        `json:"max_daily_hours"`
	Afternoon        *models.Period `json:"afternoon"`
	Night            *models.Period `json:"night"`
	AfternoonWinners int            `json:"afternoon_winners"`
	NightVipWinners  int            `json:"night_vip_winners"`
}

// CreateContest handles POST /contests
func (h *ContestHandler) CreateContest(c *gin.Context) {
	var request CreateContestRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := time.ParseInLocation("2006-01-02", request.StartDate, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date format (YYYY-MM-DD)"})
		return
	}
	endDate, err := time.ParseInLocation("2006-01-02", request.EndDate, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format (YYYY-MM-DD)"})
		return
	}

	contest := &models.Contest{
		GuildID:          request.GuildID,
		Title:            request.Title,
		Description:      request.Description,
		StartDate:        startDate,
		EndDate:          endDate.Add(24*time.Hour - time.Second), // inclusive end of day
		RequiredHours:    request.RequiredHours,
		MaxDailyHours:    request.MaxDailyHours,
		AfternoonWinners: request.AfternoonWinners,
		NightVipWinners:  request.NightVipWinners,
	}
	if request.Afternoon != nil {
		contest.Afternoon = *request.Afternoon
	}
	if request.Night != nil {
		contest.Night = *request.Night
	}
	if email, ok := c.Get("operatorEmail"); ok {
		contest.CreatedBy, _ = email.(string)
	}

	created, err := h.contestService.CreateContest(c.Request.Context(), contest)
	if err != nil {
		if errors.Is(err, services.ErrActiveContestExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create contest: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetContest handles GET /contests/:id
func (h *ContestHandler) GetContest(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	contest, err := h.contestService.GetContest(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contest not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contest: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, contest)
}

// GetActiveContest handles GET /contests/active/:guildId
func (h *ContestHandler) GetActiveContest(c *gin.Context) {
	contest, err := h.contestService.GetActiveContest(c.Request.Context(), c.Param("guildId"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No active contest for guild"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contest: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, contest)
}

// ListContests handles GET /contests/guild/:guildId
func (h *ContestHandler) ListContests(c *gin.Context) {
	contests, err := h.contestService.ListContests(c.Request.Context(), c.Param("guildId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contests: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, contests)
}

// DeactivateContest handles POST /contests/:id/deactivate
func (h *ContestHandler) DeactivateContest(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	contest, err := h.contestService.DeactivateContest(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contest not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate contest: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, contest)
}

// GetParticipant handles GET /contests/:id/participants/:participantId
func (h *ContestHandler) GetParticipant(c *gin.Context) {
	contestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	participant, err := h.hoursService.GetParticipant(c.Request.Context(), contestID, c.Param("participantId"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve participant: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, participant)
}

// GetEligible handles GET /contests/:id/eligible
func (h *ContestHandler) GetEligible(c *gin.Context) {
	contestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	participants, err := h.hoursService.GetEligible(c.Request.Context(), contestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve eligible participants: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, participants)
}

// GetLeaderboard handles GET /contests/:id/leaderboard
func (h *ContestHandler) GetLeaderboard(c *gin.Context) {
	contestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	participants, err := h.hoursService.GetLeaderboard(c.Request.Context(), contestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leaderboard: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, participants)
}

// GetParticipantRecords handles GET /contests/:id/participants/:participantId/records
func (h *ContestHandler) GetParticipantRecords(c *gin.Context) {
	contestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	records, err := h.hoursService.GetParticipantRecords(c.Request.Context(), contestID, c.Param("participantId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve records: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}
