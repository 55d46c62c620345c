package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gra-paradise/patrol-contest-backend/internal/models"
	"github.com/gra-paradise/patrol-contest-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LotteryHandler handles lottery draw requests
type LotteryHandler struct {
	lotteryService services.LotteryService
}

// NewLotteryHandler creates a new LotteryHandler
func NewLotteryHandler(lotteryService services.LotteryService) *LotteryHandler {
	return &LotteryHandler{lotteryService: lotteryService}
}

// DrawAfternoon handles POST /contests/:id/draws/afternoon
func (h *LotteryHandler) DrawAfternoon(c *gin.Context) {
	contestID, ok := h.contestID(c)
	if !ok {
		return
	}
	winners, err := h.lotteryService.DrawAfternoon(c.Request.Context(), contestID)
	if err != nil {
		h.drawError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tier": "AFTERNOON", "winners": winners})
}

// DrawNightVip handles POST /contests/:id/draws/night-vip
func (h *LotteryHandler) DrawNightVip(c *gin.Context) {
	contestID, ok := h.contestID(c)
	if !ok {
		return
	}
	winners, err := h.lotteryService.DrawNightVip(c.Request.Context(), contestID)
	if err != nil {
		h.drawError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tier": "NIGHT_VIP", "winners": winners})
}

// DrawFull handles POST /contests/:id/draws/full
func (h *LotteryHandler) DrawFull(c *gin.Context) {
	contestID, ok := h.contestID(c)
	if !ok {
		return
	}
	result, err := h.lotteryService.DrawFull(c.Request.Context(), contestID)
	if err != nil {
		h.drawError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetWinners handles GET /contests/:id/winners. An optional ?tier= query
// narrows the response to one tier; without it both tiers are returned.
func (h *LotteryHandler) GetWinners(c *gin.Context) {
	contestID, ok := h.contestID(c)
	if !ok {
		return
	}

	switch c.Query("tier") {
	case "":
		afternoon, err := h.lotteryService.GetWinners(c.Request.Context(), contestID, models.TierAfternoon)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve winners: " + err.Error()})
			return
		}
		nightVip, err := h.lotteryService.GetWinners(c.Request.Context(), contestID, models.TierNightVip)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve winners: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, &models.LotteryResult{AfternoonWinners: afternoon, NightVipWinners: nightVip})
	case "afternoon":
		winners, err := h.lotteryService.GetWinners(c.Request.Context(), contestID, models.TierAfternoon)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve winners: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tier": "AFTERNOON", "winners": winners})
	case "night-vip":
		winners, err := h.lotteryService.GetWinners(c.Request.Context(), contestID, models.TierNightVip)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve winners: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tier": "NIGHT_VIP", "winners": winners})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown tier, expected afternoon or night-vip"})
	}
}

// HasDrawnWinners handles GET /contests/:id/winners/drawn
func (h *LotteryHandler) HasDrawnWinners(c *gin.Context) {
	contestID, ok := h.contestID(c)
	if !ok {
		return
	}
	drawn, err := h.lotteryService.HasDrawnWinners(c.Request.Context(), contestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check winners: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"drawn": drawn})
}

func (h *LotteryHandler) contestID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *LotteryHandler) drawError(c *gin.Context, err error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contest not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Draw failed: " + err.Error()})
}
