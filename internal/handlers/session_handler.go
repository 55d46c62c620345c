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

// SessionHandler handles session-closed ingestion and hours record management
type SessionHandler struct {
	hoursService services.HoursService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(hoursService services.HoursService) *SessionHandler {
	return &SessionHandler{hoursService: hoursService}
}

// CloseSession handles POST /sessions/close. Events that fall outside any
// active contest window, or carry a non-positive duration, are acknowledged
// and dropped rather than rejected, so collaborators never have to care
// whether a contest is running.
func (h *SessionHandler) CloseSession(c *gin.Context) {
	var event models.SessionClosedEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.hoursService.RecordSession(c.Request.Context(), &event)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record session: " + err.Error()})
		return
	}
	if record == nil {
		c.JSON(http.StatusOK, gin.H{"recorded": false})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recorded": true, "record": record})
}

// InvalidateRecord handles POST /hours/:id/invalidate
func (h *SessionHandler) InvalidateRecord(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	record, err := h.hoursService.InvalidateRecord(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hours record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate record: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, record)
}
