package activity

import (
	"net/http"

	"agroplan/internal/common"
	"agroplan/internal/crop"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
	crops   *crop.Service
}

func NewHandler(service *Service, crops *crop.Service) *Handler {
	return &Handler{service: service, crops: crops}
}

// POST /api/v1/activities
func (h *Handler) CreateActivity(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	cr, err := h.crops.GetCrop(req.CropID)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	if cr.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Crop belongs to another user"})
		return
	}

	act, err := h.service.CreateWithReservations(userID, cr.FieldID, nil, &req)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, act)
}

// GET /api/v1/activities?status=pending
func (h *Handler) ListActivities(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	activities, err := h.service.ListByUser(userID, c.Query("status"))
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities, "total": len(activities)})
}

// GET /api/v1/crops/:id/activities
func (h *Handler) ListCropActivities(c *gin.Context) {
	cropID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid crop ID"})
		return
	}

	activities, err := h.service.ListByCrop(cropID)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities, "total": len(activities)})
}

// GET /api/v1/activities/:id
func (h *Handler) GetActivity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activity ID"})
		return
	}

	act, err := h.service.GetActivity(id)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, act)
}

// PUT /api/v1/activities/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activity ID"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	act, err := h.service.UpdateStatus(id, &req)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, act)
}

// DELETE /api/v1/activities/:id
func (h *Handler) DeleteActivity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activity ID"})
		return
	}

	if err := h.service.DeleteActivity(id); err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Activity deleted"})
}

func getUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, common.NewValidationError("user_id", "not authenticated")
	}
	id, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, common.NewValidationError("user_id", "invalid user context")
	}
	return id, nil
}
