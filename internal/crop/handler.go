package crop

import (
	"net/http"

	"agroplan/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// POST /api/v1/fields
func (h *Handler) CreateField(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	field, err := h.service.CreateField(userID, &req)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, field)
}

// GET /api/v1/fields
func (h *Handler) ListFields(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	fields, err := h.service.ListFields(userID)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fields": fields, "total": len(fields)})
}

// GET /api/v1/fields/:id
func (h *Handler) GetField(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field ID"})
		return
	}

	field, err := h.service.GetField(id)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, field)
}

// POST /api/v1/crops
func (h *Handler) CreateCrop(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req CreateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	created, err := h.service.CreateCrop(userID, &req)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GET /api/v1/crops
func (h *Handler) ListCrops(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	crops, err := h.service.ListCrops(userID)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"crops": crops, "total": len(crops)})
}

// GET /api/v1/crops/:id
func (h *Handler) GetCrop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid crop ID"})
		return
	}

	found, err := h.service.GetCrop(id)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, found)
}

// PUT /api/v1/crops/:id/stage
func (h *Handler) AdvanceStage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid crop ID"})
		return
	}

	var req AdvanceStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	updated, err := h.service.AdvanceStage(id, req.Stage)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DELETE /api/v1/crops/:id
func (h *Handler) DeleteCrop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid crop ID"})
		return
	}

	if err := h.service.DeleteCrop(id); err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Crop deleted"})
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
