package plan

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

// POST /api/v1/plans/preview
func (h *Handler) GeneratePreview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req GeneratePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	preview, err := h.service.GeneratePreview(userID, &req)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, preview)
}

// GET /api/v1/crops/:id/plan
func (h *Handler) PreviewForCrop(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	cropID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid crop ID"})
		return
	}

	preview, err := h.service.PreviewForCrop(userID, cropID)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, preview)
}

// POST /api/v1/plans/confirm
func (h *Handler) ConfirmPlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req ConfirmPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.service.ConfirmPlan(userID, &req)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	status := http.StatusCreated
	if len(result.Created) == 0 && len(result.Failures) > 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// POST /api/v1/plans/apply-template
func (h *Handler) ApplyTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req ApplyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	act, err := h.service.ApplyTemplate(userID, &req)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, act)
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
