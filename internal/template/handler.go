package template

import (
	"net/http"

	"agroplan/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for activity templates
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListTemplates returns the user's templates plus the system defaults,
// optionally narrowed to one activity type
// GET /api/v1/templates?activity_type=planting
func (h *Handler) ListTemplates(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var templates []ActivityTemplate
	if raw := c.Query("activity_type"); raw != "" {
		activityType := common.ActivityType(raw)
		if !activityType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown activity type"})
			return
		}
		templates, err = h.service.ByActivityType(activityType)
	} else {
		templates, err = h.service.ListTemplates(userID)
	}
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates, "total": len(templates)})
}

// GetTemplate returns one template with its material lines
// GET /api/v1/templates/:id
func (h *Handler) GetTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}

	tmpl, err := h.service.GetTemplate(id)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

// CreateTemplate creates a user template (or a default with is_default)
// POST /api/v1/templates
func (h *Handler) CreateTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	tmpl, err := h.service.CreateTemplate(userID, &req)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, tmpl)
}

// UpdateTemplate updates fields and optionally replaces material lines
// PUT /api/v1/templates/:id
func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}

	var req UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	tmpl, err := h.service.UpdateTemplate(id, &req)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

// DeleteTemplate removes a template and its material lines
// DELETE /api/v1/templates/:id
func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}

	if err := h.service.DeleteTemplate(id); err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
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
