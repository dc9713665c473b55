package inventory

import (
	"fmt"
	"net/http"
	"time"

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

// POST /api/v1/materials
func (h *Handler) CreateMaterial(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	m, err := h.service.CreateMaterial(userID, &req)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, m)
}

// GET /api/v1/materials
func (h *Handler) ListMaterials(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	materials, err := h.service.ListMaterials(userID)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"materials": materials, "total": len(materials)})
}

// GET /api/v1/materials/:id
func (h *Handler) GetMaterial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid material ID"})
		return
	}

	m, err := h.service.GetMaterial(id)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, m)
}

// POST /api/v1/materials/:id/transactions
func (h *Handler) RecordTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid material ID"})
		return
	}

	var req RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	entry, err := h.service.RecordTransaction(id, req.TransactionType, req.Quantity, req.Note)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GET /api/v1/materials/:id/transactions
func (h *Handler) ListTransactions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid material ID"})
		return
	}

	txs, err := h.service.ListTransactions(id)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs, "total": len(txs)})
}

// GET /api/v1/materials/:id/audit
func (h *Handler) Audit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid material ID"})
		return
	}

	report, err := h.service.Audit(id)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// POST /api/v1/materials/:id/repair
func (h *Handler) Repair(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid material ID"})
		return
	}

	report, err := h.service.Repair(id)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GET /api/v1/materials/export
func (h *Handler) Export(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	f, err := h.service.ExportXLSX(userID)
	if err != nil {
		c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write workbook"})
		return
	}
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
