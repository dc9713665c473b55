package inventory

import (
	"encoding/json"

	"agroplan/internal/common"

	"github.com/google/uuid"
)

// Transaction types for the append-only ledger
const (
	TxPurchase   = "purchase"
	TxAdjustment = "adjustment"
)

// Reservation lifecycle
const (
	ReservationActive    = "active"
	ReservationCompleted = "completed"
	ReservationReleased  = "released"
)

// Material is a stocked input (fertilizer, pesticide, ...). Quantity is the
// on-hand counter, ReservedQuantity the sum of planned usage of pending
// activities. Availability is always derived, never stored.
type Material struct {
	common.BaseModel
	UserID           uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Name             string    `json:"name" gorm:"not null;size:120"`
	Unit             string    `json:"unit" gorm:"size:20"`
	Category         string    `json:"category" gorm:"size:50"`
	Quantity         float64   `json:"quantity" gorm:"not null;default:0"`
	ReservedQuantity float64   `json:"reserved_quantity" gorm:"not null;default:0"`
}

func (Material) TableName() string {
	return "materials"
}

// AvailableQuantity is the only way availability exists in this system.
func (m *Material) AvailableQuantity() float64 {
	return m.Quantity - m.ReservedQuantity
}

// MarshalJSON adds the derived available_quantity to API payloads.
func (m Material) MarshalJSON() ([]byte, error) {
	type alias Material
	return json.Marshal(struct {
		alias
		AvailableQuantity float64 `json:"available_quantity"`
	}{
		alias:             alias(m),
		AvailableQuantity: m.Quantity - m.ReservedQuantity,
	})
}

// MaterialTransaction is an append-only ledger entry. Purchases are positive;
// adjustments carry their sign. The sum of all entries minus completed
// consumption is the authoritative on-hand quantity.
type MaterialTransaction struct {
	common.BaseModel
	MaterialID      uuid.UUID `json:"material_id" gorm:"type:uuid;not null;index"`
	TransactionType string    `json:"transaction_type" gorm:"not null;size:20"`
	Quantity        float64   `json:"quantity" gorm:"not null"`
	Note            string    `json:"note" gorm:"size:255"`
}

func (MaterialTransaction) TableName() string {
	return "material_transactions"
}

// MaterialReservation is a claim against a material tied to one pending
// activity. ActualQuantity stays nil until the activity completes.
type MaterialReservation struct {
	common.BaseModel
	ActivityID      uuid.UUID `json:"activity_id" gorm:"type:uuid;not null;index"`
	MaterialID      uuid.UUID `json:"material_id" gorm:"type:uuid;not null;index"`
	PlannedQuantity float64   `json:"planned_quantity" gorm:"not null"`
	ActualQuantity  *float64  `json:"actual_quantity,omitempty"`
	Status          string    `json:"status" gorm:"size:20;default:active;index"`
}

func (MaterialReservation) TableName() string {
	return "material_reservations"
}

type CreateMaterialRequest struct {
	Name     string `json:"name" binding:"required"`
	Unit     string `json:"unit" binding:"required"`
	Category string `json:"category"`
}

type RecordTransactionRequest struct {
	TransactionType string  `json:"transaction_type" binding:"required"`
	Quantity        float64 `json:"quantity" binding:"required"`
	Note            string  `json:"note"`
}

// AuditReport compares the stored counters of one material against the values
// recomputed from transactions and reservations.
type AuditReport struct {
	MaterialID       uuid.UUID `json:"material_id"`
	Name             string    `json:"name"`
	StoredQuantity   float64   `json:"stored_quantity"`
	ComputedQuantity float64   `json:"computed_quantity"`
	StoredReserved   float64   `json:"stored_reserved"`
	ComputedReserved float64   `json:"computed_reserved"`
	Consistent       bool      `json:"consistent"`
}
