package activity

import (
	"time"

	"agroplan/internal/common"

	"github.com/google/uuid"
)

// Activity status lifecycle
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Activity is one scheduled piece of work on a crop. TemplateID points at the
// template the activity was generated from, so confirmation can recompute
// material quantities server-side instead of trusting the client.
type Activity struct {
	common.BaseModel
	CropID       uuid.UUID           `json:"crop_id" gorm:"type:uuid;not null;index"`
	FieldID      uuid.UUID           `json:"field_id" gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID           `json:"user_id" gorm:"type:uuid;not null;index"`
	TemplateID   *uuid.UUID          `json:"template_id,omitempty" gorm:"type:uuid"`
	ActivityType common.ActivityType `json:"activity_type" gorm:"not null;size:50"`
	Stage        common.Stage        `json:"stage" gorm:"size:50;index"`
	Name         string              `json:"name" gorm:"not null;size:120"`
	Description  string              `json:"description" gorm:"type:text"`
	StartDate    time.Time           `json:"start_date" gorm:"not null;index"`
	EndDate      time.Time           `json:"end_date" gorm:"not null"`
	Status       string              `json:"status" gorm:"size:20;default:pending;index"`

	ActualNotes          string     `json:"actual_notes,omitempty" gorm:"type:text"`
	ActualCompletionDate *time.Time `json:"actual_completion_date,omitempty"`
}

func (Activity) TableName() string {
	return "activities"
}

// Pending reports whether the activity still holds active reservations.
func (a *Activity) Pending() bool {
	return a.Status == StatusPending || a.Status == StatusInProgress
}

// MaterialInput is one material requirement handed to CreateWithReservations.
type MaterialInput struct {
	MaterialID uuid.UUID `json:"material_id" binding:"required"`
	Quantity   float64   `json:"quantity" binding:"required,gt=0"`
	Unit       string    `json:"unit"`
}

type CreateActivityRequest struct {
	CropID       uuid.UUID           `json:"crop_id" binding:"required"`
	ActivityType common.ActivityType `json:"activity_type" binding:"required"`
	Stage        common.Stage        `json:"stage"`
	Name         string              `json:"name" binding:"required"`
	Description  string              `json:"description"`
	StartDate    time.Time           `json:"start_date" binding:"required"`
	EndDate      time.Time           `json:"end_date"`
	Materials    []MaterialInput     `json:"materials"`
}

// UpdateStatusRequest drives the status transitions. Actuals are only read on
// the transition to completed; each entry overrides the planned quantity of
// the matching reservation.
type UpdateStatusRequest struct {
	Status               string       `json:"status" binding:"required"`
	ActualNotes          string       `json:"actual_notes"`
	ActualCompletionDate *time.Time   `json:"actual_completion_date"`
	ActualMaterials      []ActualLine `json:"actual_materials"`
}

type ActualLine struct {
	MaterialID uuid.UUID `json:"material_id" binding:"required"`
	Quantity   float64   `json:"quantity" binding:"required,gte=0"`
}
