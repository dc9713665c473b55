package plan

import (
	"time"

	"agroplan/internal/activity"
	"agroplan/internal/common"

	"github.com/google/uuid"
)

// PreviewActivity is one proposed activity in a generated plan. It carries
// its originating template ID so confirmation can recompute material
// quantities server-side.
type PreviewActivity struct {
	TemplateID   uuid.UUID           `json:"template_id"`
	ActivityType common.ActivityType `json:"activity_type"`
	Stage        common.Stage        `json:"stage"`
	Name         string              `json:"name"`
	Description  string              `json:"description,omitempty"`
	StartDate    time.Time           `json:"start_date"`
	EndDate      time.Time           `json:"end_date"`
	Materials    []ScaledMaterial    `json:"materials,omitempty"`
}

// Preview is the full generated plan: date-ordered activities plus a merged
// material summary across the whole plan.
type Preview struct {
	CropID     uuid.UUID         `json:"crop_id,omitempty"`
	FieldID    uuid.UUID         `json:"field_id"`
	AreaHa     float64           `json:"area_ha"`
	SeasonType common.Season     `json:"season_type"`
	Activities []PreviewActivity `json:"activities"`
	Materials  []ScaledMaterial  `json:"materials"`
}

type GeneratePreviewRequest struct {
	FieldID      uuid.UUID     `json:"field_id"`
	PlantingDate time.Time     `json:"planting_date"`
	FieldArea    float64       `json:"field_area"`
	SeasonType   common.Season `json:"season_type" binding:"required"`
	CurrentStage common.Stage  `json:"current_stage"`
}

// ConfirmActivityParams is one (possibly user-edited) preview entry sent back
// for confirmation. When TemplateID is set, materials are recomputed from the
// template; otherwise Materials is used verbatim.
type ConfirmActivityParams struct {
	TemplateID   *uuid.UUID               `json:"template_id"`
	ActivityType common.ActivityType      `json:"activity_type" binding:"required"`
	Stage        common.Stage             `json:"stage"`
	Name         string                   `json:"name" binding:"required"`
	Description  string                   `json:"description"`
	StartDate    time.Time                `json:"start_date" binding:"required"`
	EndDate      time.Time                `json:"end_date"`
	Materials    []activity.MaterialInput `json:"materials"`
}

type ConfirmPlanRequest struct {
	CropID     uuid.UUID               `json:"crop_id" binding:"required"`
	Activities []ConfirmActivityParams `json:"activities" binding:"required"`
}

// ConfirmFailure records one activity that could not be created during a
// bulk confirmation. The rest of the plan proceeds regardless.
type ConfirmFailure struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

type ConfirmResult struct {
	Created  []activity.Activity `json:"created"`
	Failures []ConfirmFailure    `json:"failures"`
}

type ApplyTemplateRequest struct {
	CropID     uuid.UUID `json:"crop_id" binding:"required"`
	TemplateID uuid.UUID `json:"template_id" binding:"required"`
}
