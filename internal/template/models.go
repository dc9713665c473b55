package template

import (
	"time"

	"agroplan/internal/common"

	"github.com/google/uuid"
)

// ActivityTemplate is a reusable definition of one farming activity, tied to a
// crop stage and season. A nil UserID marks a system default template; user
// templates override defaults per activity type during resolution.
type ActivityTemplate struct {
	common.BaseModel
	UserID         *uuid.UUID          `json:"user_id,omitempty" gorm:"type:uuid;index:idx_templates_user_stage"`
	ActivityType   common.ActivityType `json:"activity_type" gorm:"not null;size:50;index"`
	Stage          common.Stage        `json:"stage" gorm:"size:50;index:idx_templates_user_stage"`
	SeasonSpecific common.Season       `json:"season_specific,omitempty" gorm:"size:20"`
	DayOffset      int                 `json:"day_offset" gorm:"default:0"`
	DurationDays   int                 `json:"duration_days" gorm:"default:0"`
	Name           string              `json:"name" gorm:"not null;size:120"`
	Description    string              `json:"description" gorm:"type:text"`

	Materials []TemplateMaterialLine `json:"materials" gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`
}

func (ActivityTemplate) TableName() string {
	return "activity_templates"
}

// IsDefault reports whether the template is a system default (no owner).
func (t *ActivityTemplate) IsDefault() bool {
	return t.UserID == nil
}

// AppliesTo reports whether the template is usable for the given season.
// Templates without a season restriction apply to all seasons.
func (t *ActivityTemplate) AppliesTo(season common.Season) bool {
	return t.SeasonSpecific == "" || t.SeasonSpecific == season
}

// TemplateMaterialLine associates a template with a material and the base
// quantity consumed per hectare. MaterialName and Unit are denormalized from
// the material for display in previews.
type TemplateMaterialLine struct {
	common.BaseModel
	TemplateID             uuid.UUID `json:"template_id" gorm:"type:uuid;not null;index"`
	MaterialID             uuid.UUID `json:"material_id" gorm:"type:uuid;not null;index"`
	MaterialName           string    `json:"material_name" gorm:"size:120"`
	BaseQuantityPerHectare float64   `json:"base_quantity_per_hectare" gorm:"not null"`
	Unit                   string    `json:"unit" gorm:"size:20"`
}

func (TemplateMaterialLine) TableName() string {
	return "template_material_lines"
}

// CreateTemplateRequest - request payloads for the template endpoints
type CreateTemplateRequest struct {
	ActivityType   common.ActivityType   `json:"activity_type" binding:"required"`
	Stage          common.Stage          `json:"stage"`
	SeasonSpecific common.Season         `json:"season_specific"`
	DayOffset      int                   `json:"day_offset"`
	DurationDays   int                   `json:"duration_days"`
	Name           string                `json:"name" binding:"required"`
	Description    string                `json:"description"`
	IsDefault      bool                  `json:"is_default"`
	Materials      []MaterialLineRequest `json:"materials"`
}

type MaterialLineRequest struct {
	MaterialID             uuid.UUID `json:"material_id" binding:"required"`
	BaseQuantityPerHectare float64   `json:"base_quantity_per_hectare" binding:"required,gt=0"`
	Unit                   string    `json:"unit"`
}

type UpdateTemplateRequest struct {
	SeasonSpecific *common.Season        `json:"season_specific"`
	DayOffset      *int                  `json:"day_offset"`
	DurationDays   *int                  `json:"duration_days"`
	Name           *string               `json:"name"`
	Description    *string               `json:"description"`
	Materials      []MaterialLineRequest `json:"materials"`
}

// cached default-template entries carry the time they were stored so stale
// payloads can be aged out even without redis TTL support
type cachedTemplates struct {
	Templates []ActivityTemplate `json:"templates"`
	CachedAt  time.Time          `json:"cached_at"`
}
