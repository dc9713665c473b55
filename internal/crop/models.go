package crop

import (
	"time"

	"agroplan/internal/common"

	"github.com/google/uuid"
)

// Crop status lifecycle
const (
	StatusPlanning   = "planning"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Field is a physical plot. AreaSqm is kept in square meters; the plan
// generator converts to hectares when scaling material quantities.
type Field struct {
	common.BaseModel
	UserID   uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Name     string    `json:"name" gorm:"not null;size:120"`
	AreaSqm  float64   `json:"area_sqm" gorm:"not null;default:0"`
	SoilType string    `json:"soil_type" gorm:"size:50"`
	Location string    `json:"location" gorm:"size:255"`
}

func (Field) TableName() string {
	return "fields"
}

// Crop is one planting cycle on a field.
type Crop struct {
	common.BaseModel
	FieldID       uuid.UUID     `json:"field_id" gorm:"type:uuid;not null;index"`
	UserID        uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	Variety       string        `json:"variety" gorm:"size:120"`
	Source        string        `json:"source" gorm:"size:120"`
	ExpectedYield float64       `json:"expected_yield"`
	PlantingDate  time.Time     `json:"planting_date" gorm:"not null"`
	FieldArea     float64       `json:"field_area"`
	SeasonType    common.Season `json:"season_type" gorm:"size:20"`
	CurrentStage  common.Stage  `json:"current_stage" gorm:"size:50"`
	Status        string        `json:"status" gorm:"size:20;default:planning;index"`
}

func (Crop) TableName() string {
	return "crops"
}

type CreateFieldRequest struct {
	Name     string  `json:"name" binding:"required"`
	AreaSqm  float64 `json:"area_sqm" binding:"required,gt=0"`
	SoilType string  `json:"soil_type"`
	Location string  `json:"location"`
}

type CreateCropRequest struct {
	FieldID       uuid.UUID     `json:"field_id" binding:"required"`
	Variety       string        `json:"variety"`
	Source        string        `json:"source"`
	ExpectedYield float64       `json:"expected_yield"`
	PlantingDate  time.Time     `json:"planting_date" binding:"required"`
	SeasonType    common.Season `json:"season_type" binding:"required"`
	CurrentStage  common.Stage  `json:"current_stage"`
}

type AdvanceStageRequest struct {
	Stage common.Stage `json:"stage" binding:"required"`
}
