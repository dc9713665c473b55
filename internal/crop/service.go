package crop

import (
	"fmt"

	"agroplan/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityPurger removes a crop's activities and releases their outstanding
// reservations. Implemented by the activity service and injected at wiring
// time to keep this package below the activity layer.
type ActivityPurger interface {
	PurgeCropActivities(cropID uuid.UUID) error
}

type Service struct {
	db     *gorm.DB
	purger ActivityPurger
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SetActivityPurger wires the activity layer in. Without it, crop deletion
// refuses to run rather than strand reservations.
func (s *Service) SetActivityPurger(p ActivityPurger) {
	s.purger = p
}

// =============================================
// FIELDS
// =============================================

func (s *Service) CreateField(userID uuid.UUID, req *CreateFieldRequest) (*Field, error) {
	field := &Field{
		UserID:   userID,
		Name:     req.Name,
		AreaSqm:  req.AreaSqm,
		SoilType: req.SoilType,
		Location: req.Location,
	}
	if err := s.db.Create(field).Error; err != nil {
		return nil, fmt.Errorf("failed to create field: %w", err)
	}
	return field, nil
}

func (s *Service) GetField(id uuid.UUID) (*Field, error) {
	var field Field
	if err := s.db.Where("id = ?", id).First(&field).Error; err != nil {
		return nil, fmt.Errorf("failed to get field: %w", err)
	}
	return &field, nil
}

func (s *Service) ListFields(userID uuid.UUID) ([]Field, error) {
	var fields []Field
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&fields).Error; err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	return fields, nil
}

// GetFieldArea returns a field's area in square meters.
func (s *Service) GetFieldArea(fieldID uuid.UUID) (float64, error) {
	field, err := s.GetField(fieldID)
	if err != nil {
		return 0, err
	}
	return field.AreaSqm, nil
}

// =============================================
// CROPS
// =============================================

func (s *Service) CreateCrop(userID uuid.UUID, req *CreateCropRequest) (*Crop, error) {
	if !req.SeasonType.Valid() {
		return nil, common.NewValidationError("season_type", "unknown season")
	}

	field, err := s.GetField(req.FieldID)
	if err != nil {
		return nil, fmt.Errorf("field not found: %w", err)
	}

	stage := req.CurrentStage
	if stage == "" {
		stage = common.StagePreparation
	}

	c := &Crop{
		FieldID:       field.ID,
		UserID:        userID,
		Variety:       req.Variety,
		Source:        req.Source,
		ExpectedYield: req.ExpectedYield,
		PlantingDate:  req.PlantingDate,
		FieldArea:     field.AreaSqm,
		SeasonType:    req.SeasonType,
		CurrentStage:  stage,
		Status:        StatusPlanning,
	}
	if err := s.db.Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create crop: %w", err)
	}
	return c, nil
}

func (s *Service) GetCrop(id uuid.UUID) (*Crop, error) {
	var c Crop
	if err := s.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to get crop: %w", err)
	}
	return &c, nil
}

func (s *Service) ListCrops(userID uuid.UUID) ([]Crop, error) {
	var crops []Crop
	if err := s.db.Where("user_id = ?", userID).Order("planting_date DESC").Find(&crops).Error; err != nil {
		return nil, fmt.Errorf("failed to list crops: %w", err)
	}
	return crops, nil
}

// AdvanceStage moves the crop to a new stage and flips planning crops to
// in_progress. Stage ordering is not enforced here; the caller owns it.
func (s *Service) AdvanceStage(id uuid.UUID, stage common.Stage) (*Crop, error) {
	c, err := s.GetCrop(id)
	if err != nil {
		return nil, err
	}
	if c.Status == StatusCompleted || c.Status == StatusCancelled {
		return nil, fmt.Errorf("crop %s is %s: %w", id, c.Status, common.ErrInvalidState)
	}

	updates := map[string]interface{}{"current_stage": stage}
	if c.Status == StatusPlanning {
		updates["status"] = StatusInProgress
	}
	if err := s.db.Model(c).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to advance stage: %w", err)
	}
	c.CurrentStage = stage
	return c, nil
}

// DeleteCrop removes a crop after purging its activities, which releases any
// reservations still pending against the inventory.
func (s *Service) DeleteCrop(id uuid.UUID) error {
	if s.purger == nil {
		return fmt.Errorf("activity purger not configured")
	}

	if _, err := s.GetCrop(id); err != nil {
		return err
	}
	if err := s.purger.PurgeCropActivities(id); err != nil {
		return fmt.Errorf("failed to purge crop activities: %w", err)
	}
	if err := s.db.Delete(&Crop{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete crop: %w", err)
	}
	return nil
}
