package plan

import (
	"fmt"
	"sort"

	"agroplan/internal/activity"
	"agroplan/internal/common"
	"agroplan/internal/crop"
	"agroplan/internal/template"

	"github.com/google/uuid"
)

type Service struct {
	templates  *template.Service
	crops      *crop.Service
	activities *activity.Service
}

func NewService(templates *template.Service, crops *crop.Service, activities *activity.Service) *Service {
	return &Service{
		templates:  templates,
		crops:      crops,
		activities: activities,
	}
}

// =============================================
// PREVIEW
// =============================================

// GeneratePreview builds the proposed activity plan for a crop. Read-only:
// nothing is persisted until the plan is confirmed. Absence of templates or
// materials is not an error; an empty plan is a valid result.
func (s *Service) GeneratePreview(userID uuid.UUID, req *GeneratePreviewRequest) (*Preview, error) {
	if req.FieldID == uuid.Nil {
		return nil, common.NewValidationError("field_id", "is required")
	}
	if req.PlantingDate.IsZero() {
		return nil, common.NewValidationError("planting_date", "is required")
	}
	if !req.SeasonType.Valid() {
		return nil, common.NewValidationError("season_type", "must be spring_summer or fall_winter")
	}

	areaSqm := req.FieldArea
	if areaSqm <= 0 {
		fetched, err := s.crops.GetFieldArea(req.FieldID)
		if err == nil {
			areaSqm = fetched
		}
	}
	areaHa := HectaresFromSquareMeters(areaSqm)

	stages, err := StagesFrom(req.CurrentStage)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		FieldID:    req.FieldID,
		AreaHa:     areaHa,
		SeasonType: req.SeasonType,
		Activities: []PreviewActivity{},
		Materials:  []ScaledMaterial{},
	}

	var selected []template.ActivityTemplate
	for _, stage := range stages {
		resolved, err := s.templates.Resolve(userID, stage, req.SeasonType, "")
		if err != nil {
			return nil, err
		}
		for _, tpl := range resolved {
			start, end, err := ActivityWindow(req.PlantingDate, stage, tpl.DayOffset, tpl.DurationDays)
			if err != nil {
				return nil, err
			}
			preview.Activities = append(preview.Activities, PreviewActivity{
				TemplateID:   tpl.ID,
				ActivityType: tpl.ActivityType,
				Stage:        stage,
				Name:         tpl.Name,
				Description:  tpl.Description,
				StartDate:    start,
				EndDate:      end,
				Materials:    ScaleMaterials(tpl.Materials, areaHa),
			})
			selected = append(selected, tpl)
		}
	}

	// Stage order and offsets already produce non-decreasing starts; the
	// sort is a defensive invariant check, stable so ties keep stage order.
	sort.SliceStable(preview.Activities, func(i, j int) bool {
		return preview.Activities[i].StartDate.Before(preview.Activities[j].StartDate)
	})

	if merged := MergeScaled(selected, areaHa); merged != nil {
		preview.Materials = merged
	}
	return preview, nil
}

// PreviewForCrop fills the generation inputs from a stored crop.
func (s *Service) PreviewForCrop(userID, cropID uuid.UUID) (*Preview, error) {
	cr, err := s.crops.GetCrop(cropID)
	if err != nil {
		return nil, err
	}
	preview, err := s.GeneratePreview(userID, &GeneratePreviewRequest{
		FieldID:      cr.FieldID,
		PlantingDate: cr.PlantingDate,
		FieldArea:    cr.FieldArea,
		SeasonType:   cr.SeasonType,
		CurrentStage: cr.CurrentStage,
	})
	if err != nil {
		return nil, err
	}
	preview.CropID = cr.ID
	return preview, nil
}

// =============================================
// CONFIRMATION
// =============================================

// ConfirmPlan turns a (possibly edited) preview into persisted activities
// with material reservations. Each activity plus its reservations is its own
// atomic unit; one bad entry never rolls back the rest. The caller gets both
// the created activities and the per-item failures.
func (s *Service) ConfirmPlan(userID uuid.UUID, req *ConfirmPlanRequest) (*ConfirmResult, error) {
	cr, err := s.crops.GetCrop(req.CropID)
	if err != nil {
		return nil, err
	}
	if cr.UserID != userID {
		return nil, common.NewValidationError("crop_id", "crop belongs to another user")
	}
	areaHa := HectaresFromSquareMeters(cr.FieldArea)

	result := &ConfirmResult{
		Created:  []activity.Activity{},
		Failures: []ConfirmFailure{},
	}
	for i, params := range req.Activities {
		act, err := s.confirmOne(userID, cr, areaHa, &params)
		if err != nil {
			result.Failures = append(result.Failures, ConfirmFailure{
				Index: i,
				Name:  params.Name,
				Error: err.Error(),
			})
			continue
		}
		result.Created = append(result.Created, *act)
	}
	return result, nil
}

func (s *Service) confirmOne(userID uuid.UUID, cr *crop.Crop, areaHa float64, params *ConfirmActivityParams) (*activity.Activity, error) {
	if params.Name == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	if params.StartDate.IsZero() {
		return nil, common.NewValidationError("start_date", "is required")
	}

	materials, err := s.resolveMaterials(params, areaHa)
	if err != nil {
		return nil, err
	}

	return s.activities.CreateWithReservations(userID, cr.FieldID, params.TemplateID, &activity.CreateActivityRequest{
		CropID:       cr.ID,
		ActivityType: params.ActivityType,
		Stage:        params.Stage,
		Name:         params.Name,
		Description:  params.Description,
		StartDate:    params.StartDate,
		EndDate:      params.EndDate,
		Materials:    materials,
	})
}

// resolveMaterials recomputes quantities from the originating template when
// one is referenced, so stale or tampered client quantities never reach the
// ledger. Only template-less entries use the client-supplied list.
func (s *Service) resolveMaterials(params *ConfirmActivityParams, areaHa float64) ([]activity.MaterialInput, error) {
	if params.TemplateID == nil {
		return params.Materials, nil
	}
	tpl, err := s.templates.GetTemplate(*params.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load originating template: %w", err)
	}
	scaled := ScaleMaterials(tpl.Materials, areaHa)
	materials := make([]activity.MaterialInput, 0, len(scaled))
	for _, m := range scaled {
		materials = append(materials, activity.MaterialInput{
			MaterialID: m.MaterialID,
			Quantity:   m.Quantity,
			Unit:       m.Unit,
		})
	}
	return materials, nil
}

// =============================================
// SINGLE TEMPLATE APPLICATION
// =============================================

// ApplyTemplate schedules one template against a crop without going through
// a full plan preview.
func (s *Service) ApplyTemplate(userID uuid.UUID, req *ApplyTemplateRequest) (*activity.Activity, error) {
	cr, err := s.crops.GetCrop(req.CropID)
	if err != nil {
		return nil, err
	}
	if cr.UserID != userID {
		return nil, common.NewValidationError("crop_id", "crop belongs to another user")
	}
	tpl, err := s.templates.GetTemplate(req.TemplateID)
	if err != nil {
		return nil, err
	}
	if !tpl.AppliesTo(cr.SeasonType) {
		return nil, common.NewValidationError("template_id", "template does not apply to this crop's season")
	}

	stage := tpl.Stage
	if stage == "" {
		stage = cr.CurrentStage
	}
	start, end, err := ActivityWindow(cr.PlantingDate, stage, tpl.DayOffset, tpl.DurationDays)
	if err != nil {
		return nil, err
	}

	templateID := tpl.ID
	return s.confirmOne(userID, cr, HectaresFromSquareMeters(cr.FieldArea), &ConfirmActivityParams{
		TemplateID:   &templateID,
		ActivityType: tpl.ActivityType,
		Stage:        stage,
		Name:         tpl.Name,
		Description:  tpl.Description,
		StartDate:    start,
		EndDate:      end,
	})
}
