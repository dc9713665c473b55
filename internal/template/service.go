package template

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agroplan/internal/common"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultCacheTTL = 5 * time.Minute

type Service struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewService creates the template service. redisClient may be nil; lookups
// then go straight to the database.
func NewService(db *gorm.DB, redisClient *redis.Client) *Service {
	return &Service{db: db, redis: redisClient}
}

// =============================================
// TEMPLATE CRUD
// =============================================

func (s *Service) GetTemplate(id uuid.UUID) (*ActivityTemplate, error) {
	var tmpl ActivityTemplate
	if err := s.db.Preload("Materials").Where("id = ?", id).First(&tmpl).Error; err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &tmpl, nil
}

// ListTemplates returns the templates visible to a user: their own plus the
// system defaults.
func (s *Service) ListTemplates(userID uuid.UUID) ([]ActivityTemplate, error) {
	var templates []ActivityTemplate
	err := s.db.Preload("Materials").
		Where("user_id = ? OR user_id IS NULL", userID).
		Order("stage, activity_type, created_at").
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (s *Service) CreateTemplate(userID uuid.UUID, req *CreateTemplateRequest) (*ActivityTemplate, error) {
	if req.SeasonSpecific != "" && !req.SeasonSpecific.Valid() {
		return nil, common.NewValidationError("season_specific", "unknown season")
	}

	tmpl := &ActivityTemplate{
		ActivityType:   req.ActivityType,
		Stage:          req.Stage,
		SeasonSpecific: req.SeasonSpecific,
		DayOffset:      req.DayOffset,
		DurationDays:   req.DurationDays,
		Name:           req.Name,
		Description:    req.Description,
	}
	if !req.IsDefault {
		tmpl.UserID = &userID
	}
	lines, err := s.materialLines(req.Materials)
	if err != nil {
		return nil, err
	}
	tmpl.Materials = lines

	if err := s.db.Create(tmpl).Error; err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	s.invalidateDefaults(tmpl.Stage)
	return tmpl, nil
}

func (s *Service) UpdateTemplate(id uuid.UUID, req *UpdateTemplateRequest) (*ActivityTemplate, error) {
	tmpl, err := s.GetTemplate(id)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.SeasonSpecific != nil {
			tmpl.SeasonSpecific = *req.SeasonSpecific
		}
		if req.DayOffset != nil {
			tmpl.DayOffset = *req.DayOffset
		}
		if req.DurationDays != nil {
			tmpl.DurationDays = *req.DurationDays
		}
		if req.Name != nil {
			tmpl.Name = *req.Name
		}
		if req.Description != nil {
			tmpl.Description = *req.Description
		}

		if req.Materials != nil {
			// material lines are replaced wholesale, not patched
			if err := tx.Where("template_id = ?", tmpl.ID).Delete(&TemplateMaterialLine{}).Error; err != nil {
				return fmt.Errorf("failed to delete old material lines: %w", err)
			}
			lines, err := s.materialLines(req.Materials)
			if err != nil {
				return err
			}
			for i := range lines {
				lines[i].TemplateID = tmpl.ID
			}
			tmpl.Materials = lines
		}

		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(tmpl).Error; err != nil {
			return fmt.Errorf("failed to update template: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateDefaults(tmpl.Stage)
	return tmpl, nil
}

func (s *Service) DeleteTemplate(id uuid.UUID) error {
	tmpl, err := s.GetTemplate(id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&TemplateMaterialLine{}).Error; err != nil {
			return fmt.Errorf("failed to delete material lines: %w", err)
		}
		if err := tx.Delete(&ActivityTemplate{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete template: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateDefaults(tmpl.Stage)
	return nil
}

// =============================================
// RESOLUTION (user override + season filter)
// =============================================

// Resolve returns the templates that apply for one stage: the user's own
// templates for the stage, plus defaults whose activity type the user has not
// overridden, filtered by season and the optional activity type.
func (s *Service) Resolve(userID uuid.UUID, stage common.Stage, season common.Season, typeFilter common.ActivityType) ([]ActivityTemplate, error) {
	user, err := s.UserTemplates(userID, stage)
	if err != nil {
		return nil, err
	}
	defaults, err := s.DefaultTemplates(stage)
	if err != nil {
		return nil, err
	}
	return Merge(user, defaults, season, typeFilter), nil
}

// UserTemplates returns templates owned by the user for a stage.
func (s *Service) UserTemplates(userID uuid.UUID, stage common.Stage) ([]ActivityTemplate, error) {
	var templates []ActivityTemplate
	err := s.db.Preload("Materials").
		Where("user_id = ? AND stage = ?", userID, stage).
		Order("created_at").
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user templates: %w", err)
	}
	return templates, nil
}

// DefaultTemplates returns system templates for a stage. Results are cached
// in redis because defaults are shared by every user and change rarely.
func (s *Service) DefaultTemplates(stage common.Stage) ([]ActivityTemplate, error) {
	if cached, ok := s.cachedDefaults(stage); ok {
		return cached, nil
	}

	var templates []ActivityTemplate
	err := s.db.Preload("Materials").
		Where("user_id IS NULL AND stage = ?", stage).
		Order("created_at").
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch default templates: %w", err)
	}

	s.storeDefaults(stage, templates)
	return templates, nil
}

// ByActivityType returns all templates of one activity type, user and default.
func (s *Service) ByActivityType(activityType common.ActivityType) ([]ActivityTemplate, error) {
	var templates []ActivityTemplate
	err := s.db.Preload("Materials").
		Where("activity_type = ?", activityType).
		Order("created_at").
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch templates by activity type: %w", err)
	}
	return templates, nil
}

// materialLines builds template lines from a request, denormalizing the
// display name (and unit, when the request omits one) from the materials table.
func (s *Service) materialLines(reqs []MaterialLineRequest) ([]TemplateMaterialLine, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.MaterialID)
	}

	type materialRef struct {
		ID   uuid.UUID
		Name string
		Unit string
	}
	var refs []materialRef
	if err := s.db.Table("materials").Where("id IN ?", ids).Find(&refs).Error; err != nil {
		return nil, fmt.Errorf("failed to look up materials: %w", err)
	}
	byID := make(map[uuid.UUID]materialRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	lines := make([]TemplateMaterialLine, 0, len(reqs))
	for _, r := range reqs {
		line := TemplateMaterialLine{
			MaterialID:             r.MaterialID,
			BaseQuantityPerHectare: r.BaseQuantityPerHectare,
			Unit:                   r.Unit,
		}
		if ref, ok := byID[r.MaterialID]; ok {
			line.MaterialName = ref.Name
			if line.Unit == "" {
				line.Unit = ref.Unit
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// =============================================
// DEFAULT-TEMPLATE CACHE
// =============================================

func defaultsCacheKey(stage common.Stage) string {
	return fmt.Sprintf("templates:defaults:%s", stage)
}

func (s *Service) cachedDefaults(stage common.Stage) ([]ActivityTemplate, bool) {
	if s.redis == nil {
		return nil, false
	}

	payload, err := s.redis.Get(context.Background(), defaultsCacheKey(stage)).Result()
	if err != nil {
		return nil, false
	}

	var entry cachedTemplates
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return nil, false
	}
	if time.Since(entry.CachedAt) > defaultCacheTTL {
		return nil, false
	}
	return entry.Templates, true
}

func (s *Service) storeDefaults(stage common.Stage, templates []ActivityTemplate) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(cachedTemplates{Templates: templates, CachedAt: time.Now()})
	if err != nil {
		return
	}
	// cache failures are invisible to callers
	s.redis.Set(context.Background(), defaultsCacheKey(stage), payload, defaultCacheTTL)
}

func (s *Service) invalidateDefaults(stage common.Stage) {
	if s.redis == nil {
		return
	}
	s.redis.Del(context.Background(), defaultsCacheKey(stage))
}
