package activity

import (
	"fmt"
	"time"

	"agroplan/internal/common"
	"agroplan/internal/inventory"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	inventory *inventory.Service
}

func NewService(db *gorm.DB, inv *inventory.Service) *Service {
	return &Service{db: db, inventory: inv}
}

// =============================================
// CREATE / READ
// =============================================

// CreateWithReservations persists the activity and reserves every material it
// needs inside one transaction. Reservations are soft: they never fail on low
// stock, availability simply goes negative until the shortfall is covered.
func (s *Service) CreateWithReservations(userID, fieldID uuid.UUID, templateID *uuid.UUID, req *CreateActivityRequest) (*Activity, error) {
	act := &Activity{
		CropID:       req.CropID,
		FieldID:      fieldID,
		UserID:       userID,
		TemplateID:   templateID,
		ActivityType: req.ActivityType,
		Stage:        req.Stage,
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       StatusPending,
	}
	if act.EndDate.IsZero() {
		act.EndDate = act.StartDate
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(act).Error; err != nil {
			return fmt.Errorf("failed to create activity: %w", err)
		}
		for _, m := range req.Materials {
			if _, err := s.inventory.ReserveTx(tx, act.ID, m.MaterialID, m.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return act, nil
}

func (s *Service) GetActivity(id uuid.UUID) (*Activity, error) {
	var act Activity
	if err := s.db.First(&act, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &act, nil
}

func (s *Service) ListByCrop(cropID uuid.UUID) ([]Activity, error) {
	var activities []Activity
	if err := s.db.Where("crop_id = ?", cropID).
		Order("start_date ASC").
		Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

func (s *Service) ListByUser(userID uuid.UUID, status string) ([]Activity, error) {
	query := s.db.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var activities []Activity
	if err := query.Order("start_date ASC").Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// =============================================
// STATUS TRANSITIONS
// =============================================

var allowedTransitions = map[string][]string{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func transitionAllowed(from, to string) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// UpdateStatus moves the activity through its lifecycle and settles its
// reservations on the terminal transitions. Completing consumes stock using
// the actual quantities (planned when no actual was reported); cancelling
// releases the claims without touching on-hand stock.
func (s *Service) UpdateStatus(id uuid.UUID, req *UpdateStatusRequest) (*Activity, error) {
	switch req.Status {
	case StatusInProgress, StatusCompleted, StatusCancelled:
	default:
		return nil, common.NewValidationError("status", "must be in_progress, completed or cancelled")
	}

	var act Activity
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&act, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to get activity: %w", err)
		}
		if !transitionAllowed(act.Status, req.Status) {
			return fmt.Errorf("%w: activity is %s", common.ErrInvalidState, act.Status)
		}

		switch req.Status {
		case StatusCompleted:
			if err := s.completeReservations(tx, act.ID, req.ActualMaterials); err != nil {
				return err
			}
			act.ActualNotes = req.ActualNotes
			if req.ActualCompletionDate != nil {
				act.ActualCompletionDate = req.ActualCompletionDate
			} else {
				now := time.Now()
				act.ActualCompletionDate = &now
			}
		case StatusCancelled:
			if err := s.releaseReservations(tx, act.ID); err != nil {
				return err
			}
		}

		act.Status = req.Status
		if err := tx.Save(&act).Error; err != nil {
			return fmt.Errorf("failed to update activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &act, nil
}

func (s *Service) completeReservations(tx *gorm.DB, activityID uuid.UUID, actuals []ActualLine) error {
	reservations, err := s.inventory.ReservationsForActivity(tx, activityID)
	if err != nil {
		return err
	}
	byMaterial := make(map[uuid.UUID]float64, len(actuals))
	for _, a := range actuals {
		byMaterial[a.MaterialID] = a.Quantity
	}
	for _, r := range reservations {
		if r.Status != inventory.ReservationActive {
			continue
		}
		actual := r.PlannedQuantity
		if q, ok := byMaterial[r.MaterialID]; ok {
			actual = q
		}
		if err := s.inventory.CompleteReservationTx(tx, r.ID, actual); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) releaseReservations(tx *gorm.DB, activityID uuid.UUID) error {
	reservations, err := s.inventory.ReservationsForActivity(tx, activityID)
	if err != nil {
		return err
	}
	for _, r := range reservations {
		if r.Status != inventory.ReservationActive {
			continue
		}
		if err := s.inventory.ReleaseReservationTx(tx, r.ID); err != nil {
			return err
		}
	}
	return nil
}

// =============================================
// DELETE / PURGE
// =============================================

// DeleteActivity removes the activity after releasing any still-active
// reservations, so a deleted plan item never pins reserved stock.
func (s *Service) DeleteActivity(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var act Activity
		if err := tx.First(&act, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to get activity: %w", err)
		}
		if err := s.releaseReservations(tx, act.ID); err != nil {
			return err
		}
		if err := tx.Delete(&Activity{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete activity: %w", err)
		}
		return nil
	})
}

// PurgeCropActivities implements crop.ActivityPurger. Called when a crop is
// deleted; releases and removes everything the crop scheduled.
func (s *Service) PurgeCropActivities(cropID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var activities []Activity
		if err := tx.Where("crop_id = ?", cropID).Find(&activities).Error; err != nil {
			return fmt.Errorf("failed to list crop activities: %w", err)
		}
		for _, act := range activities {
			if err := s.releaseReservations(tx, act.ID); err != nil {
				return err
			}
		}
		if err := tx.Where("crop_id = ?", cropID).Delete(&Activity{}).Error; err != nil {
			return fmt.Errorf("failed to purge crop activities: %w", err)
		}
		return nil
	})
}
