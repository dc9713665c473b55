package crop

import (
	"errors"
	"testing"
	"time"

	"agroplan/internal/common"
	"agroplan/internal/testutil"

	"github.com/google/uuid"
)

type fakePurger struct {
	purged []uuid.UUID
}

func (f *fakePurger) PurgeCropActivities(cropID uuid.UUID) error {
	f.purged = append(f.purged, cropID)
	return nil
}

func setup(t *testing.T) *Service {
	t.Helper()
	db := testutil.SetupTestDB(t, &Field{}, &Crop{})
	return NewService(db)
}

func seedCrop(t *testing.T, s *Service, userID uuid.UUID) *Crop {
	t.Helper()
	field, err := s.CreateField(userID, &CreateFieldRequest{Name: "east field", AreaSqm: 13451.52})
	if err != nil {
		t.Fatalf("CreateField() error: %v", err)
	}
	c, err := s.CreateCrop(userID, &CreateCropRequest{
		FieldID:      field.ID,
		Variety:      "bitter melon",
		PlantingDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		SeasonType:   common.SeasonSpringSummer,
	})
	if err != nil {
		t.Fatalf("CreateCrop() error: %v", err)
	}
	return c
}

func TestCreateCropCopiesFieldArea(t *testing.T) {
	s := setup(t)
	c := seedCrop(t, s, uuid.New())

	if c.FieldArea != 13451.52 {
		t.Errorf("field area = %v, want 13451.52 copied from field", c.FieldArea)
	}
	if c.CurrentStage != common.StagePreparation {
		t.Errorf("stage = %q, want default preparation", c.CurrentStage)
	}
	if c.Status != StatusPlanning {
		t.Errorf("status = %q, want planning", c.Status)
	}
}

func TestCreateCropValidation(t *testing.T) {
	s := setup(t)

	_, err := s.CreateCrop(uuid.New(), &CreateCropRequest{
		FieldID:      uuid.New(),
		PlantingDate: time.Now(),
		SeasonType:   "monsoon",
	})
	if !common.IsValidation(err) {
		t.Errorf("unknown season: got %v, want validation error", err)
	}

	_, err = s.CreateCrop(uuid.New(), &CreateCropRequest{
		FieldID:      uuid.New(),
		PlantingDate: time.Now(),
		SeasonType:   common.SeasonFallWinter,
	})
	if err == nil {
		t.Error("missing field must fail")
	}
}

func TestAdvanceStage(t *testing.T) {
	s := setup(t)
	c := seedCrop(t, s, uuid.New())

	updated, err := s.AdvanceStage(c.ID, common.StagePlanting)
	if err != nil {
		t.Fatalf("AdvanceStage() error: %v", err)
	}
	if updated.CurrentStage != common.StagePlanting {
		t.Errorf("stage = %q, want planting", updated.CurrentStage)
	}

	reloaded, err := s.GetCrop(c.ID)
	if err != nil {
		t.Fatalf("GetCrop() error: %v", err)
	}
	if reloaded.Status != StatusInProgress {
		t.Errorf("status = %q, want in_progress after first advance", reloaded.Status)
	}
}

func TestAdvanceStageOnFinishedCrop(t *testing.T) {
	s := setup(t)
	c := seedCrop(t, s, uuid.New())

	if err := s.db.Model(c).Update("status", StatusCompleted).Error; err != nil {
		t.Fatalf("failed to finish crop: %v", err)
	}

	_, err := s.AdvanceStage(c.ID, common.StageHarvesting)
	if !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("advance on completed crop: got %v, want ErrInvalidState", err)
	}
}

func TestDeleteCropPurgesActivities(t *testing.T) {
	s := setup(t)
	c := seedCrop(t, s, uuid.New())

	// without a purger wired, deletion refuses to run
	if err := s.DeleteCrop(c.ID); err == nil {
		t.Fatal("delete without purger must fail")
	}

	purger := &fakePurger{}
	s.SetActivityPurger(purger)

	if err := s.DeleteCrop(c.ID); err != nil {
		t.Fatalf("DeleteCrop() error: %v", err)
	}
	if len(purger.purged) != 1 || purger.purged[0] != c.ID {
		t.Errorf("purger called with %v, want [%s]", purger.purged, c.ID)
	}
	if _, err := s.GetCrop(c.ID); err == nil {
		t.Error("deleted crop must not be retrievable")
	}
}
