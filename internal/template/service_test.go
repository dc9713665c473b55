package template

import (
	"net/http"
	"testing"

	"agroplan/internal/common"
	"agroplan/internal/inventory"
	"agroplan/internal/testutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupTemplates(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t, &ActivityTemplate{}, &TemplateMaterialLine{}, &inventory.Material{})
	return NewService(db, nil), db
}

func seedMaterial(t *testing.T, db *gorm.DB, name, unit string) *inventory.Material {
	t.Helper()
	m := &inventory.Material{UserID: uuid.New(), Name: name, Unit: unit}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to seed material: %v", err)
	}
	return m
}

func TestCreateTemplateDenormalizesMaterial(t *testing.T) {
	s, db := setupTemplates(t)
	m := seedMaterial(t, db, "compost", "kg")

	tpl, err := s.CreateTemplate(uuid.New(), &CreateTemplateRequest{
		ActivityType: common.ActivityPreparation,
		Stage:        common.StagePreparation,
		Name:         "soil prep",
		Materials: []MaterialLineRequest{
			// no unit in the request, both name and unit come from the material
			{MaterialID: m.ID, BaseQuantityPerHectare: 30},
		},
	})
	if err != nil {
		t.Fatalf("CreateTemplate() error: %v", err)
	}
	if len(tpl.Materials) != 1 {
		t.Fatalf("material lines = %d, want 1", len(tpl.Materials))
	}
	line := tpl.Materials[0]
	if line.MaterialName != "compost" {
		t.Errorf("material name = %q, want compost", line.MaterialName)
	}
	if line.Unit != "kg" {
		t.Errorf("unit = %q, want kg from the material", line.Unit)
	}
}

func TestByActivityType(t *testing.T) {
	s, _ := setupTemplates(t)
	userID := uuid.New()

	for _, req := range []*CreateTemplateRequest{
		{ActivityType: common.ActivityPlanting, Stage: common.StagePlanting, Name: "my planting"},
		{ActivityType: common.ActivityPlanting, Stage: common.StagePlanting, Name: "default planting", IsDefault: true},
		{ActivityType: common.ActivityHarvesting, Stage: common.StageHarvesting, Name: "default harvest", IsDefault: true},
	} {
		if _, err := s.CreateTemplate(userID, req); err != nil {
			t.Fatalf("CreateTemplate(%s) error: %v", req.Name, err)
		}
	}

	got, err := s.ByActivityType(common.ActivityPlanting)
	if err != nil {
		t.Fatalf("ByActivityType() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("templates = %d, want both user and default planting", len(got))
	}
	for _, tpl := range got {
		if tpl.ActivityType != common.ActivityPlanting {
			t.Errorf("unexpected activity type %q", tpl.ActivityType)
		}
	}
}

func TestListTemplatesActivityTypeFilter(t *testing.T) {
	s, _ := setupTemplates(t)
	h := NewHandler(s)
	r := testutil.SetupRouter()
	group := testutil.AuthGroup(r, "/api/v1")
	group.GET("/templates", h.ListTemplates)

	userID := uuid.New()
	for _, req := range []*CreateTemplateRequest{
		{ActivityType: common.ActivityPlanting, Stage: common.StagePlanting, Name: "planting"},
		{ActivityType: common.ActivityHarvesting, Stage: common.StageHarvesting, Name: "harvest"},
	} {
		if _, err := s.CreateTemplate(userID, req); err != nil {
			t.Fatalf("CreateTemplate(%s) error: %v", req.Name, err)
		}
	}
	token := testutil.GenerateTestToken(userID, "farmer")

	w := testutil.DoRequest(r, "GET", "/api/v1/templates?activity_type=planting", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("filtered list status = %d, want 200", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if total, _ := resp["total"].(float64); total != 1 {
		t.Errorf("filtered total = %v, want 1", resp["total"])
	}

	w = testutil.DoRequest(r, "GET", "/api/v1/templates?activity_type=mulching", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown activity type status = %d, want 400", w.Code)
	}
}
