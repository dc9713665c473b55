package plan

import (
	"testing"

	"agroplan/internal/template"

	"github.com/google/uuid"
)

func line(materialID uuid.UUID, perHa float64) template.TemplateMaterialLine {
	return template.TemplateMaterialLine{
		MaterialID:             materialID,
		MaterialName:           "NPK fertilizer",
		BaseQuantityPerHectare: perHa,
		Unit:                   "kg",
	}
}

func TestHectaresFromSquareMeters(t *testing.T) {
	if got := HectaresFromSquareMeters(13451.52); got != 1.345152 {
		t.Errorf("HectaresFromSquareMeters(13451.52) = %v, want 1.345152", got)
	}
	if got := HectaresFromSquareMeters(0); got != 0 {
		t.Errorf("HectaresFromSquareMeters(0) = %v, want 0", got)
	}
}

func TestScaleMaterials(t *testing.T) {
	materialID := uuid.New()

	// 60 per ha on 1.345152 ha is 80.709, rounded up to 81
	got := ScaleMaterials([]template.TemplateMaterialLine{line(materialID, 60)}, 1.345152)
	if len(got) != 1 {
		t.Fatalf("expected 1 scaled material, got %d", len(got))
	}
	if got[0].Quantity != 81 {
		t.Errorf("scaled quantity = %v, want 81", got[0].Quantity)
	}
	if got[0].Unit != "kg" {
		t.Errorf("unit = %q, want kg", got[0].Unit)
	}
	if got[0].Name != "NPK fertilizer" {
		t.Errorf("name = %q, want NPK fertilizer", got[0].Name)
	}
}

func TestScaleMaterialsSumThenCeiling(t *testing.T) {
	materialID := uuid.New()

	// Two lines of the same material: 0.3 + 0.4 per ha on 1 ha.
	// Sum-then-ceiling gives ceil(0.7) = 1; ceiling each line first would
	// give 2.
	got := ScaleMaterials([]template.TemplateMaterialLine{
		line(materialID, 0.3),
		line(materialID, 0.4),
	}, 1.0)
	if len(got) != 1 {
		t.Fatalf("expected merged single material, got %d entries", len(got))
	}
	if got[0].Quantity != 1 {
		t.Errorf("merged quantity = %v, want 1 (sum then ceiling)", got[0].Quantity)
	}
}

func TestScaleMaterialsMonotonicInArea(t *testing.T) {
	materialID := uuid.New()
	lines := []template.TemplateMaterialLine{line(materialID, 42.5)}

	prev := 0.0
	for _, area := range []float64{0.1, 0.5, 1, 1.345152, 2, 10, 100} {
		got := ScaleMaterials(lines, area)
		if got[0].Quantity < prev {
			t.Fatalf("quantity decreased from %v to %v at area %v", prev, got[0].Quantity, area)
		}
		prev = got[0].Quantity
	}
}

func TestScaleMaterialsZeroArea(t *testing.T) {
	if got := ScaleMaterials([]template.TemplateMaterialLine{line(uuid.New(), 60)}, 0); got != nil {
		t.Errorf("expected nil for zero area, got %v", got)
	}
	if got := ScaleMaterials(nil, 1.5); got != nil {
		t.Errorf("expected nil for no lines, got %v", got)
	}
}

func TestMergeScaledAcrossTemplates(t *testing.T) {
	materialID := uuid.New()
	otherID := uuid.New()

	t1 := template.ActivityTemplate{Materials: []template.TemplateMaterialLine{line(materialID, 0.3)}}
	t2 := template.ActivityTemplate{Materials: []template.TemplateMaterialLine{
		line(materialID, 0.4),
		line(otherID, 2),
	}}

	got := MergeScaled([]template.ActivityTemplate{t1, t2}, 1.0)
	if len(got) != 2 {
		t.Fatalf("expected 2 merged materials, got %d", len(got))
	}
	byID := map[uuid.UUID]float64{}
	for _, m := range got {
		byID[m.MaterialID] = m.Quantity
	}
	if byID[materialID] != 1 {
		t.Errorf("merged quantity across templates = %v, want 1", byID[materialID])
	}
	if byID[otherID] != 2 {
		t.Errorf("unrelated material quantity = %v, want 2", byID[otherID])
	}
}
