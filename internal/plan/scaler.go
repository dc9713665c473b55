package plan

import (
	"math"
	"sort"

	"agroplan/internal/template"

	"github.com/google/uuid"
)

// SquareMetersPerHectare converts field areas into the unit template
// quantities are expressed in. Fixed by definition, not configurable.
const SquareMetersPerHectare = 10000.0

func HectaresFromSquareMeters(areaSqm float64) float64 {
	return areaSqm / SquareMetersPerHectare
}

// ScaledMaterial is one merged material requirement after scaling. Name and
// Unit come from the template line, which carries them denormalized from the
// material.
type ScaledMaterial struct {
	MaterialID uuid.UUID `json:"material_id"`
	Name       string    `json:"name"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit"`
}

// ScaleMaterials scales per-hectare base quantities to the field's area and
// merges lines of the same material. The raw per-hectare quantities are
// summed first and rounded up once at the end (sum-then-ceiling); rounding
// each line separately would over-provision. A zero area yields an empty
// result rather than an error.
func ScaleMaterials(lines []template.TemplateMaterialLine, areaHa float64) []ScaledMaterial {
	if areaHa <= 0 || len(lines) == 0 {
		return nil
	}

	perHa := make(map[uuid.UUID]float64, len(lines))
	units := make(map[uuid.UUID]string, len(lines))
	names := make(map[uuid.UUID]string, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, seen := perHa[line.MaterialID]; !seen {
			order = append(order, line.MaterialID)
			units[line.MaterialID] = line.Unit
			names[line.MaterialID] = line.MaterialName
		}
		perHa[line.MaterialID] += line.BaseQuantityPerHectare
	}

	out := make([]ScaledMaterial, 0, len(order))
	for _, id := range order {
		out = append(out, ScaledMaterial{
			MaterialID: id,
			Name:       names[id],
			Quantity:   math.Ceil(perHa[id] * areaHa),
			Unit:       units[id],
		})
	}
	return out
}

// MergeScaled re-merges already-collected per-hectare lines across many
// templates into one plan-level summary, applying the same sum-then-ceiling
// policy. Output is sorted by material ID for a stable presentation.
func MergeScaled(templates []template.ActivityTemplate, areaHa float64) []ScaledMaterial {
	var all []template.TemplateMaterialLine
	for _, t := range templates {
		all = append(all, t.Materials...)
	}
	merged := ScaleMaterials(all, areaHa)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].MaterialID.String() < merged[j].MaterialID.String()
	})
	return merged
}
