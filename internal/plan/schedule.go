package plan

import (
	"fmt"
	"time"

	"agroplan/internal/common"
)

// Canonical stage order. Stage starts are cumulative sums of the nominal
// durations below, anchored at the crop's planting date, so activities come
// out in non-decreasing start order by construction.
var stageSequence = []common.Stage{
	common.StagePreparation,
	common.StageSeedlingPreparation,
	common.StagePlanting,
	common.StageLeafTying,
	common.StageFirstFertilizing,
	common.StageSecondFertilizing,
	common.StageFlowerTreatment,
	common.StageSunProtection,
	common.StageFruitDevelopment,
	common.StageHarvesting,
	common.StageSproutCollection,
	common.StageFieldCleaning,
}

// Nominal per-stage durations in days. Season never changes stage lengths,
// only which templates apply.
var stageDurations = map[common.Stage]int{
	common.StagePreparation:         7,
	common.StageSeedlingPreparation: 10,
	common.StagePlanting:            3,
	common.StageLeafTying:           14,
	common.StageFirstFertilizing:    7,
	common.StageSecondFertilizing:   7,
	common.StageFlowerTreatment:     10,
	common.StageSunProtection:       10,
	common.StageFruitDevelopment:    21,
	common.StageHarvesting:          14,
	common.StageSproutCollection:    7,
	common.StageFieldCleaning:       5,
}

// StageIndex returns the position of a stage in the canonical sequence, or an
// error for an unknown stage. An unknown stage here is a programming defect,
// not user input.
func StageIndex(stage common.Stage) (int, error) {
	for i, s := range stageSequence {
		if s == stage {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", stage)
}

// StageStart computes when a stage begins: the planting date plus the nominal
// durations of every prior stage.
func StageStart(plantingDate time.Time, stage common.Stage) (time.Time, error) {
	idx, err := StageIndex(stage)
	if err != nil {
		return time.Time{}, err
	}
	days := 0
	for _, s := range stageSequence[:idx] {
		days += stageDurations[s]
	}
	return plantingDate.AddDate(0, 0, days), nil
}

// StagesFrom returns the canonical sequence starting at the given stage.
// An empty stage means the whole sequence.
func StagesFrom(stage common.Stage) ([]common.Stage, error) {
	if stage == "" {
		return stageSequence, nil
	}
	idx, err := StageIndex(stage)
	if err != nil {
		return nil, err
	}
	return stageSequence[idx:], nil
}

// ActivityWindow places one template on the calendar: start is the stage
// start shifted by the template's day offset, end is start plus the
// template's own duration (same day when unspecified).
func ActivityWindow(plantingDate time.Time, stage common.Stage, dayOffset, durationDays int) (time.Time, time.Time, error) {
	stageStart, err := StageStart(plantingDate, stage)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := stageStart.AddDate(0, 0, dayOffset)
	end := start.AddDate(0, 0, durationDays)
	return start, end, nil
}
