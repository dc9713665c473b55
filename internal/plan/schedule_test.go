package plan

import (
	"testing"
	"time"

	"agroplan/internal/common"
)

var planting = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

func TestStageStart(t *testing.T) {
	tests := []struct {
		stage    common.Stage
		wantDays int
	}{
		{common.StagePreparation, 0},
		{common.StageSeedlingPreparation, 7},
		{common.StagePlanting, 17},
		{common.StageLeafTying, 20},
		{common.StageFirstFertilizing, 34},
		{common.StageFieldCleaning, 110},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			got, err := StageStart(planting, tt.stage)
			if err != nil {
				t.Fatalf("StageStart() error: %v", err)
			}
			want := planting.AddDate(0, 0, tt.wantDays)
			if !got.Equal(want) {
				t.Errorf("StageStart(%s) = %v, want %v", tt.stage, got, want)
			}
		})
	}
}

func TestStageStartUnknownStage(t *testing.T) {
	if _, err := StageStart(planting, "germination"); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestStagesFrom(t *testing.T) {
	all, err := StagesFrom("")
	if err != nil {
		t.Fatalf("StagesFrom(\"\") error: %v", err)
	}
	if len(all) != 12 {
		t.Errorf("full sequence length = %d, want 12", len(all))
	}

	tail, err := StagesFrom(common.StageHarvesting)
	if err != nil {
		t.Fatalf("StagesFrom(harvesting) error: %v", err)
	}
	if len(tail) != 3 || tail[0] != common.StageHarvesting {
		t.Errorf("StagesFrom(harvesting) = %v", tail)
	}
}

func TestActivityWindow(t *testing.T) {
	start, end, err := ActivityWindow(planting, common.StagePlanting, 2, 3)
	if err != nil {
		t.Fatalf("ActivityWindow() error: %v", err)
	}
	wantStart := planting.AddDate(0, 0, 17+2)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantStart.AddDate(0, 0, 3)) {
		t.Errorf("end = %v, want start+3d", end)
	}

	// zero duration means same-day activity
	start, end, err = ActivityWindow(planting, common.StagePreparation, 0, 0)
	if err != nil {
		t.Fatalf("ActivityWindow() error: %v", err)
	}
	if !start.Equal(end) {
		t.Errorf("zero-duration window: start %v != end %v", start, end)
	}
}

// Stage starts must be monotonic so generated plans come out date-ordered
// without sorting.
func TestStageStartsMonotonic(t *testing.T) {
	prev := time.Time{}
	for _, stage := range stageSequence {
		start, err := StageStart(planting, stage)
		if err != nil {
			t.Fatalf("StageStart(%s) error: %v", stage, err)
		}
		if start.Before(prev) {
			t.Fatalf("stage %s starts %v, before previous stage start %v", stage, start, prev)
		}
		prev = start
	}
}
