package common

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel - spoločný základný model pre všetky moduly
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate assigns the ID in application code so the same models work
// against postgres and the sqlite test database.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Season narrows which templates apply to a crop. Empty means all seasons.
type Season string

const (
	SeasonSpringSummer Season = "spring_summer"
	SeasonFallWinter   Season = "fall_winter"
)

func (s Season) Valid() bool {
	return s == SeasonSpringSummer || s == SeasonFallWinter
}

// Stage is a phase in a crop's lifecycle. The canonical ordering and the
// nominal per-stage durations live in internal/plan.
type Stage string

const (
	StagePreparation         Stage = "preparation"
	StageSeedlingPreparation Stage = "seedling_preparation"
	StagePlanting            Stage = "planting"
	StageLeafTying           Stage = "leaf_tying"
	StageFirstFertilizing    Stage = "first_fertilizing"
	StageSecondFertilizing   Stage = "second_fertilizing"
	StageFlowerTreatment     Stage = "flower_treatment"
	StageSunProtection       Stage = "sun_protection"
	StageFruitDevelopment    Stage = "fruit_development"
	StageHarvesting          Stage = "harvesting"
	StageSproutCollection    Stage = "sprout_collection"
	StageFieldCleaning       Stage = "field_cleaning"
)

// ActivityType identifies what kind of work an activity (or its template)
// represents. The value domain matches the stage names.
type ActivityType string

const (
	ActivityPreparation         ActivityType = "preparation"
	ActivitySeedlingPreparation ActivityType = "seedling_preparation"
	ActivityPlanting            ActivityType = "planting"
	ActivityLeafTying           ActivityType = "leaf_tying"
	ActivityFirstFertilizing    ActivityType = "first_fertilizing"
	ActivitySecondFertilizing   ActivityType = "second_fertilizing"
	ActivityFlowerTreatment     ActivityType = "flower_treatment"
	ActivitySunProtection       ActivityType = "sun_protection"
	ActivityFruitDevelopment    ActivityType = "fruit_development"
	ActivityHarvesting          ActivityType = "harvesting"
	ActivitySproutCollection    ActivityType = "sprout_collection"
	ActivityFieldCleaning       ActivityType = "field_cleaning"
)

func (a ActivityType) Valid() bool {
	switch a {
	case ActivityPreparation, ActivitySeedlingPreparation, ActivityPlanting,
		ActivityLeafTying, ActivityFirstFertilizing, ActivitySecondFertilizing,
		ActivityFlowerTreatment, ActivitySunProtection, ActivityFruitDevelopment,
		ActivityHarvesting, ActivitySproutCollection, ActivityFieldCleaning:
		return true
	}
	return false
}
