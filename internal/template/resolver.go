package template

import (
	"agroplan/internal/common"
)

// Merge combines user-owned and default templates for one stage. A default
// template is dropped when a user template with the same activity type exists
// for that stage - the override wins per activity type, not globally. The
// surviving set is then narrowed to the crop's season and, when given, to a
// single activity type.
//
// Order is stable: user templates first (input order), then surviving
// defaults (input order). Callers rely on this for tie-breaking when sorting
// the generated plan.
func Merge(user, defaults []ActivityTemplate, season common.Season, typeFilter common.ActivityType) []ActivityTemplate {
	overridden := make(map[common.ActivityType]bool, len(user))
	for _, t := range user {
		overridden[t.ActivityType] = true
	}

	merged := make([]ActivityTemplate, 0, len(user)+len(defaults))
	merged = append(merged, user...)
	for _, t := range defaults {
		if !overridden[t.ActivityType] {
			merged = append(merged, t)
		}
	}

	result := merged[:0]
	for _, t := range merged {
		if !t.AppliesTo(season) {
			continue
		}
		if typeFilter != "" && t.ActivityType != typeFilter {
			continue
		}
		result = append(result, t)
	}
	return result
}
