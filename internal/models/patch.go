package models

import (
	"fmt"
	"time"
)

const dateIDLayout = "2006-01-02"

// ValidatePatch checks a merge patch written from outside the editor and returns it normalized.
//
// dailyMenu patches map date ids to objects of course strings. Settings
// patches may only name known fields with values in their domain.
func ValidatePatch(key DocumentKey, patch Document) (Document, error) {
	if len(patch) == 0 {
		return nil, fmt.Errorf("empty patch")
	}
	switch key {
	case DailyMenuKey:
		return validateMenuPatch(patch)
	case SettingsKey:
		return validateSettingsPatch(patch)
	default:
		return nil, fmt.Errorf("unknown document %q", key)
	}
}

func validateMenuPatch(patch Document) (Document, error) {
	out := Document{}
	for id, v := range patch {
		if _, err := time.Parse(dateIDLayout, id); err != nil {
			return nil, fmt.Errorf("invalid date id %q", id)
		}
		day, ok := asMap(v)
		if !ok {
			return nil, fmt.Errorf("%s: expected an object, got %T", id, v)
		}
		fields := Document{}
		for name, value := range day {
			c, err := ParseCourse(name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", id, err)
			}
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%s.%s must be a string, got %T", id, c, value)
			}
			fields[string(c)] = s
		}
		out[id] = fields
	}
	return out, nil
}

func validateSettingsPatch(patch Document) (Document, error) {
	out := Document{}
	for name, value := range patch {
		field, err := ParseSettingField(name)
		if err != nil {
			return nil, err
		}
		v, err := ValidateSetting(field, value)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}
