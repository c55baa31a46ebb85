package models

// Placeholder is shown when neither the day nor the settings provide a dish.
const Placeholder = "..."

// ResolveDish applies the resolution order: non-empty day override, then non-empty fallback, then [Placeholder].
//
// An Empty override falls back exactly like an Absent one.
func ResolveDish(override Field, fallback string) string {
	if override.State() == NonEmpty {
		return override.String()
	}
	if fallback != "" {
		return fallback
	}
	return Placeholder
}
