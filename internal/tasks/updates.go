package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Validate Phase = iota
	ApplyDays
	ApplySettings
)

func (p Phase) String() string {
	switch p {
	case Validate:
		return "validate"
	case ApplyDays:
		return "apply_days"
	case ApplySettings:
		return "apply_settings"
	default:
		return ""
	}
}

func validateUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Validate,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Validating %d days...", total),
	}
}

func dayAppliedUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyDays,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, id),
		Data:    id,
	}
}

func dayFailedUpdate(step, total int, id string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyDays,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, id, err),
		Data:    id,
	}
}

func settingsUpdate(fields int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplySettings,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing %d settings...", fields),
	}
}
