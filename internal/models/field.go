package models

// FieldState describes which of the three optional states a [Field] is in.
type FieldState int

const (
	Absent FieldState = iota
	Empty
	NonEmpty
)

func (s FieldState) String() string {
	switch s {
	case Empty:
		return "empty"
	case NonEmpty:
		return "non-empty"
	default:
		return "absent"
	}
}

// Field is an optional dish text. The zero value is absent.
type Field struct {
	value   string
	present bool
}

// AbsentField returns a field that was never set.
func AbsentField() Field { return Field{} }

// FieldOf returns a present field; an empty string gives an [Empty] field.
func FieldOf(v string) Field { return Field{value: v, present: true} }

// State reports whether the field is absent, empty or carries text.
func (f Field) State() FieldState {
	switch {
	case !f.present:
		return Absent
	case f.value == "":
		return Empty
	default:
		return NonEmpty
	}
}

// Value returns the text and whether the field is present.
func (f Field) Value() (string, bool) { return f.value, f.present }

// String returns the text, or "" for absent fields.
func (f Field) String() string { return f.value }
