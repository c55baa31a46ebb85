package models

// MenuDay is the per-date override record.
type MenuDay struct {
	Starter Field
	Main    Field
	Dessert Field
}

// Get returns the field for a course.
func (d MenuDay) Get(c Course) Field {
	switch c {
	case Starter:
		return d.Starter
	case Main:
		return d.Main
	case Dessert:
		return d.Dessert
	default:
		return AbsentField()
	}
}

// With returns a copy of d with the course set to value.
func (d MenuDay) With(c Course, value string) MenuDay {
	switch c {
	case Starter:
		d.Starter = FieldOf(value)
	case Main:
		d.Main = FieldOf(value)
	case Dessert:
		d.Dessert = FieldOf(value)
	}
	return d
}

// Document encodes only present fields.
func (d MenuDay) Document() Document {
	out := Document{}
	for _, c := range Courses() {
		if v, ok := d.Get(c).Value(); ok {
			out[string(c)] = v
		}
	}
	return out
}

// DecodeMenuDay reads a day record. Non-string values are treated as absent.
func DecodeMenuDay(doc Document) MenuDay {
	var day MenuDay
	for _, c := range Courses() {
		if s, ok := doc[string(c)].(string); ok {
			day = day.With(c, s)
		}
	}
	return day
}

// DailyMenu maps ISO date ids to overrides.
type DailyMenu map[string]MenuDay

// Day returns the record for id, or an all-absent record.
func (m DailyMenu) Day(id string) MenuDay {
	return m[id]
}

// WithField returns a copy of m with one course of one day set.
func (m DailyMenu) WithField(id string, c Course, value string) DailyMenu {
	out := make(DailyMenu, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[id] = out[id].With(c, value)
	return out
}

// DecodeDailyMenu reads the dailyMenu document. Entries that are not objects are skipped.
func DecodeDailyMenu(doc Document) DailyMenu {
	menu := make(DailyMenu, len(doc))
	for id := range doc {
		if sub, ok := doc.Sub(id); ok {
			menu[id] = DecodeMenuDay(sub)
		}
	}
	return menu
}

// DishPatch builds the merge patch that sets dailyMenu.{id}.{course}.
func DishPatch(id string, c Course, value string) Document {
	return Document{id: Document{string(c): value}}
}
