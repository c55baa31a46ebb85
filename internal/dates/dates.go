// package dates builds the rolling window of editable menu dates.
package dates

import (
	"fmt"
	"slices"
	"time"

	"github.com/goodsign/monday"
)

// Days is the length of the editable window, today included.
const Days = 14

// IDLayout is the date id format used as dailyMenu keys.
const IDLayout = "2006-01-02"

const (
	shortLayout = "Mon 2. Jan"
	fullLayout  = "Monday 2. January"
)

// DefaultLocale is the display locale.
const DefaultLocale = monday.LocaleNbNO

// Entry is one date of the window.
type Entry struct {
	ID        string    // YYYY-MM-DD
	Label     string    // weekday abbreviation, day and month abbreviation
	FullLabel string    // full weekday, day and full month
	Date      time.Time // midnight in the window's location
}

// Window returns [Days] consecutive dates starting with the calendar day of
// ref in loc. A nil loc means UTC.
func Window(ref time.Time, loc *time.Location, locale monday.Locale) []Entry {
	start := Midnight(ref, loc)
	out := make([]Entry, 0, Days)
	for i := range Days {
		d := start.AddDate(0, 0, i)
		out = append(out, Entry{
			ID:        d.Format(IDLayout),
			Label:     monday.Format(d, shortLayout, locale),
			FullLabel: monday.Format(d, fullLayout, locale),
			Date:      d,
		})
	}
	return out
}

// Midnight returns the start of ref's calendar day in loc.
func Midnight(ref time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := ref.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// TodayID returns the date id of ref's calendar day in loc.
func TodayID(ref time.Time, loc *time.Location) string {
	return Midnight(ref, loc).Format(IDLayout)
}

// Contains reports whether id is one of the window's dates.
func Contains(window []Entry, id string) bool {
	return slices.ContainsFunc(window, func(e Entry) bool { return e.ID == id })
}

// Find returns the entry for id.
func Find(window []Entry, id string) (Entry, bool) {
	i := slices.IndexFunc(window, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return Entry{}, false
	}
	return window[i], true
}

// ParseLocale validates a locale name such as "nb_NO".
func ParseLocale(s string) (monday.Locale, error) {
	for _, l := range monday.ListLocales() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported locale %q", s)
}
