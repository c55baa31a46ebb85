package models

import "fmt"

// DocumentKey names one of the shared store documents.
type DocumentKey string

const (
	DailyMenuKey DocumentKey = "dailyMenu"
	SettingsKey  DocumentKey = "settings"
)

// DocumentKeys lists every document the store serves.
func DocumentKeys() []DocumentKey { return []DocumentKey{DailyMenuKey, SettingsKey} }

// ParseDocumentKey validates a document key.
func ParseDocumentKey(s string) (DocumentKey, error) {
	switch k := DocumentKey(s); k {
	case DailyMenuKey, SettingsKey:
		return k, nil
	default:
		return "", fmt.Errorf("unknown document %q", s)
	}
}

// Document is a schemaless JSON object as held by the store.
//
// Values are strings, numbers, booleans, nil, or nested Documents.
type Document map[string]any

// Clone returns a deep copy. Nested map[string]any values become Documents.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case map[string]any:
		return Document(t).Clone()
	case []any:
		cp := make([]any, len(t))
		for i := range t {
			cp[i] = cloneValue(t[i])
		}
		return cp
	default:
		return v
	}
}

// Merge deep-merges patch into a copy of d and returns it.
//
// Nested objects merge key by key, so patching one date leaves other dates
// and other fields of the same date untouched. Any other value replaces.
func (d Document) Merge(patch Document) Document {
	out := d.Clone()
	if out == nil {
		out = Document{}
	}
	for k, pv := range patch {
		pm, patchIsMap := asMap(pv)
		cur, curIsMap := asMap(out[k])
		if patchIsMap && curIsMap {
			out[k] = cur.Merge(pm)
			continue
		}
		if patchIsMap {
			out[k] = Document{}.Merge(pm)
			continue
		}
		out[k] = cloneValue(pv)
	}
	return out
}

// Sub returns the nested document under key, if any.
func (d Document) Sub(key string) (Document, bool) {
	return asMap(d[key])
}

func asMap(v any) (Document, bool) {
	switch t := v.(type) {
	case Document:
		return t, true
	case map[string]any:
		return Document(t), true
	default:
		return nil, false
	}
}
