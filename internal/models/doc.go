// Package models defines the menu board domain: dish fields, the daily menu, display settings and the persistence interfaces.
//
// Two documents make up all shared state:
//   - dailyMenu: map from ISO date ("2006-01-02") to [MenuDay]
//   - settings: [DisplaySettings] styling plus fallback dish text
//
// Both travel as schemaless [Document] values. Decoding never fails: malformed
// or unknown values become absent fields, and [ResolveSettings] substitutes
// defaults for every setting in one place.
//
// [Field] is an explicit optional string (Absent / Empty / NonEmpty), so "admin
// cleared the field" and "admin never touched it" stay distinguishable even
// though [ResolveDish] treats both the same.
//
// [User] is the one persistent entity and implements [Model].
package models
