package archive

import "strings"

// Query is the combined category + title search the grid is driven by.
type Query struct {
	Category string
	Search   string
}

// Matches applies the category (exact tag) and the case-insensitive title search.
// An empty category is treated like AllCategory.
func (q Query) Matches(t Track) bool {
	if q.Category != "" && q.Category != AllCategory && !t.HasFeature(q.Category) {
		return false
	}
	return strings.Contains(strings.ToLower(t.Title), strings.ToLower(q.Search))
}

// Filter keeps collection order. The result is never nil.
func Filter(tracks []Track, q Query) []Track {
	visible := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if q.Matches(t) {
			visible = append(visible, t)
		}
	}
	return visible
}
