package directory

import "strings"

// SortDirection is the direction of one sort field
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// SortField is one (field, direction) pair of a sort clause
type SortField struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

const (
	DefaultPage  = 1
	DefaultCount = 10
)

// filterableFields is the allow-list of filter keys forwarded to the store.
// Unknown keys are dropped silently.
var filterableFields = map[string]struct{}{
	"enabled": {},
}

// sortableFields is the allow-list of sortable columns. Unknown sort fields
// are dropped so criteria never reach the store with arbitrary column names.
var sortableFields = map[string]struct{}{
	"id":         {},
	"username":   {},
	"email":      {},
	"full_name":  {},
	"enabled":    {},
	"created_at": {},
	"updated_at": {},
}

// ListCriteria describes a paginated, filtered, sorted user listing
type ListCriteria struct {
	Page   int                    `json:"page"`
	Count  int                    `json:"count"`
	Sort   []SortField            `json:"sort,omitempty"`
	Filter map[string]interface{} `json:"filter,omitempty"`
}

// Normalize returns a copy of the criteria safe to hand to a store: page and
// count clamped to their defaults when non-positive, filter reduced to
// recognized non-nil entries, sort reduced to recognized fields with
// directions normalized (unspecified or unrecognized directions sort
// ascending).
func (c *ListCriteria) Normalize() *ListCriteria {
	norm := &ListCriteria{
		Page:   c.Page,
		Count:  c.Count,
		Sort:   []SortField{},
		Filter: map[string]interface{}{},
	}

	if norm.Page < 1 {
		norm.Page = DefaultPage
	}
	if norm.Count < 1 {
		norm.Count = DefaultCount
	}

	for key, value := range c.Filter {
		if _, ok := filterableFields[key]; !ok {
			continue
		}
		if value == nil {
			continue
		}
		norm.Filter[key] = value
	}

	for _, sf := range c.Sort {
		field := strings.ToLower(strings.TrimSpace(sf.Field))
		if _, ok := sortableFields[field]; !ok {
			continue
		}
		norm.Sort = append(norm.Sort, SortField{
			Field:     field,
			Direction: NormalizeDirection(string(sf.Direction)),
		})
	}

	return norm
}

// Offset returns the row offset for the criteria's page and count
func (c *ListCriteria) Offset() int {
	return (c.Page - 1) * c.Count
}

// NormalizeDirection maps direction spellings ("ASC", "descending", ...) to
// a SortDirection, defaulting to ascending.
func NormalizeDirection(raw string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "desc", "descending":
		return SortDescending
	default:
		return SortAscending
	}
}

// ParseSortParams converts raw sort parameters into sort fields. A bare field
// name ("name") sorts that field ascending; "field:direction" pairs carry an
// explicit direction.
func ParseSortParams(params []string) []SortField {
	sort := make([]SortField, 0, len(params))
	for _, p := range params {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		field, direction, found := strings.Cut(p, ":")
		if !found {
			sort = append(sort, SortField{Field: field, Direction: SortAscending})
			continue
		}
		sort = append(sort, SortField{Field: field, Direction: NormalizeDirection(direction)})
	}
	return sort
}

// EnabledFilter extracts the enabled filter as a bool, if present. It
// accepts the representations that survive JSON decoding and query parsing.
func (c *ListCriteria) EnabledFilter() (bool, bool) {
	value, ok := c.Filter["enabled"]
	if !ok {
		return false, false
	}
	switch v := value.(type) {
	case bool:
		return v, true
	case *bool:
		if v == nil {
			return false, false
		}
		return *v, true
	case string:
		switch strings.ToLower(v) {
		case "1", "true":
			return true, true
		case "0", "false":
			return false, true
		}
		return false, false
	case int:
		return v != 0, true
	case float64:
		return v != 0, true
	default:
		return false, false
	}
}
