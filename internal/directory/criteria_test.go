package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDefaults(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		count     int
		wantPage  int
		wantCount int
	}{
		{"zero values", 0, 0, DefaultPage, DefaultCount},
		{"negative values", -1, -10, DefaultPage, DefaultCount},
		{"valid values kept", 3, 25, 3, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := (&ListCriteria{Page: tt.page, Count: tt.count}).Normalize()
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantCount, got.Count)
		})
	}
}

func TestNormalizeFilter(t *testing.T) {
	got := (&ListCriteria{
		Filter: map[string]interface{}{
			"enabled": nil,
			"bogus":   "x",
		},
	}).Normalize()

	assert.Empty(t, got.Filter)

	got = (&ListCriteria{
		Filter: map[string]interface{}{"enabled": false},
	}).Normalize()

	assert.Equal(t, map[string]interface{}{"enabled": false}, got.Filter)
}

func TestNormalizeSort(t *testing.T) {
	got := (&ListCriteria{
		Sort: []SortField{
			{Field: "Username", Direction: "ASC"},
			{Field: "created_at", Direction: "DESCENDING"},
			{Field: "not_a_column", Direction: "desc"},
			{Field: "  email  ", Direction: "garbage"},
		},
	}).Normalize()

	assert.Equal(t, []SortField{
		{Field: "username", Direction: SortAscending},
		{Field: "created_at", Direction: SortDescending},
		{Field: "email", Direction: SortAscending},
	}, got.Sort)
}

func TestNormalizeEmptySort(t *testing.T) {
	got := (&ListCriteria{}).Normalize()
	assert.NotNil(t, got.Sort)
	assert.Empty(t, got.Sort, "absent sort stays empty so the store decides the order")
}

func TestParseSortParams(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		want   []SortField
	}{
		{
			name:   "bare field name sorts ascending",
			params: []string{"name"},
			want:   []SortField{{Field: "name", Direction: SortAscending}},
		},
		{
			name:   "field with direction",
			params: []string{"name:desc", "email:asc"},
			want: []SortField{
				{Field: "name", Direction: SortDescending},
				{Field: "email", Direction: SortAscending},
			},
		},
		{
			name:   "blank entries skipped",
			params: []string{"", "  ", "name"},
			want:   []SortField{{Field: "name", Direction: SortAscending}},
		},
		{
			name:   "nil input",
			params: nil,
			want:   []SortField{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSortParams(tt.params))
		})
	}
}

func TestEnabledFilter(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    bool
		present bool
	}{
		{"bool true", true, true, true},
		{"bool false", false, false, true},
		{"string 1", "1", true, true},
		{"string 0", "0", false, true},
		{"string true", "true", true, true},
		{"string FALSE", "FALSE", false, true},
		{"string garbage", "maybe", false, false},
		{"int nonzero", 1, true, true},
		{"float zero", float64(0), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &ListCriteria{Filter: map[string]interface{}{"enabled": tt.value}}
			got, ok := c.EnabledFilter()
			assert.Equal(t, tt.present, ok)
			if tt.present {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	_, ok := (&ListCriteria{}).EnabledFilter()
	assert.False(t, ok)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, (&ListCriteria{Page: 1, Count: 10}).Offset())
	assert.Equal(t, 20, (&ListCriteria{Page: 3, Count: 10}).Offset())
}

func TestNewUserPage(t *testing.T) {
	criteria := &ListCriteria{Page: 2, Count: 10}

	page := NewUserPage(nil, criteria, 25)
	assert.NotNil(t, page.Users)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PerPage)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)

	page = NewUserPage(nil, criteria, 0)
	assert.Equal(t, 0, page.TotalPages)
}
