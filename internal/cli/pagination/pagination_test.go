package pagination

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr error
	}{
		{name: "zero value", params: Params{}},
		{name: "offset mode", params: Params{Limit: 10, Offset: 20}},
		{name: "page mode", params: Params{Page: 2, PageSize: 10}},
		{name: "negative limit", params: Params{Limit: -1}, wantErr: ErrNegative},
		{name: "negative page size", params: Params{PageSize: -1}, wantErr: ErrNegative},
		{name: "mixed modes", params: Params{Page: 1, PageSize: 5, Offset: 3}, wantErr: ErrMixedPaginationModes},
		{name: "page size alone", params: Params{PageSize: 5}, wantErr: ErrPageSizeWithoutPage},
		{name: "page alone", params: Params{Page: 2}, wantErr: ErrPageWithoutPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApply(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name   string
		params Params
		want   []string
	}{
		{name: "no pagination", params: Params{}, want: items},
		{name: "limit", params: Params{Limit: 2}, want: []string{"a", "b"}},
		{name: "offset", params: Params{Offset: 3}, want: []string{"d", "e"}},
		{name: "offset and limit", params: Params{Offset: 1, Limit: 2}, want: []string{"b", "c"}},
		{name: "offset past end", params: Params{Offset: 9}, want: []string{}},
		{name: "page 2", params: Params{Page: 2, PageSize: 2}, want: []string{"c", "d"}},
		{name: "last partial page", params: Params{Page: 3, PageSize: 2}, want: []string{"e"}},
		{name: "page past end clamps", params: Params{Page: 10, PageSize: 2}, want: []string{"e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.params, items))
		})
	}

	assert.Empty(t, Apply(Params{Limit: 3}, []int{}))
}

func TestParseSort(t *testing.T) {
	valid := []string{"name", "updated", "downloads"}

	tests := []struct {
		expr      string
		wantField string
		wantOrder string
		wantErr   error
	}{
		{expr: "", wantField: "", wantOrder: ""},
		{expr: "name", wantField: "name"},
		{expr: "Downloads:DESC", wantField: "downloads", wantOrder: "desc"},
		{expr: " updated : asc ", wantField: "updated", wantOrder: "asc"},
		{expr: "a:b:c", wantErr: ErrInvalidSortFormat},
		{expr: ":asc", wantErr: ErrEmptySortField},
		{expr: "name:up", wantErr: ErrInvalidSortOrder},
		{expr: "stars", wantErr: ErrInvalidSortField},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			field, order, err := ParseSort(tt.expr, valid)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, field)
			assert.Equal(t, tt.wantOrder, order)
		})
	}

	field, _, err := ParseSort("anything", nil)
	require.NoError(t, err)
	assert.Equal(t, "anything", field)
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		total  int
		want   Meta
	}{
		{
			name:   "single page",
			params: Params{},
			total:  3,
			want:   Meta{CurrentPage: 1, PageSize: 3, TotalPages: 1, TotalItems: 3},
		},
		{
			name:   "page based",
			params: Params{Page: 2, PageSize: 2},
			total:  5,
			want:   Meta{CurrentPage: 2, PageSize: 2, TotalPages: 3, TotalItems: 5, HasPrevious: true, HasNext: true},
		},
		{
			name:   "offset converted",
			params: Params{Limit: 2, Offset: 4},
			total:  5,
			want:   Meta{CurrentPage: 3, PageSize: 2, TotalPages: 3, TotalItems: 5, HasPrevious: true},
		},
		{
			name:   "page clamped",
			params: Params{Page: 9, PageSize: 2},
			total:  3,
			want:   Meta{CurrentPage: 2, PageSize: 2, TotalPages: 2, TotalItems: 3, HasPrevious: true},
		},
		{
			name:   "empty",
			params: Params{},
			total:  0,
			want:   Meta{CurrentPage: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMeta(tt.params, tt.total))
		})
	}
}

func TestAddFlags(t *testing.T) {
	var p Params
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	p.AddFlags(cmd)
	cmd.SetArgs([]string{"--page", "2", "--page-size", "10"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, Params{Page: 2, PageSize: 10}, p)
}
