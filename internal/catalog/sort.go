package catalog

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortField names a sortable plugin attribute.
type SortField string

// Sort fields.
const (
	SortByName      SortField = "name"
	SortByUpdated   SortField = "updated"
	SortByDownloads SortField = "downloads"
)

// SortOrder is asc or desc.
type SortOrder string

// Sort orders.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortFields lists the fields in cycling order.
func SortFields() []SortField {
	return []SortField{SortByName, SortByUpdated, SortByDownloads}
}

// ParseSortField validates a field name.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByName, SortByUpdated, SortByDownloads:
		return f, nil
	default:
		return "", fmt.Errorf("invalid sort field %q: must be one of name, updated, downloads", s)
	}
}

// ParseSortOrder validates an order.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortAsc, SortDesc:
		return o, nil
	default:
		return "", fmt.Errorf("invalid sort order %q: must be asc or desc", s)
	}
}

// DefaultOrder is the order a field starts with: names A to Z, the rest
// newest or most downloaded first.
func DefaultOrder(f SortField) SortOrder {
	if f == SortByName {
		return SortAsc
	}
	return SortDesc
}

// Flip returns the opposite order.
func (o SortOrder) Flip() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// Sort returns a sorted copy of plugins. The sort is stable. Plugins without a
// published release compare as the oldest, so they come last in desc order.
func Sort(plugins []Plugin, field SortField, order SortOrder) []Plugin {
	out := append([]Plugin(nil), plugins...)
	less := lessFunc(field)
	if less == nil {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if order == SortDesc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(field SortField) func(a, b Plugin) bool {
	switch field {
	case SortByName:
		col := collate.New(language.TraditionalChinese, collate.IgnoreCase)
		return func(a, b Plugin) bool {
			return col.CompareString(a.Name, b.Name) < 0
		}
	case SortByUpdated:
		return func(a, b Plugin) bool {
			ta, okA := a.LastPublished()
			tb, okB := b.LastPublished()
			switch {
			case !okA && !okB:
				return false
			case !okA:
				return true
			case !okB:
				return false
			default:
				return ta.Before(tb)
			}
		}
	case SortByDownloads:
		return func(a, b Plugin) bool {
			return a.Downloads() < b.Downloads()
		}
	default:
		return nil
	}
}
