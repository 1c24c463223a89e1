// Package traffic models the plugin repository's page-view statistics.
package traffic

import (
	_ "embed"
	"time"

	"github.com/exptechtw/tremstore/internal/schema"
)

// Data is the traffic feed: totals plus daily views.
type Data struct {
	Count       int       `json:"count"`
	Uniques     int       `json:"uniques"`
	Views       []View    `json:"views"`
	CollectedAt time.Time `json:"collected_at"`
}

// View is one day of traffic.
type View struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
	Uniques   int       `json:"uniques"`
}

// Point is one chart sample.
type Point struct {
	Date   string `json:"date"`
	Visits int    `json:"visits"`
	Unique int    `json:"unique"`
}

//go:embed schema/traffic.schema.json
var trafficSchemaJSON []byte

//nolint:gochecknoglobals // Compiled lazily, shared by every loader.
var trafficValidator = schema.New("https://tremstore.exptech.dev/schemas/traffic.schema.json", trafficSchemaJSON)

// Validate checks a raw traffic body against the embedded schema.
func Validate(raw []byte) error {
	return trafficValidator.Validate(raw)
}

// IsEmpty reports a feed without any daily views.
func IsEmpty(d Data) bool {
	return len(d.Views) == 0
}

// Chart converts the daily views into chart points, in feed order.
// Dates are rendered in loc (UTC when nil).
func Chart(d Data, loc *time.Location) []Point {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]Point, len(d.Views))
	for i, v := range d.Views {
		out[i] = Point{
			Date:   v.Timestamp.In(loc).Format(time.DateOnly),
			Visits: v.Count,
			Unique: v.Uniques,
		}
	}
	return out
}

// Peak returns the busiest day, if any.
func Peak(d Data) (View, bool) {
	if len(d.Views) == 0 {
		return View{}, false
	}
	best := d.Views[0]
	for _, v := range d.Views[1:] {
		if v.Count > best.Count {
			best = v
		}
	}
	return best, true
}
