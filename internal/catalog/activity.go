package catalog

import "time"

// ActivityDay is one cell of the release heatmap.
type ActivityDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	// Level is 0 for no releases, then 1 to 4 by count relative to the busiest day.
	Level int `json:"level"`
}

// Activity counts releases per UTC day over the month ending at now.
func Activity(releases []Release, now time.Time) []ActivityDay {
	now = now.UTC()
	start := now.AddDate(0, -1, 0)

	var days []ActivityDay
	index := make(map[string]int)
	for d := start; !d.After(now); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		index[key] = len(days)
		days = append(days, ActivityDay{Date: key})
	}

	for _, r := range releases {
		if r.PublishedAt == nil {
			continue
		}
		t := r.PublishedAt.UTC()
		if t.Before(start) || t.After(now) {
			continue
		}
		if i, ok := index[t.Format(time.DateOnly)]; ok {
			days[i].Count++
		}
	}

	maxCount := 0
	for _, d := range days {
		maxCount = max(maxCount, d.Count)
	}
	for i := range days {
		days[i].Level = activityLevel(days[i].Count, maxCount)
	}
	return days
}

func activityLevel(count, maxCount int) int {
	if count == 0 || maxCount == 0 {
		return 0
	}
	intensity := float64(count) / float64(maxCount)
	switch {
	case intensity < 0.25:
		return 1
	case intensity < 0.5:
		return 2
	case intensity < 0.75:
		return 3
	default:
		return 4
	}
}
