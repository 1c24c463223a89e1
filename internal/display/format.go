// Package display formats numbers, sizes and times for terminal output.
package display

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	thousand = 1_000
	million  = 1_000_000
	bytesMB  = 1024 * 1024

	minutesPerHour = 60
	hoursPerDay    = 24
)

// printer groups digits the way the catalog's zh-TW audience expects.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.TraditionalChinese)

// taipei is UTC+8, used for relative times.
//
//nolint:gochecknoglobals // Fixed zone.
var taipei = time.FixedZone("UTC+8", 8*60*60)

// Number formats n with thousand separators, e.g. 18248 -> "18,248".
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// CompactNumber abbreviates n with a K or M suffix, truncated to two decimals.
// Example: 1234 -> "1.23K", 2500000 -> "2.5M", 999 -> "999".
func CompactNumber(n int64) string {
	var f float64
	suffix := ""
	switch {
	case n >= million:
		f, suffix = float64(n)/million, "M"
	case n >= thousand:
		f, suffix = float64(n)/thousand, "K"
	default:
		return strconv.FormatInt(n, 10)
	}
	f = math.Floor(f*100) / 100
	return strconv.FormatFloat(f, 'f', -1, 64) + suffix
}

// FileSize formats bytes as megabytes with one decimal, e.g. "98.3 MB".
func FileSize(bytes int64) string {
	return fmt.Sprintf("%.1f MB", float64(bytes)/bytesMB)
}

// MegabytesRounded converts bytes to megabytes rounded to two decimals.
func MegabytesRounded(bytes int64) float64 {
	return math.Round(float64(bytes)/bytesMB*100) / 100
}

// Timestamp formats t as YYYY/MM/DD HH:mm:ss in t's own zone.
func Timestamp(t time.Time) string {
	return t.Format("2006/01/02 15:04:05")
}

// Relative describes how long before now t was, in UTC+8:
// 剛剛, N分鐘前, N小時前 or N天前.
func Relative(t, now time.Time) string {
	diff := now.In(taipei).Sub(t.In(taipei))
	if diff < 0 {
		diff = 0
	}
	hours := int(diff / time.Hour)
	minutes := int((diff % time.Hour) / time.Minute)

	switch {
	case hours == 0 && minutes == 0:
		return "剛剛"
	case hours == 0:
		return fmt.Sprintf("%d分鐘前", minutes)
	case hours < hoursPerDay:
		return fmt.Sprintf("%d小時前", hours)
	default:
		return fmt.Sprintf("%d天前", hours/hoursPerDay)
	}
}

// Duration formats a duration compactly.
// Examples: "45s", "30m", "1h", "5h30m", "2d", "1d6h".
func Duration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", math.Floor(d.Minutes()))
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}
