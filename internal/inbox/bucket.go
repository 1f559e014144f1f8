package inbox

import (
	"math"
	"net/mail"
	"strings"
	"time"
)

// Bucket is a relative-date group shown as a header above inbox rows.
type Bucket string

const (
	BucketToday     Bucket = "Today"
	BucketYesterday Bucket = "Yesterday"
	Bucket7Days     Bucket = "Last 7 Days"
	Bucket30Days    Bucket = "Last 30 Days"
	Bucket60Days    Bucket = "Last 60 Days"
	Bucket90Days    Bucket = "Last 90 Days"
	Bucket180Days   Bucket = "Last 180 Days"
	Bucket365Days   Bucket = "Last 365 Days"
	BucketOlder     Bucket = "Older"
)

// DayDiff returns floor((now - date) / 24h).
func DayDiff(now, date time.Time) int {
	return int(math.Floor(now.Sub(date).Hours() / 24))
}

// Classify maps a whole-day difference to its bucket. Negative
// differences (dates in the future) count as today.
func Classify(diff int) Bucket {
	switch {
	case diff <= 0:
		return BucketToday
	case diff == 1:
		return BucketYesterday
	case diff < 7:
		return Bucket7Days
	case diff < 30:
		return Bucket30Days
	case diff < 60:
		return Bucket60Days
	case diff < 90:
		return Bucket90Days
	case diff < 180:
		return Bucket180Days
	case diff < 365:
		return Bucket365Days
	default:
		return BucketOlder
	}
}

// BucketFor classifies a raw backend date string relative to now.
// Dates that cannot be parsed fall into Older.
func BucketFor(now time.Time, raw string) Bucket {
	date, ok := ParseDate(raw)
	if !ok {
		return BucketOlder
	}
	return Classify(DayDiff(now, date))
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the date formats the mail providers hand back:
// RFC 5322 header dates for Gmail and ISO 8601 timestamps for Microsoft.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := mail.ParseDate(raw); err == nil {
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a backend date for display, or "Unknown date".
func FormatDate(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return "Unknown date"
	}
	return t.Local().Format("Mon Jan 02 2006 15:04")
}
