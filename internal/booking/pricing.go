package booking

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// RentalDays counts started days, so any partial day is charged in full.
func RentalDays(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(day)))
}

// TotalPrice is the number of started days times the daily price. The result is
// rounded to cents so it round-trips through the numeric(12, 2) column unchanged.
func TotalPrice(start, end time.Time, pricePerDay float64) float64 {
	total := float64(RentalDays(start, end)) * pricePerDay
	return math.Round(total*100) / 100
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps or plain dates, read as UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
