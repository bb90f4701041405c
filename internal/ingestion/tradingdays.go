package ingestion

import "time"

// LastNTradingDays returns the last n NSE trading days (most recent first),
// counting backwards from the given date. Weekends and fixed national
// holidays are excluded; movable exchange holidays (Holi, Diwali, Eid and
// the like follow lunar calendars) must be supplied via extraHolidays as
// "MM-DD" keys.
func LastNTradingDays(n int, from time.Time, extraHolidays map[string]struct{}) []time.Time {
	out := make([]time.Time, 0, n)
	d := truncateToDate(from)

	for len(out) < n {
		if isTradingDayNSE(d, extraHolidays) {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, -1)
	}
	return out
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// isTradingDayNSE reports whether the exchange is open on the given date.
func isTradingDayNSE(d time.Time, extra map[string]struct{}) bool {
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}

	// Fixed-date market holidays
	fixed := map[string]struct{}{
		"01-26": {}, // Republic Day
		"05-01": {}, // Maharashtra Day
		"08-15": {}, // Independence Day
		"10-02": {}, // Gandhi Jayanti
		"12-25": {}, // Christmas
	}

	key := d.Format("01-02")
	if _, ok := fixed[key]; ok {
		return false
	}
	if _, ok := extra[key]; ok {
		return false
	}
	return true
}
