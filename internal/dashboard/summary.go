package dashboard

import (
	"time"
)

type day struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time, loc *time.Location) day {
	y, m, d := t.In(loc).Date()
	return day{y, m, d}
}

func (d day) prev() day {
	y, m, dd := time.Date(d.year, d.month, d.day-1, 12, 0, 0, 0, time.UTC).Date()
	return day{y, m, dd}
}

// WeekStart returns midnight of the Monday of the ISO week containing now,
// in loc.
func WeekStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	back := (int(local.Weekday()) + 6) % 7
	y, m, d := local.Date()
	return time.Date(y, m, d-back, 0, 0, 0, 0, loc)
}

// CountThisWeek counts start times inside the ISO week containing now.
func CountThisWeek(starts []time.Time, now time.Time, loc *time.Location) int {
	from := WeekStart(now, loc)
	y, m, d := from.Date()
	to := time.Date(y, m, d+7, 0, 0, 0, 0, loc)

	count := 0
	for _, s := range starts {
		if !s.Before(from) && s.Before(to) {
			count++
		}
	}
	return count
}

// CurrentStreak counts consecutive calendar days with at least one session,
// walking back from today. A today without sessions does not break a streak
// that runs through yesterday.
func CurrentStreak(starts []time.Time, now time.Time, loc *time.Location) int {
	days := make(map[day]bool, len(starts))
	for _, s := range starts {
		days[dayOf(s, loc)] = true
	}

	cursor := dayOf(now, loc)
	if !days[cursor] {
		cursor = cursor.prev()
	}
	streak := 0
	for days[cursor] {
		streak++
		cursor = cursor.prev()
	}
	return streak
}
