// Package workhours implements business-calendar time arithmetic. The
// auto-close deadline for delivered orders is expressed in working hours,
// so adding 56 hours to a Friday receipt must skip the weekend.
package workhours

import "time"

// Calendar describes the working window of a single day and which weekdays
// count as working days. Hours are local to the supplied timestamps.
type Calendar struct {
	StartHour int
	EndHour   int
	Workdays  map[time.Weekday]bool
}

// Default is the branch network calendar: Monday through Saturday,
// 09:00 to 18:00.
func Default() Calendar {
	return Calendar{
		StartHour: 9,
		EndHour:   18,
		Workdays: map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
			time.Saturday:  true,
		},
	}
}

func (c Calendar) windowStart(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.StartHour, 0, 0, 0, day.Location())
}

func (c Calendar) windowEnd(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.EndHour, 0, 0, 0, day.Location())
}

// nextWindowStart returns the opening instant of the first working window
// strictly after the day of t.
func (c Calendar) nextWindowStart(t time.Time) time.Time {
	day := t.AddDate(0, 0, 1)
	for !c.Workdays[day.Weekday()] {
		day = day.AddDate(0, 0, 1)
	}
	return c.windowStart(day)
}

// clampForward moves t to the nearest working instant at or after t.
func (c Calendar) clampForward(t time.Time) time.Time {
	if !c.Workdays[t.Weekday()] || !t.Before(c.windowEnd(t)) {
		return c.nextWindowStart(t)
	}
	if t.Before(c.windowStart(t)) {
		return c.windowStart(t)
	}
	return t
}

// Add returns the instant d working time after from. Time outside the
// working window does not count toward d.
func (c Calendar) Add(from time.Time, d time.Duration) time.Time {
	cursor := c.clampForward(from)
	remaining := d

	for {
		available := c.windowEnd(cursor).Sub(cursor)
		if remaining <= available {
			return cursor.Add(remaining)
		}
		remaining -= available
		cursor = c.nextWindowStart(cursor)
	}
}

// AddHours is Add with the duration given in whole hours.
func (c Calendar) AddHours(from time.Time, hours int) time.Time {
	return c.Add(from, time.Duration(hours)*time.Hour)
}
