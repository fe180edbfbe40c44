package period

import (
	"time"

	"github.com/homecooks/profitboard/internal/domain"
)

// Window is an inclusive calendar date range at day resolution.
type Window struct {
	Kind  domain.WindowKind
	Label string
	Start time.Time
	End   time.Time
}

// Contains reports whether t's calendar day falls inside the window.
func (w Window) Contains(t time.Time) bool {
	day := dateOf(t)
	return !day.Before(w.Start) && !day.After(w.End)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Windows derives the standard comparison windows from "today". All windows
// are anchored on the ordinal day of the month so a partial month is always
// compared against an equally partial reference period.
//
//	MTD           first of this month .. today
//	YTD           Jan 1 .. today
//	vs last month first of previous month .. same ordinal day, clamped to
//	              the previous month's length
//	LFL           same month last year, first .. same ordinal day
//	YTD LFL       Jan 1 last year .. same calendar date last year
func Windows(today time.Time) map[domain.WindowKind]Window {
	day := dateOf(today)
	y, m, dom := day.Year(), day.Month(), day.Day()

	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, day.Location())
	yearStart := time.Date(y, time.January, 1, 0, 0, 0, 0, day.Location())

	prevMonthStart := monthStart.AddDate(0, -1, 0)
	prevMonthEnd := time.Date(prevMonthStart.Year(), prevMonthStart.Month(),
		clampDay(prevMonthStart.Year(), prevMonthStart.Month(), dom), 0, 0, 0, 0, day.Location())

	lflStart := time.Date(y-1, m, 1, 0, 0, 0, 0, day.Location())
	lflEnd := time.Date(y-1, m, clampDay(y-1, m, dom), 0, 0, 0, 0, day.Location())

	ytdLFLStart := time.Date(y-1, time.January, 1, 0, 0, 0, 0, day.Location())
	ytdLFLEnd := time.Date(y-1, m, clampDay(y-1, m, dom), 0, 0, 0, 0, day.Location())

	return map[domain.WindowKind]Window{
		domain.WindowMTD:       {Kind: domain.WindowMTD, Label: "MTD", Start: monthStart, End: day},
		domain.WindowYTD:       {Kind: domain.WindowYTD, Label: "YTD", Start: yearStart, End: day},
		domain.WindowLastMonth: {Kind: domain.WindowLastMonth, Label: "Last Month", Start: prevMonthStart, End: prevMonthEnd},
		domain.WindowLFL:       {Kind: domain.WindowLFL, Label: "LFL", Start: lflStart, End: lflEnd},
		domain.WindowYTDLFL:    {Kind: domain.WindowYTDLFL, Label: "YTD LFL", Start: ytdLFLStart, End: ytdLFLEnd},
	}
}

// clampDay caps an ordinal day of month at the month's actual length, so a
// Mar 30 anchor compares against Feb 28 (or 29 in a leap year).
func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

// ISOWeekBounds returns the Monday and Sunday of t's ISO week.
func ISOWeekBounds(t time.Time) (monday, sunday time.Time) {
	day := dateOf(t)
	offset := (int(day.Weekday()) + 6) % 7
	monday = day.AddDate(0, 0, -offset)
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}
