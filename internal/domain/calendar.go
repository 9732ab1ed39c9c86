package domain

import "time"

// Headcount levels used to colour calendar entries.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// HeadcountLevel buckets a reported headcount: 1000 and above is high, 500 and
// above is medium. Unknown headcounts are low.
func HeadcountLevel(head *int) string {
	switch {
	case head == nil:
		return LevelLow
	case *head >= 1000:
		return LevelHigh
	case *head >= 500:
		return LevelMedium
	default:
		return LevelLow
	}
}

// CalendarEntry is one event dot on a month calendar.
type CalendarEntry struct {
	Date     Date   `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location"`
	Level    string `json:"level"`
}

// MonthEntries lists the events of one month ordered by day, start, end and location.
func MonthEntries(events EventTable, year int, month time.Month) []CalendarEntry {
	var inMonth EventTable
	for _, e := range events {
		if e.Date.Year == year && e.Date.Month == month {
			inMonth = append(inMonth, e)
		}
	}

	out := make([]CalendarEntry, 0, len(inMonth))
	for day := 1; day <= 31; day++ {
		d := Date{Year: year, Month: month, Day: day}
		for _, e := range EventsOn(inMonth, d) {
			out = append(out, CalendarEntry{
				Date:     e.Date,
				Start:    e.Start,
				End:      e.End,
				Location: e.Location,
				Level:    HeadcountLevel(e.ReportedHead),
			})
		}
	}
	return out
}
