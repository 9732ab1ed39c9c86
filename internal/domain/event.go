package domain

import "time"

// Date is a civil calendar date with no time zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// NewDate builds a Date, normalizing out-of-range values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseISODate parses a strict YYYY-MM-DD string.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(dateLayout)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	return d.Time().Compare(o.Time())
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseISODate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Event is one public-assembly row after schema resolution and normalization.
// Start and End are zero-padded "HH:MM" strings.
type Event struct {
	Date         Date   `json:"date"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Location     string `json:"location"`
	District     string `json:"district,omitempty"`
	ReportedHead *int   `json:"reported_head,omitempty"`
	Memo         string `json:"memo,omitempty"`
	Link         string `json:"-"`
	Title        string `json:"-"`
}

// SameSlot reports whether two events share date, start and end. Articles are
// grouped on this key.
func (e Event) SameSlot(o Event) bool {
	return e.Date == o.Date && e.Start == o.Start && e.End == o.End
}

// Diversion is a transit stop affected by a diversion over an inclusive date range.
type Diversion struct {
	StartDate Date    `json:"start_date"`
	EndDate   Date    `json:"end_date"`
	StartTime string  `json:"start_time,omitempty"`
	EndTime   string  `json:"end_time,omitempty"`
	StopID    string  `json:"stop_id"`
	StopName  string  `json:"stop_name"`
	Lon       float64 `json:"lon"`
	Lat       float64 `json:"lat"`
}

// RouteMapping links a stop to one route on one day. Several rows may share
// (Date, StopID).
type RouteMapping struct {
	Date   Date   `json:"date"`
	StopID string `json:"stop_id"`
	Route  string `json:"route"`
}

// FeedbackRecord is one row of the feedback log.
type FeedbackRecord struct {
	SavedAt      time.Time `json:"saved_at"`
	Date         string    `json:"date"`
	Start        string    `json:"start"`
	End          string    `json:"end"`
	Location     string    `json:"location"`
	District     string    `json:"district,omitempty"`
	ReportedHead string    `json:"reported_head,omitempty"`
	Memo         string    `json:"memo,omitempty"`
	Feedback     string    `json:"feedback"`
	DupeKey      string    `json:"dupe_key"`
}

// EventTable, DiversionTable and RouteTable are immutable snapshots produced by one load.
type (
	EventTable     []Event
	DiversionTable []Diversion
	RouteTable     []RouteMapping
)
