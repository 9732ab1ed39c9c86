package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	// dottedDateRe matches "2025.8.15"-style dates, which are rewritten with
	// hyphens before parsing.
	dottedDateRe = regexp.MustCompile(`^\d{4}\.\d{1,2}\.\d{1,2}$`)

	// koreanDateRe matches "2025년 8월 15일".
	koreanDateRe = regexp.MustCompile(`^(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)

	// clockRe finds the first "H:M[:S]" substring with an optional meridiem,
	// e.g. "9:5", "14:30:00", "2:30 PM", "오후 2:30".
	clockRe = regexp.MustCompile(`(?i)(오전|오후)?\s*(\d{1,2}):(\d{1,2})(?::(\d{1,2}))?(?:\s*([ap])\.?m\.?)?`)

	// koreanClockRe matches "14시", "오후 2시 30분".
	koreanClockRe = regexp.MustCompile(`(오전|오후)?\s*(\d{1,2})시(?:\s*(\d{1,2})분)?`)

	// compactClockRe matches HHMM / HMM notation, e.g. "1510", "930".
	compactClockRe = regexp.MustCompile(`^\d{3,4}$`)
)

// NormalizeDate parses a date cell in any of the encodings the sources use.
// It never fails loudly: unparseable input returns ok == false.
func NormalizeDate(raw string) (Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}, false
	}
	if dottedDateRe.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "-")
	}

	if t, err := time.Parse("2006-1-2", s); err == nil {
		return DateOf(t), true
	}
	if m := koreanDateRe.FindStringSubmatch(s); m != nil {
		return civilDate(m[1], m[2], m[3])
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return Date{}, false
	}
	return DateOf(t), true
}

func civilDate(ys, ms, ds string) (Date, bool) {
	y, _ := strconv.Atoi(ys)
	m, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	out := NewDate(y, time.Month(m), d)
	// time.Date normalizes Feb 30 into March; reject instead.
	if out.Year != y || int(out.Month) != m || out.Day != d {
		return Date{}, false
	}
	return out, true
}

// NormalizeTime reduces the first time-of-day found in raw to zero-padded
// 24-hour "HH:MM". Unparseable input returns ok == false.
func NormalizeTime(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if m := clockRe.FindStringSubmatch(s); m != nil {
		meridiem := m[1]
		if m[5] != "" {
			meridiem = strings.ToLower(m[5])
		}
		if out, ok := formatClock(m[2], m[3], m[4], meridiem); ok {
			return out, true
		}
	}
	if m := koreanClockRe.FindStringSubmatch(s); m != nil {
		if out, ok := formatClock(m[2], m[3], "", m[1]); ok {
			return out, true
		}
	}
	if compactClockRe.MatchString(s) {
		return parseHHMM(s)
	}
	if out, ok := parseDayFraction(s); ok {
		return out, true
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute()), true
}

// formatClock validates clock components and applies a meridiem marker
// ("a"/"오전" or "p"/"오후").
func formatClock(hs, ms, ss, meridiem string) (string, bool) {
	hour, err := strconv.Atoi(hs)
	if err != nil {
		return "", false
	}
	minute := 0
	if ms != "" {
		if minute, err = strconv.Atoi(ms); err != nil {
			return "", false
		}
	}
	if ss != "" {
		if sec, err := strconv.Atoi(ss); err != nil || sec > 59 {
			return "", false
		}
	}

	switch meridiem {
	case "p", "오후":
		if hour > 12 {
			return "", false
		}
		if hour < 12 {
			hour += 12
		}
	case "a", "오전":
		if hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
	}

	if hour > 23 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// parseHHMM handles compact 24-hour notation. Three-digit values are
// zero-padded: "930" -> "09:30".
func parseHHMM(hhmm string) (string, bool) {
	if len(hhmm) == 3 {
		hhmm = "0" + hhmm
	}
	return formatClock(hhmm[:2], hhmm[2:], "", "")
}

// parseDayFraction handles spreadsheet time cells exported as a fraction of a
// day, e.g. "0.375" -> "09:00".
func parseDayFraction(s string) (string, bool) {
	if !strings.Contains(s, ".") {
		return "", false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v >= 1 {
		return "", false
	}
	minutes := int(math.Round(v * 24 * 60))
	if minutes == 24*60 {
		minutes--
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), true
}
