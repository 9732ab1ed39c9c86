package domain

import (
	"crypto/md5" //nolint:gosec // equality key only, must match existing logs
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyFeedback is returned when feedback text is blank after trimming.
var ErrEmptyFeedback = errors.New("feedback text is empty")

// DupeKey hashes the identifying fields of a feedback entry. The digest is
// stable across runs and only used for equality.
func DupeKey(date, start, end, location, feedback string) string {
	input := strings.Join([]string{date, start, end, location, strings.TrimSpace(feedback)}, "|")
	sum := md5.Sum([]byte(input)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}

// NewFeedbackRecord builds a log row for feedback left against an event.
func NewFeedbackRecord(e Event, text string) (FeedbackRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return FeedbackRecord{}, ErrEmptyFeedback
	}

	head := ""
	if e.ReportedHead != nil {
		head = strconv.Itoa(*e.ReportedHead)
	}
	date := e.Date.String()

	return FeedbackRecord{
		SavedAt:      clock.Now().Truncate(time.Second),
		Date:         date,
		Start:        e.Start,
		End:          e.End,
		Location:     e.Location,
		District:     e.District,
		ReportedHead: head,
		Memo:         e.Memo,
		Feedback:     text,
		DupeKey:      DupeKey(date, e.Start, e.End, e.Location, text),
	}, nil
}
