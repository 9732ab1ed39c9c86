// Package feedback persists user feedback to an append-only CSV log.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/couchcryptid/rally-detour/internal/source"
)

// SavedAtLayout is the timestamp format of the saved_at column.
const SavedAtLayout = "2006-01-02T15:04:05"

// Canonical log columns, in the order a new log is written.
const (
	ColSavedAt      = "saved_at"
	ColDate         = "date"
	ColStart        = "start"
	ColEnd          = "end"
	ColLocation     = "location"
	ColDistrict     = "district"
	ColReportedHead = "reported_head"
	ColMemo         = "memo"
	ColFeedback     = "feedback"
	ColDupeKey      = "dupe_key"
)

// Columns lists the canonical columns.
var Columns = []string{
	ColSavedAt, ColDate, ColStart, ColEnd, ColLocation,
	ColDistrict, ColReportedHead, ColMemo, ColFeedback, ColDupeKey,
}

// Publisher receives records after they are durably stored.
type Publisher interface {
	Publish(ctx context.Context, rec domain.FeedbackRecord) error
}

// AppendResult reports the outcome of an append.
type AppendResult struct {
	Record    domain.FeedbackRecord
	Duplicate bool
}

// Store is a CSV feedback log. Appends are serialized; each one rewrites the
// whole file through a temporary file in the same directory.
type Store struct {
	path      string
	logger    *slog.Logger
	publisher Publisher

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithPublisher forwards newly stored records to p.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// NewStore creates a store backed by the CSV file at path.
func NewStore(path string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{path: path, logger: logger.With("component", "feedback_store")}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the log file path.
func (s *Store) Path() string { return s.path }

// Append adds rec unless a row with the same dupe key is already logged. A
// duplicate is reported in the result, not as an error.
func (s *Store) Append(ctx context.Context, rec domain.FeedbackRecord) (AppendResult, error) {
	rec.Feedback = strings.TrimSpace(rec.Feedback)
	if rec.Feedback == "" {
		return AppendResult{}, domain.ErrEmptyFeedback
	}
	if rec.DupeKey == "" {
		rec.DupeKey = domain.DupeKey(rec.Date, rec.Start, rec.End, rec.Location, rec.Feedback)
	}

	dup, err := s.append(rec)
	if err != nil {
		return AppendResult{}, err
	}
	if dup {
		s.logger.Info("duplicate feedback ignored", "dupe_key", rec.DupeKey)
		return AppendResult{Record: rec, Duplicate: true}, nil
	}

	s.logger.Info("feedback stored", "dupe_key", rec.DupeKey, "date", rec.Date, "location", rec.Location)
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, rec); err != nil {
			s.logger.Warn("publish feedback failed", "dupe_key", rec.DupeKey, "error", err)
		}
	}
	return AppendResult{Record: rec}, nil
}

// append is the read-modify-write critical section.
func (s *Store) append(rec domain.FeedbackRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, rows, err := s.read()
	if err != nil {
		return false, err
	}

	header = withCanonicalColumns(header)
	idx := indexColumns(header)

	keyCol := idx[ColDupeKey]
	for i, row := range rows {
		if keyCol < len(row) && strings.TrimSpace(row[keyCol]) == rec.DupeKey {
			return true, nil
		}
		// Legacy rows gain empty cells for retrofitted columns.
		if len(row) < len(header) {
			rows[i] = append(row, make([]string, len(header)-len(row))...)
		}
	}

	values := recordValues(rec)
	row := make([]string, len(header))
	for col, i := range idx {
		row[i] = values[col]
	}
	rows = append(rows, row)

	if err := source.WriteCSV(s.path, header, rows); err != nil {
		return false, fmt.Errorf("write feedback log: %w", err)
	}
	return false, nil
}

// All returns every logged record in file order.
func (s *Store) All() ([]domain.FeedbackRecord, error) {
	s.mu.Lock()
	header, rows, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	idx := indexColumns(header)
	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]domain.FeedbackRecord, 0, len(rows))
	for _, row := range rows {
		savedAt, _ := time.ParseInLocation(SavedAtLayout, cell(row, ColSavedAt), time.Local)
		out = append(out, domain.FeedbackRecord{
			SavedAt:      savedAt,
			Date:         cell(row, ColDate),
			Start:        cell(row, ColStart),
			End:          cell(row, ColEnd),
			Location:     cell(row, ColLocation),
			District:     cell(row, ColDistrict),
			ReportedHead: cell(row, ColReportedHead),
			Memo:         cell(row, ColMemo),
			Feedback:     cell(row, ColFeedback),
			DupeKey:      cell(row, ColDupeKey),
		})
	}
	return out, nil
}

// read loads the log. A missing file is an empty log.
func (s *Store) read() ([]string, [][]string, error) {
	header, rows, err := source.ReadTable(s.path)
	if errors.Is(err, source.ErrSourceMissing) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read feedback log: %w", err)
	}
	return header, rows, nil
}

// withCanonicalColumns keeps the existing column order and appends any
// canonical column the log does not have yet.
func withCanonicalColumns(header []string) []string {
	have := indexColumns(header)
	out := append([]string(nil), header...)
	for _, col := range Columns {
		if _, ok := have[col]; !ok {
			out = append(out, col)
		}
	}
	return out
}

func indexColumns(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func recordValues(rec domain.FeedbackRecord) map[string]string {
	savedAt := ""
	if !rec.SavedAt.IsZero() {
		savedAt = rec.SavedAt.Format(SavedAtLayout)
	}
	return map[string]string{
		ColSavedAt:      savedAt,
		ColDate:         rec.Date,
		ColStart:        rec.Start,
		ColEnd:          rec.End,
		ColLocation:     rec.Location,
		ColDistrict:     rec.District,
		ColReportedHead: rec.ReportedHead,
		ColMemo:         rec.Memo,
		ColFeedback:     rec.Feedback,
		ColDupeKey:      rec.DupeKey,
	}
}
