// Package pipeline ties the source tables, the feedback log and the keyword
// extractor together into per-day views.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/couchcryptid/rally-detour/internal/feedback"
	"github.com/couchcryptid/rally-detour/internal/observability"
	"github.com/couchcryptid/rally-detour/internal/source"
)

// ErrEventNotFound is returned when feedback names an event that is not in the
// current event table.
var ErrEventNotFound = errors.New("event not found")

// FeedbackStore persists feedback records.
type FeedbackStore interface {
	Append(ctx context.Context, rec domain.FeedbackRecord) (feedback.AppendResult, error)
	All() ([]domain.FeedbackRecord, error)
}

// Paths locates the source files.
type Paths struct {
	Events     string
	Diversions string
	Routes     string
	ContextDir string
}

// Snapshot is one consistent view of the three source tables.
type Snapshot struct {
	Events     domain.EventTable
	Diversions domain.DiversionTable
	Routes     domain.RouteTable
}

// Pipeline serves correlated views over memoized source tables.
type Pipeline struct {
	events     *source.Cache[domain.EventTable]
	diversions *source.Cache[domain.DiversionTable]
	routes     *source.Cache[domain.RouteTable]
	contextDir string

	store     FeedbackStore
	extractor *domain.KeywordExtractor

	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	stat source.StatFunc
}

// WithStat replaces the file modification-time lookup used for cache invalidation.
func WithStat(stat source.StatFunc) Option {
	return func(o *options) { o.stat = stat }
}

// New creates a Pipeline. Tables are loaded lazily on first use.
func New(paths Paths, store FeedbackStore, vocab *domain.Vocabulary, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Pipeline{
		events:     source.NewCache(paths.Events, source.LoadEvents, o.stat),
		diversions: source.NewCache(paths.Diversions, source.LoadDiversions, o.stat),
		routes:     source.NewCache(paths.Routes, source.LoadRoutes, o.stat),
		contextDir: paths.ContextDir,
		store:      store,
		extractor:  domain.NewKeywordExtractor(vocab),
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once the event table loads, or the reason it does not.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if _, err := p.loadEvents(); err != nil {
		return fmt.Errorf("event table unavailable: %w", err)
	}
	return nil
}

// Ready reports whether the event table has loaded at least once.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Snapshot returns the current tables, reloading any whose file changed. A
// failed event load is returned as an error; diversion and route failures
// degrade to empty tables.
func (p *Pipeline) Snapshot(_ context.Context) (Snapshot, error) {
	events, err := p.loadEvents()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Events:     events,
		Diversions: loadOptional(p, "diversion", p.diversions),
		Routes:     loadOptional(p, "route", p.routes),
	}, nil
}

func (p *Pipeline) loadEvents() (domain.EventTable, error) {
	snap, hit, err := p.events.Get()
	p.recordLoad("event", len(snap.Table), snap.Dropped, hit, err)
	if err != nil {
		p.logger.Error("event table load failed", "path", p.events.Path(), "error", err)
		return nil, err
	}
	if !p.ready.Swap(true) {
		p.metrics.DataReady.Set(1)
	}
	return snap.Table, nil
}

// loadOptional reads a table whose absence or malformation narrows the data
// instead of failing the request.
func loadOptional[T ~[]E, E any](p *Pipeline, name string, cache *source.Cache[T]) T {
	snap, hit, err := cache.Get()
	p.recordLoad(name, len(snap.Table), snap.Dropped, hit, err)

	var schemaErr *domain.SchemaError
	switch {
	case err == nil:
		return snap.Table
	case errors.Is(err, source.ErrSourceMissing):
		p.logger.Debug("source missing, continuing without it", "source", name, "path", cache.Path())
	case errors.As(err, &schemaErr):
		p.logger.Warn("source schema mismatch, continuing without it", "source", name, "field", schemaErr.Field)
	default:
		p.logger.Warn("source load failed, continuing without it", "source", name, "error", err)
	}
	return nil
}

func (p *Pipeline) recordLoad(name string, rows, dropped int, hit bool, err error) {
	switch {
	case errors.Is(err, source.ErrSourceMissing):
		p.metrics.TableLoads.WithLabelValues(name, "missing").Inc()
		p.metrics.TableRows.WithLabelValues(name).Set(0)
	case err != nil:
		p.metrics.TableLoads.WithLabelValues(name, "error").Inc()
	case hit:
		p.metrics.TableLoads.WithLabelValues(name, "cached").Inc()
	default:
		p.metrics.TableLoads.WithLabelValues(name, "loaded").Inc()
		p.metrics.RowsDropped.WithLabelValues(name).Add(float64(dropped))
		p.metrics.TableRows.WithLabelValues(name).Set(float64(rows))
		p.logger.Info("table loaded", "source", name, "rows", rows, "dropped", dropped)
	}
}

// EventView is an event with its headcount level and related news.
type EventView struct {
	domain.Event
	Level    string           `json:"level"`
	Articles []domain.Article `json:"articles"`
}

// DayView is everything known about one day.
type DayView struct {
	Date       domain.Date            `json:"date"`
	Events     []EventView            `json:"events"`
	Diversions []domain.DiversionView `json:"diversions"`
}

// Day correlates the events, active diversions and routes of d.
func (p *Pipeline) Day(ctx context.Context, d domain.Date) (DayView, error) {
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return DayView{}, err
	}

	events := domain.EventsOn(snap.Events, d)
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, EventView{
			Event:    e,
			Level:    domain.HeadcountLevel(e.ReportedHead),
			Articles: domain.RelatedArticles(snap.Events, e),
		})
	}

	return DayView{
		Date:       d,
		Events:     views,
		Diversions: domain.DayDiversions(snap.Diversions, snap.Routes, d),
	}, nil
}

// Month lists calendar entries for one month.
func (p *Pipeline) Month(ctx context.Context, year int, month time.Month) ([]domain.CalendarEntry, error) {
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return domain.MonthEntries(snap.Events, year, month), nil
}

// FeedbackRequest identifies an event and carries the feedback text.
type FeedbackRequest struct {
	Date     domain.Date `json:"date"`
	Start    string      `json:"start"`
	End      string      `json:"end"`
	Location string      `json:"location"`
	Feedback string      `json:"feedback"`
}

// AppendFeedback records feedback against the event req identifies.
func (p *Pipeline) AppendFeedback(ctx context.Context, req FeedbackRequest) (feedback.AppendResult, error) {
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return feedback.AppendResult{}, err
	}

	event, ok := findEvent(snap.Events, req)
	if !ok {
		p.metrics.FeedbackAppends.WithLabelValues("invalid").Inc()
		return feedback.AppendResult{}, ErrEventNotFound
	}

	rec, err := domain.NewFeedbackRecord(event, req.Feedback)
	if err != nil {
		p.metrics.FeedbackAppends.WithLabelValues("invalid").Inc()
		return feedback.AppendResult{}, err
	}

	res, err := p.store.Append(ctx, rec)
	switch {
	case err != nil:
		p.metrics.FeedbackAppends.WithLabelValues("error").Inc()
		return feedback.AppendResult{}, err
	case res.Duplicate:
		p.metrics.FeedbackAppends.WithLabelValues("duplicate").Inc()
	default:
		p.metrics.FeedbackAppends.WithLabelValues("stored").Inc()
	}
	return res, nil
}

func findEvent(events domain.EventTable, req FeedbackRequest) (domain.Event, bool) {
	for _, e := range events {
		if e.Date == req.Date && e.Start == req.Start && e.End == req.End && e.Location == req.Location {
			return e, true
		}
	}
	return domain.Event{}, false
}

// Keywords ranks feedback terms. top <= 0 returns every term.
func (p *Pipeline) Keywords(_ context.Context, opts domain.KeywordOptions, top int) ([]domain.TermCount, error) {
	records, err := p.store.All()
	if err != nil {
		return nil, fmt.Errorf("read feedback: %w", err)
	}
	return domain.TopTerms(p.extractor.Frequencies(records, opts), top), nil
}

// ContextText returns the reference text block for the chat assistant.
func (p *Pipeline) ContextText(_ context.Context) (string, error) {
	return source.LoadContextText(p.contextDir, p.logger)
}
