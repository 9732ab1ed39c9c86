package domain

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// LookupRoutes queries lookup for one stop. A failed lookup degrades to an
// empty route list so that a batch can continue.
func LookupRoutes(ctx context.Context, lookup RouteLookup, stopID string, logger *slog.Logger) []string {
	if lookup == nil {
		return nil
	}
	routes, err := lookup.RoutesByStop(ctx, stopID)
	if err != nil {
		logger.Warn("route lookup failed", "stop_id", stopID, "error", err)
		return nil
	}
	return routes
}

// BuildRouteTable resolves routes for every distinct (date, stop) pair in
// stops. Raw ids that fail the lookup shape check are skipped. Each distinct
// stop id is looked up once, sequentially, with delay between remote calls.
// Cancelling ctx cuts a pending delay short.
// Rows are sorted by date, stop id and route.
func BuildRouteTable(ctx context.Context, lookup RouteLookup, stops []StopDay, delay time.Duration, logger *slog.Logger) []RouteRow {
	type pair struct{ date, stopID string }

	seen := make(map[pair]struct{}, len(stops))
	pairs := make([]pair, 0, len(stops))
	for _, s := range stops {
		id := NormalizeLookupStopID(s.StopID)
		if id == "" {
			continue
		}
		p := pair{date: strings.TrimSpace(s.Date), stopID: id}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		pairs = append(pairs, p)
	}

	cache := make(map[string][]string)
	var rows []RouteRow
	for _, p := range pairs {
		routes, ok := cache[p.stopID]
		if !ok {
			if ctx.Err() != nil {
				break
			}
			routes = LookupRoutes(ctx, lookup, p.stopID, logger)
			cache[p.stopID] = routes
			if delay > 0 {
				select {
				case <-ctx.Done():
				case <-clock.After(delay):
				}
			}
		}
		for _, r := range routes {
			rows = append(rows, RouteRow{Date: p.date, StopID: p.stopID, Route: r})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StopID != b.StopID {
			return a.StopID < b.StopID
		}
		return a.Route < b.Route
	})
	return rows
}

// RouteRow is one output row of the route-mapping file, with the date kept as
// it appeared in the stop list.
type RouteRow struct {
	Date   string
	StopID string
	Route  string
}
