package domain

import "context"

// RouteLookup resolves the routes serving a transit stop.
type RouteLookup interface {
	// RoutesByStop returns the distinct route labels for a 5-digit stop id.
	RoutesByStop(ctx context.Context, stopID string) ([]string, error)
}

// StopDay is one (date, raw stop id) row of a stop list awaiting route lookup.
type StopDay struct {
	Date   string
	StopID string
}
