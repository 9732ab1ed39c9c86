package domain

import (
	"sort"
	"strings"
)

// DiversionView is a diversion active on a given day joined with the routes
// serving its stop that day.
type DiversionView struct {
	Diversion
	Routes     []string `json:"routes"`
	RouteLabel string   `json:"route_label"`
}

// DiversionsActiveOn returns every diversion whose inclusive
// [StartDate, EndDate] interval contains d, in table order.
func DiversionsActiveOn(diversions DiversionTable, d Date) []Diversion {
	var out []Diversion
	for _, div := range diversions {
		if !div.StartDate.After(d) && !div.EndDate.Before(d) {
			out = append(out, div)
		}
	}
	return out
}

// RoutesFor collects, per requested stop, the sorted set of routes mapped to it
// on d. Requested stops with no rows map to an empty, non-nil list. Blank route
// labels are ignored.
func RoutesFor(routes RouteTable, d Date, stopIDs []string) map[string][]string {
	sets := make(map[string]map[string]struct{}, len(stopIDs))
	for _, id := range stopIDs {
		sets[id] = map[string]struct{}{}
	}

	for _, r := range routes {
		if r.Date != d || r.Route == "" {
			continue
		}
		set, ok := sets[r.StopID]
		if !ok {
			continue
		}
		set[r.Route] = struct{}{}
	}

	out := make(map[string][]string, len(sets))
	for id, set := range sets {
		list := make([]string, 0, len(set))
		for route := range set {
			list = append(list, route)
		}
		sort.Strings(list)
		out[id] = list
	}
	return out
}

// JoinRoutes renders a route list for display.
func JoinRoutes(routes []string) string {
	return strings.Join(routes, ", ")
}

// DayDiversions left-joins the diversions active on d with that day's routes.
// Diversions without a route mapping are kept with an empty route list.
func DayDiversions(diversions DiversionTable, routes RouteTable, d Date) []DiversionView {
	active := DiversionsActiveOn(diversions, d)
	if len(active) == 0 {
		return nil
	}

	ids := make([]string, 0, len(active))
	for _, div := range active {
		ids = append(ids, div.StopID)
	}
	byStop := RoutesFor(routes, d, ids)

	views := make([]DiversionView, 0, len(active))
	for _, div := range active {
		list := byStop[div.StopID]
		views = append(views, DiversionView{
			Diversion:  div,
			Routes:     list,
			RouteLabel: JoinRoutes(list),
		})
	}
	return views
}

// EventsOn returns events dated d ordered by start, end and location.
func EventsOn(events EventTable, d Date) []Event {
	var out []Event
	for _, e := range events {
		if e.Date == d {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Location < b.Location
	})
	return out
}
