package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseEvents resolves the event schema against headers and normalizes rows.
// A missing required column fails the whole parse with a *SchemaError. Rows
// whose date, start or end cannot be parsed are dropped and counted.
func ParseEvents(headers []string, rows [][]string) (EventTable, int, error) {
	res, err := EventSchema.Resolve(headers)
	if err != nil {
		return nil, 0, err
	}

	out := make(EventTable, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		date, okDate := NormalizeDate(res.Value(row, FieldDate))
		start, okStart := NormalizeTime(res.Value(row, FieldStartTime))
		end, okEnd := NormalizeTime(res.Value(row, FieldEndTime))
		if !okDate || !okStart || !okEnd {
			dropped++
			continue
		}
		out = append(out, Event{
			Date:         date,
			Start:        start,
			End:          end,
			Location:     res.Value(row, FieldLocation),
			District:     res.Value(row, FieldDistrict),
			ReportedHead: parseHeadcount(res.Value(row, FieldReportedHead)),
			Memo:         res.Value(row, FieldMemo),
			Link:         res.Value(row, FieldLink),
			Title:        res.Value(row, FieldTitle),
		})
	}
	return out, dropped, nil
}

// ParseDiversions resolves the diversion schema and normalizes rows. Rows
// without both dates, a stop id or valid coordinates are dropped, as are rows
// whose start date falls after the end date.
func ParseDiversions(headers []string, rows [][]string) (DiversionTable, int, error) {
	res, err := DiversionSchema.Resolve(headers)
	if err != nil {
		return nil, 0, err
	}

	out := make(DiversionTable, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		startDate, okStart := NormalizeDate(res.Value(row, FieldStartDate))
		endDate, okEnd := NormalizeDate(res.Value(row, FieldEndDate))
		stopID := NormalizeStopID(res.Value(row, FieldStopID))
		lon, okLon := parseCoordinate(res.Value(row, FieldLon))
		lat, okLat := parseCoordinate(res.Value(row, FieldLat))
		if !okStart || !okEnd || stopID == "" || !okLon || !okLat || startDate.After(endDate) {
			dropped++
			continue
		}

		startTime, _ := NormalizeTime(res.Value(row, FieldStartTime))
		endTime, _ := NormalizeTime(res.Value(row, FieldEndTime))
		out = append(out, Diversion{
			StartDate: startDate,
			EndDate:   endDate,
			StartTime: startTime,
			EndTime:   endTime,
			StopID:    stopID,
			StopName:  res.Value(row, FieldStopName),
			Lon:       lon,
			Lat:       lat,
		})
	}
	return out, dropped, nil
}

// ParseRoutes resolves the route-mapping schema and normalizes rows. Route
// labels are trimmed and blank-filled; rows without a date or stop id are dropped.
func ParseRoutes(headers []string, rows [][]string) (RouteTable, int, error) {
	res, err := RouteSchema.Resolve(headers)
	if err != nil {
		return nil, 0, err
	}

	out := make(RouteTable, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		date, ok := NormalizeDate(res.Value(row, FieldDate))
		stopID := NormalizeStopID(res.Value(row, FieldStopID))
		if !ok || stopID == "" {
			dropped++
			continue
		}
		out = append(out, RouteMapping{
			Date:   date,
			StopID: stopID,
			Route:  res.Value(row, FieldRoute),
		})
	}
	return out, dropped, nil
}

// parseCoordinate parses a longitude/latitude cell.
func parseCoordinate(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseHeadcount reads a reported headcount such as "1,200", "300명" or "50.0".
// Negative or unparseable values are treated as absent.
func parseHeadcount(s string) *int {
	s = strings.TrimSuffix(strings.ReplaceAll(s, ",", ""), "명")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return nil
		}
		n = int(f)
	}
	if n < 0 {
		return nil
	}
	return &n
}
