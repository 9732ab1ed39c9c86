package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/couchcryptid/rally-detour/internal/source"
)

// RouteHeader is the header of a route-mapping file.
var RouteHeader = []string{"date", "ars_id", "route"}

// ReadStops reads a stop list whose first two columns are the date and the
// raw stop id, whatever their headers say.
func ReadStops(path string) ([]domain.StopDay, error) {
	_, rows, err := source.ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("read stops: %w", err)
	}
	stops := make([]domain.StopDay, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		stops = append(stops, domain.StopDay{
			Date:   strings.TrimSpace(row[0]),
			StopID: strings.TrimSpace(row[1]),
		})
	}
	return stops, nil
}

// RouteBatch resolves the routes of every stop in a stop list and writes the
// route-mapping file.
type RouteBatch struct {
	Lookup domain.RouteLookup
	Delay  time.Duration
	Logger *slog.Logger
}

// Run reads stopsPath, looks up each distinct stop and writes outPath. It
// returns the number of route rows written.
func (b *RouteBatch) Run(ctx context.Context, stopsPath, outPath string) (int, error) {
	stops, err := ReadStops(stopsPath)
	if err != nil {
		return 0, err
	}
	b.Logger.Info("route batch started", "stops", len(stops), "delay", b.Delay)

	rows := domain.BuildRouteTable(ctx, b.Lookup, stops, b.Delay, b.Logger)
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("route batch interrupted: %w", err)
	}

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.Date, r.StopID, r.Route})
	}
	if err := source.WriteCSV(outPath, RouteHeader, records); err != nil {
		return 0, fmt.Errorf("write route table: %w", err)
	}

	b.Logger.Info("route batch finished", "path", outPath, "rows", len(records))
	return len(records), nil
}
