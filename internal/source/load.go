package source

import "github.com/couchcryptid/rally-detour/internal/domain"

// LoadEvents reads and normalizes the event sheet. A missing file or missing
// required column is returned as an error; unparseable rows are dropped and
// counted.
func LoadEvents(path string) (domain.EventTable, int, error) {
	headers, rows, err := ReadTable(path)
	if err != nil {
		return nil, 0, err
	}
	return domain.ParseEvents(headers, rows)
}

// LoadDiversions reads and normalizes the diversion sheet.
func LoadDiversions(path string) (domain.DiversionTable, int, error) {
	headers, rows, err := ReadTable(path)
	if err != nil {
		return nil, 0, err
	}
	return domain.ParseDiversions(headers, rows)
}

// LoadRoutes reads and normalizes the route-mapping CSV.
func LoadRoutes(path string) (domain.RouteTable, int, error) {
	headers, rows, err := ReadTable(path)
	if err != nil {
		return nil, 0, err
	}
	return domain.ParseRoutes(headers, rows)
}
