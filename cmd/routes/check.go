package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/couchcryptid/rally-detour/internal/source"
	"github.com/spf13/cobra"
)

// maxReportedIssues caps the detail lines printed per phase.
const maxReportedIssues = 20

// phase tracks pass/fail for one check.
type phase struct {
	name   string
	issues []string
}

func (p *phase) issuef(format string, args ...any) {
	p.issues = append(p.issues, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.issues) == 0 }

func newCheckCmd() *cobra.Command {
	var diversionsPath, routesPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the route mapping against the diversion sheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("diversions") {
				diversionsPath = cfg.DiversionsPath
			}
			if !cmd.Flags().Changed("routes") {
				routesPath = cfg.RoutesPath
			}

			diversions, divDropped, err := source.LoadDiversions(diversionsPath)
			if err != nil {
				return fmt.Errorf("load diversions: %w", err)
			}
			routes, routeDropped, err := source.LoadRoutes(routesPath)
			if err != nil {
				return fmt.Errorf("load routes: %w", err)
			}

			phases := []*phase{
				checkDropped("Diversion rows parse", divDropped),
				checkDropped("Route rows parse", routeDropped),
				checkCoverage(diversions, routes),
				checkOrphans(diversions, routes),
			}
			if !report(cmd.OutOrStdout(), phases, len(diversions), len(routes)) {
				return fmt.Errorf("route mapping check failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&diversionsPath, "diversions", "", "diversion sheet (default DIVERSIONS_PATH)")
	cmd.Flags().StringVar(&routesPath, "routes", "", "route mapping CSV (default ROUTES_PATH)")
	return cmd
}

func checkDropped(name string, dropped int) *phase {
	p := &phase{name: name}
	if dropped > 0 {
		p.issuef("%d rows could not be parsed", dropped)
	}
	return p
}

// checkCoverage verifies that every day a diverted stop is active has at
// least one route row.
func checkCoverage(diversions domain.DiversionTable, routes domain.RouteTable) *phase {
	p := &phase{name: "Diverted stops have routes"}

	mapped := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		if r.Route != "" {
			mapped[r.Date.String()+"|"+r.StopID] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	for _, div := range diversions {
		for d := div.StartDate; !d.After(div.EndDate); d = domain.DateOf(d.Time().AddDate(0, 0, 1)) {
			key := d.String() + "|" + div.StopID
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, ok := mapped[key]; !ok {
				p.issuef("%s stop %s (%s) has no route", d, div.StopID, div.StopName)
			}
		}
	}
	sort.Strings(p.issues)
	return p
}

// checkOrphans reports route rows for stops that are not diverted that day.
func checkOrphans(diversions domain.DiversionTable, routes domain.RouteTable) *phase {
	p := &phase{name: "Route rows match a diversion"}

	reported := make(map[string]struct{})
	for _, r := range routes {
		key := r.Date.String() + "|" + r.StopID
		if _, dup := reported[key]; dup {
			continue
		}
		active := false
		for _, div := range domain.DiversionsActiveOn(diversions, r.Date) {
			if div.StopID == r.StopID {
				active = true
				break
			}
		}
		if !active {
			reported[key] = struct{}{}
			p.issuef("%s stop %s is not diverted", r.Date, r.StopID)
		}
	}
	return p
}

// report prints a pass/fail table followed by the issues of failed phases.
func report(w io.Writer, phases []*phase, diversions, routes int) bool {
	fmt.Fprintln(w, "=== Route Mapping Check ===")
	fmt.Fprintln(w)

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d issues)", len(p.issues))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.name, status)
	}
	fmt.Fprintf(w, "\nRows: %d diversions, %d routes\n", diversions, routes)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, issue := range p.issues {
			if i == maxReportedIssues {
				fmt.Fprintf(w, "  ... %d more\n", len(p.issues)-i)
				break
			}
			fmt.Fprintf(w, "  [%d] %s\n", i+1, issue)
		}
	}
	return allPassed
}
