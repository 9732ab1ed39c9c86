// Command routes maintains the route-mapping file: it fetches the routes
// serving each diverted stop from the bus information service and checks the
// mapping against the diversion sheet.
//
// Usage:
//
//	go run ./cmd/routes fetch --stops data/stops.csv --out routes_final.csv
//	go run ./cmd/routes check --diversions data/bus_data.xlsx --routes routes_final.csv
package main

import (
	"fmt"
	"os"

	"github.com/couchcryptid/rally-detour/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "routes",
		Short:         "Fetch and check the stop-to-route mapping",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newFetchCmd(), newCheckCmd())
	return root
}

// loadConfig reads the service environment. Flags override it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
