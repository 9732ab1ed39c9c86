package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/rally-detour/internal/adapter/busapi"
	"github.com/couchcryptid/rally-detour/internal/adapter/redis"
	"github.com/couchcryptid/rally-detour/internal/config"
	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/couchcryptid/rally-detour/internal/observability"
	"github.com/couchcryptid/rally-detour/internal/pipeline"
	"github.com/spf13/cobra"
)

type fetchOptions struct {
	stops      string
	out        string
	delay      time.Duration
	routeField string
	apiKey     string
	apiURL     string
	redisAddr  string
	noRedis    bool
}

func newFetchCmd() *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Look up the routes of every stop in a stop list and write the route mapping",
		Long: `fetch reads a stop list whose first two columns are the date and the ARS
stop id, queries the bus information service once per distinct stop and
writes a date, ars_id, route CSV sorted by all three columns.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyFetchDefaults(cmd, &opts, cfg)
			if opts.apiKey == "" {
				return fmt.Errorf("no service key: set BUS_API_KEY or pass --api-key")
			}
			if opts.routeField != config.RouteFieldName && opts.routeField != config.RouteFieldAbbrev {
				return fmt.Errorf("invalid --route-field %q: want %s or %s", opts.routeField, config.RouteFieldName, config.RouteFieldAbbrev)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runFetch(ctx, cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.stops, "stops", "", "stop list CSV or spreadsheet (date, stop_id)")
	f.StringVar(&opts.out, "out", "", "route mapping output path (default ROUTES_PATH)")
	f.DurationVar(&opts.delay, "delay", 0, "pause between remote lookups (default BUS_API_DELAY)")
	f.StringVar(&opts.routeField, "route-field", "", "route label field, busRouteNm or busRouteAbrv (default BUS_API_ROUTE_FIELD)")
	f.StringVar(&opts.apiKey, "api-key", "", "bus information service key (default BUS_API_KEY)")
	f.StringVar(&opts.apiURL, "api-url", "", "getRouteByStation endpoint (default BUS_API_URL)")
	f.StringVar(&opts.redisAddr, "redis-addr", "", "share lookups through Redis at this address (default REDIS_ADDR)")
	f.BoolVar(&opts.noRedis, "no-redis", false, "skip the Redis cache even when configured")
	_ = cmd.MarkFlagRequired("stops")

	return cmd
}

// applyFetchDefaults fills every flag the user did not pass from cfg.
func applyFetchDefaults(cmd *cobra.Command, opts *fetchOptions, cfg *config.Config) {
	f := cmd.Flags()
	if !f.Changed("out") {
		opts.out = cfg.RoutesPath
	}
	if !f.Changed("delay") {
		opts.delay = cfg.BusAPIDelay
	}
	if !f.Changed("route-field") {
		opts.routeField = cfg.BusAPIRouteField
	}
	if !f.Changed("api-key") {
		opts.apiKey = cfg.BusAPIKey
	}
	if !f.Changed("api-url") {
		opts.apiURL = cfg.BusAPIURL
	}
	if !f.Changed("redis-addr") && cfg.RedisEnabled {
		opts.redisAddr = cfg.RedisAddr
	}
}

func runFetch(ctx context.Context, cfg *config.Config, opts fetchOptions) error {
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := busapi.NewClient(opts.apiKey, cfg.BusAPITimeout, metrics, logger,
		busapi.WithBaseURL(opts.apiURL),
		busapi.WithRouteField(opts.routeField),
	)

	var lookup domain.RouteLookup = client
	if opts.redisAddr != "" && !opts.noRedis {
		rc, err := redis.Connect(ctx, opts.redisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, continuing without shared cache", "addr", opts.redisAddr, "error", err)
		} else {
			defer rc.Close()
			lookup = redis.NewRouteCache(lookup, rc, cfg.RedisTTL, metrics, logger)
			logger.Info("redis route cache enabled", "addr", opts.redisAddr, "ttl", cfg.RedisTTL)
		}
	}
	lookup = busapi.NewCachedLookup(lookup, cfg.RouteCacheSize, metrics)

	batch := &pipeline.RouteBatch{Lookup: lookup, Delay: opts.delay, Logger: logger}
	n, err := batch.Run(ctx, opts.stops, opts.out)
	if err != nil {
		return err
	}
	logger.Info("route mapping written", "path", opts.out, "rows", n)
	return nil
}
