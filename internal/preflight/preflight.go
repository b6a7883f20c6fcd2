package preflight

import (
	"context"

	"mediastudio/internal/config"
	"mediastudio/internal/telemetry"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Prober reports backend reachability.
type Prober interface {
	Health(ctx context.Context) bool
	BaseURL() string
	TelemetryURL() string
}

// RunAll executes every check for the given config.
func RunAll(ctx context.Context, cfg *config.Config, prober Prober, dialer telemetry.Dialer) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckBackend(ctx, prober),
		CheckTelemetry(ctx, dialer, prober.TelemetryURL()),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Paths.BrandsDir != "" {
		results = append(results, CheckBrands(cfg.Paths.BrandsDir))
	}
	return results
}

// Failed counts failing results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}
