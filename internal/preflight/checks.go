package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"mediastudio/internal/social"
	"mediastudio/internal/telemetry"
)

const dialTimeout = 5 * time.Second

// CheckBackend runs the client health probe. The probe carries its own
// timeout and never retries.
func CheckBackend(ctx context.Context, prober Prober) Result {
	const name = "Backend"
	if prober.Health(ctx) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", prober.BaseURL())}
	}
	return Result{Name: name, Detail: fmt.Sprintf("%s (unreachable)", prober.BaseURL())}
}

// CheckTelemetry opens and immediately closes one telemetry connection.
func CheckTelemetry(ctx context.Context, dialer telemetry.Dialer, url string) Result {
	const name = "Telemetry stream"
	if dialer == nil {
		dialer = telemetry.WebSocketDialer{}
	}
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, err := dialer.Dial(dialCtx, url)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", url, err)}
	}
	_ = conn.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (connected)", url)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBrands parses every brand profile. A missing directory passes with no
// brands.
func CheckBrands(dir string) Result {
	const name = "Brand profiles"
	brands, err := social.LoadBrands(dir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", dir, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d loaded)", dir, len(brands))}
}
