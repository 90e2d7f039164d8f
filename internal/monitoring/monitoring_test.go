package monitoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/wedding-rsvp/internal/monitoring"
	"github.com/charlesng35/wedding-rsvp/internal/monitoring/checks"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthManagerEvaluate(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager()
	manager.RegisterReadiness(monitoring.NewCheck("store", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	manager.RegisterReadiness(monitoring.NewCheck("smtp", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "connection refused"}
	}))
	manager.RegisterReadiness(monitoring.Check{})

	report := manager.EvaluateReadiness(context.Background())
	require.False(t, report.Success)
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "smtp", report.Checks[1].Component)

	live := manager.EvaluateLiveness(context.Background())
	require.True(t, live.Success)
	require.Empty(t, live.Checks)
}

func TestHealthManagerRecoversPanickingCheck(t *testing.T) {
	t.Parallel()

	manager := monitoring.NewHealthManager()
	manager.RegisterLiveness(monitoring.NewCheck("explodes", func(context.Context) monitoring.ProbeResult {
		panic("kaboom")
	}))
	manager.RegisterLiveness(monitoring.NewCheck("unimplemented", nil))

	report := manager.Evaluate(context.Background())
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Equal(t, "explodes", report.Checks[0].Component)
	require.Contains(t, report.Checks[0].Details, "kaboom")
	require.Equal(t, "probe not implemented", report.Checks[1].Details)
}

func TestStoreCheck(t *testing.T) {
	t.Parallel()

	result := checks.Store(pinger{}, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)

	result = checks.Store(pinger{err: errors.New("no route to host")}, time.Second).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
	require.Equal(t, "no route to host", result.Details)

	result = checks.Store(pinger{err: context.DeadlineExceeded}, time.Second).Run(context.Background())
	require.Equal(t, monitoring.StatusDegraded, result.Status)

	result = checks.Store(nil, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
}

func TestMaintenanceCheck(t *testing.T) {
	t.Parallel()

	tracker := monitoring.NewJobTracker()
	check := checks.Maintenance(tracker, 0)

	result := check.Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)
	require.Equal(t, "no maintenance jobs registered", result.Details)

	tracker.Register("rsvp_digest")
	tracker.Record("stats_refresh", nil, time.Millisecond)
	result = check.Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)
	require.Contains(t, result.Details, "rsvp_digest: pending first run")

	tracker.Record("rsvp_digest", errors.New("smtp down"), time.Second)
	result = check.Run(context.Background())
	require.Equal(t, monitoring.StatusDegraded, result.Status)
	require.Contains(t, result.Details, "rsvp_digest: smtp down")

	tracker.Record("rsvp_digest", nil, time.Second)
	result = check.Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)

	jobs := tracker.Snapshot()
	require.Len(t, jobs, 2)
	require.Equal(t, "rsvp_digest", jobs[0].Job)
	require.Equal(t, uint64(2), jobs[0].TotalRuns)
	require.Equal(t, uint64(1), jobs[0].Failures)
	require.Zero(t, jobs[0].ConsecutiveFailures)
}

func TestWorst(t *testing.T) {
	t.Parallel()

	require.Equal(t, monitoring.StatusUp, monitoring.Worst(monitoring.StatusUp, monitoring.StatusUp))
	require.Equal(t, monitoring.StatusDegraded, monitoring.Worst(monitoring.StatusDegraded, monitoring.StatusUp))
	require.Equal(t, monitoring.StatusDown, monitoring.Worst(monitoring.StatusDegraded, monitoring.StatusDown))
}
