package main

import (
	"context"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/wedding-rsvp/internal/app"
	"github.com/charlesng35/wedding-rsvp/internal/app/maintenance"
	"github.com/charlesng35/wedding-rsvp/internal/auth"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()
	return &app.Config{
		Server: app.ServerConfig{Port: 3000},
		Store:  app.StoreConfig{Driver: app.StoreDriverSQL, Collection: "rsvps"},
		Database: app.DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "wedding.sqlite"),
		},
		Notifications: app.NotificationConfig{
			Digest: app.DigestConfig{StatsSchedule: "@every 1h", Schedule: "@daily"},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}
}

func TestBootstrapRuntimeServesRSVPs(t *testing.T) {
	cfg := testConfig(t)
	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, stack.Shutdown(context.Background())) })

	body := `{"name":"Ana","email":"a@x.com","attending":"yes","guestCount":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/rsvp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/rsvps", nil)
	req.Header.Set("Authorization", "Bearer "+auth.DefaultAdminToken)
	w = httptest.NewRecorder()
	stack.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"totalGuests":2`)

	stats, err := stack.Scheduler.RefreshStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Total)

	w = httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), `"component":"maintenance"`)

	jobs := stack.Jobs.Snapshot()
	require.Len(t, jobs, 1)
	require.Equal(t, maintenance.JobStatsRefresh, jobs[0].Job)

	_, err = os.Stat(cfg.Database.Path)
	require.NoError(t, err)
}

func TestBootstrapRuntimeRejectsBadStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "redis"
	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "unsupported store driver")

	cfg = testConfig(t)
	cfg.Store.Driver = app.StoreDriverFirestore
	_, err = bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "open firestore")

	cfg = testConfig(t)
	cfg.Database.Driver = "oracle"
	_, err = bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "open database")
}

func TestBootstrapRuntimeRejectsBadSMTP(t *testing.T) {
	cfg := testConfig(t)
	cfg.Email.SMTP.Enabled = true
	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "initialise mailer")
}

func TestShutdownHonoursDeadline(t *testing.T) {
	stack, err := bootstrapRuntime(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, stack.Shutdown(ctx))

	var nilStack *runtimeStack
	require.NoError(t, nilStack.Shutdown(context.Background()))
}

func TestLoadApplicationConfig(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "does not exist")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 4100\n"), 0o600))

	cfg, err := loadApplicationConfig(path)
	require.NoError(t, err)
	require.Equal(t, 4100, cfg.Server.Port)

	cfg, err = loadApplicationConfig(dir)
	require.NoError(t, err)
	require.Equal(t, 4100, cfg.Server.Port)
}

func TestRunHelp(t *testing.T) {
	err := run(context.Background(), []string{"-h"})
	require.ErrorIs(t, err, flag.ErrHelp)
}
