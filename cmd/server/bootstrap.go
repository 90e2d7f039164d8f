package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/wedding-rsvp/internal/api"
	"github.com/charlesng35/wedding-rsvp/internal/app"
	"github.com/charlesng35/wedding-rsvp/internal/app/maintenance"
	"github.com/charlesng35/wedding-rsvp/internal/auth"
	"github.com/charlesng35/wedding-rsvp/internal/database"
	"github.com/charlesng35/wedding-rsvp/internal/monitoring"
	"github.com/charlesng35/wedding-rsvp/internal/monitoring/checks"
	"github.com/charlesng35/wedding-rsvp/internal/services"
	"github.com/charlesng35/wedding-rsvp/internal/store"
	"github.com/charlesng35/wedding-rsvp/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Store     store.Store
	Service   *services.RSVPService
	Jobs      *monitoring.JobTracker
	Scheduler *maintenance.Scheduler
	Router    *gin.Engine
}

// bootstrapRuntime initialises the store, services, background jobs, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			if err := stack.Shutdown(context.Background()); err != nil {
				log.Warn("bootstrap cleanup", zap.Error(err))
			}
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := stack.openStore(ctx, cfg); err != nil {
		return nil, err
	}

	mailer, err := cfg.Email.NewMailer()
	if err != nil {
		return nil, fmt.Errorf("initialise mailer: %w", err)
	}

	var serviceOpts []services.RSVPOption
	if cfg.Notifications.Confirmation.Enabled {
		serviceOpts = append(serviceOpts, services.WithConfirmationMailer(
			mailer,
			cfg.Notifications.Confirmation.ConfirmationSettings(cfg.Email.DeliveryTimeout()),
		))
	}
	stack.Service, err = services.NewRSVPService(stack.Store, serviceOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise rsvp service: %w", err)
	}

	stack.Jobs = monitoring.NewJobTracker()
	stack.Scheduler, err = maintenance.NewScheduler(stack.Service,
		maintenance.WithTracker(stack.Jobs),
		maintenance.WithStatsSchedule(cfg.Notifications.Digest.StatsSchedule),
		maintenance.WithDigestSchedule(cfg.Notifications.Digest.Schedule),
		maintenance.WithDigest(mailer, cfg.Notifications.Digest.DigestRecipients(), cfg.Notifications.Confirmation.EventName),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise maintenance: %w", err)
	}
	if err := stack.Scheduler.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	health := monitoring.NewHealthManager()
	health.RegisterReadiness(checks.Store(stack.Store, cfg.Store.PingTimeout))
	health.RegisterReadiness(checks.Maintenance(stack.Jobs, cfg.Monitoring.Health.MaintenanceMaxAge))

	stack.Router, err = api.NewRouter(api.Options{
		Service:        stack.Service,
		Admin:          auth.NewAdmin(cfg.Admin.AdminSettings()),
		Health:         health,
		CORSOrigins:    cfg.Server.CORSOrigins,
		HSTS:           cfg.Server.HSTS,
		MetricsEnabled: cfg.Monitoring.Prometheus.Enabled,
		MetricsPath:    cfg.Monitoring.Prometheus.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func (s *runtimeStack) openStore(ctx context.Context, cfg *app.Config) error {
	log := logger.WithModule("store")

	switch cfg.StoreDriver() {
	case app.StoreDriverFirestore:
		fs, err := store.NewFirestoreStore(ctx, cfg.FirestoreSettings())
		if err != nil {
			return fmt.Errorf("open firestore: %w", err)
		}
		s.Store = fs
		log.Info("firestore connected", zap.String("project", cfg.Firebase.ProjectID))
		return nil

	case app.StoreDriverSQL:
		db, err := initialiseDatabase(cfg)
		if err != nil {
			return err
		}
		s.DB = db
		s.Store, err = store.NewGormStore(db)
		return err

	default:
		return fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var errs error
	if s.Scheduler != nil {
		stopCtx := s.Scheduler.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
			errs = multierr.Append(errs, fmt.Errorf("maintenance stop: %w", ctx.Err()))
		}
	}

	if s.Store != nil {
		errs = multierr.Append(errs, s.Store.Close())
	}
	if s.DB != nil {
		errs = multierr.Append(errs, database.Close(s.DB))
	}
	return errs
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseSettings()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Prepare(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}
