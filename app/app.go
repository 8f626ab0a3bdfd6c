/*
Package app wires configuration, storage and services into one graph shared
by the HTTP server and the commctl CLI.

STARTUP SEQUENCE:
 1. Resolve the business timezone from config
 2. Open the sqlite store
 3. Load the latest settings version, or seed version 1 from config
 4. Build the commission, checklist and report services

SETTINGS PRECEDENCE:
  Stored settings always win over config.commission once a version exists.
  Config only seeds an empty database.

SEE ALSO:
  - config/config.go: Config layout
  - factory/settings.go: Settings JSON
  - cmd/server/main.go, cmd/commctl: Callers
*/
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/construcosta/commission-engine/api"
	"github.com/construcosta/commission-engine/checklist"
	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/config"
	"github.com/construcosta/commission-engine/core"
	"github.com/construcosta/commission-engine/factory"
	"github.com/construcosta/commission-engine/report"
	"github.com/construcosta/commission-engine/store/sqlite"
)

// App is the wired service graph.
type App struct {
	Config *config.Config
	Log    *slog.Logger
	Clock  func() time.Time

	Store       *sqlite.Store
	Factory     *factory.SettingsFactory
	Commissions *commission.Service
	Checklists  *checklist.Service
	Reports     *report.Service

	// SettingsVersion is the stored version the services started with.
	SettingsVersion int
}

// New opens storage and builds the services. A nil clock means time.Now.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger, clock func() time.Time) (*App, error) {
	const op = "app.New"

	if log == nil {
		log = slog.Default()
	}
	if clock == nil {
		clock = time.Now
	}

	loc, err := core.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: timezone %q: %w", op, cfg.Timezone, err)
	}

	if cfg.StoragePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o755); err != nil {
			return nil, fmt.Errorf("%s: storage dir: %w", op, err)
		}
	}
	store, err := sqlite.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f := factory.NewSettingsFactory(loc)
	settings, version, err := loadSettings(ctx, store, f, cfg, log)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	commissions, err := commission.NewService(settings, commission.Deps{
		Employees:     store,
		Deliveries:    store,
		Occurrences:   store,
		Checklists:    store,
		Commissions:   store,
		Notifications: store,
	}, clock)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	checklists := checklist.NewService(store, store, checklist.DefaultTemplate(), checklist.Options{
		RestrictToAssignedDay: cfg.Checklist.RestrictToAssignedDay,
		Location:              settings.Location,
		CurrentLocation:       func() *time.Location { return commissions.Settings().Location },
	}, clock)

	return &App{
		Config:          cfg,
		Log:             log,
		Clock:           clock,
		Store:           store,
		Factory:         f,
		Commissions:     commissions,
		Checklists:      checklists,
		Reports:         report.NewService(store, commissions, clock),
		SettingsVersion: version,
	}, nil
}

// Handler builds the HTTP handler over the app's services.
func (a *App) Handler() *api.Handler {
	return api.NewHandler(api.Deps{
		Store:       a.Store,
		Settings:    a.Store,
		Commissions: a.Commissions,
		Checklists:  a.Checklists,
		Reports:     a.Reports,
		Factory:     a.Factory,
		Log:         a.Log,
		Clock:       a.Clock,
	})
}

// Scheduler builds the reminder scheduler from config.
func (a *App) Scheduler() *api.ReminderScheduler {
	rs := api.NewReminderScheduler(a.Store, a.Checklists, a.Log)
	rs.Clock = a.Clock
	rs.Enabled = a.Config.Scheduler.Enabled
	if a.Config.Scheduler.Interval > 0 {
		rs.CheckInterval = a.Config.Scheduler.Interval
	}
	return rs
}

func (a *App) Close() error {
	return a.Store.Close()
}

func loadSettings(ctx context.Context, store *sqlite.Store, f *factory.SettingsFactory, cfg *config.Config, log *slog.Logger) (commission.Settings, int, error) {
	rec, err := store.LatestSettings(ctx)
	if err != nil {
		return commission.Settings{}, 0, fmt.Errorf("load settings: %w", err)
	}
	if rec != nil {
		settings, err := f.ParseSettings(rec.ConfigJSON)
		if err != nil {
			return commission.Settings{}, 0, fmt.Errorf("settings version %d: %w", rec.Version, err)
		}
		log.Info("settings loaded", slog.Int("version", rec.Version))
		return settings, rec.Version, nil
	}

	settings, err := f.ParseSettings(cfg.SettingsJSON())
	if err != nil {
		return commission.Settings{}, 0, fmt.Errorf("settings from config: %w", err)
	}
	doc, err := f.Marshal(settings)
	if err != nil {
		return commission.Settings{}, 0, err
	}
	version, err := store.SaveSettings(ctx, doc)
	if err != nil {
		return commission.Settings{}, 0, fmt.Errorf("seed settings: %w", err)
	}
	log.Info("settings seeded from config", slog.Int("version", version))
	return settings, version, nil
}

// SetupLogger returns a text logger for local runs and JSON elsewhere.
func SetupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}
