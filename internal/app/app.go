package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slog"

	"noteminder/internal/auth"
	"noteminder/internal/config"
	"noteminder/internal/db"
	grpcserver "noteminder/internal/grpc"
	"noteminder/internal/reminder"
	"noteminder/internal/service"
	"noteminder/models"
	"noteminder/repository"
)

const shutdownTimeout = 5 * time.Second

// App owns the database handle and every component built on it.
type App struct {
	Config *config.Config
	Log    *slog.Logger

	DB         *sql.DB
	Users      *repository.UserRepository
	Categories *repository.CategoryRepository
	Notes      *repository.NoteRepository

	Guard     *auth.SessionGuard
	Service   *service.Notes
	Scheduler *reminder.Scheduler
	Registry  *prometheus.Registry
}

// Option customises App construction.
type Option func(*options)

type options struct {
	notifier reminder.Notifier
	clock    reminder.Clock
}

// WithNotifier replaces the notifier chosen from configuration.
func WithNotifier(n reminder.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithClock replaces the scheduler's wall clock.
func WithClock(c reminder.Clock) Option {
	return func(o *options) { o.clock = c }
}

// New opens the database, applies migrations, seeds the admin account on
// first run and builds the components.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	a := &App{
		Config:     cfg,
		Log:        log,
		DB:         d,
		Users:      repository.NewUserRepository(d),
		Categories: repository.NewCategoryRepository(d),
		Notes:      repository.NewNoteRepository(d),
		Registry:   prometheus.NewRegistry(),
	}
	a.Guard = auth.NewSessionGuard(a.Users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	a.Service = service.NewNotes(a.Users, a.Categories, a.Notes, log)

	if _, err := a.Guard.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := reminder.NewMetrics(a.Registry)
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	notifier := o.notifier
	if notifier == nil {
		if cfg.Reminder.Desktop {
			notifier = reminder.NewDesktopNotifier(cfg.Reminder.NotifyTimeout)
		} else {
			notifier = reminder.NewLogNotifier(log)
		}
	}
	schedOpts := []reminder.Option{
		reminder.WithInterval(cfg.Reminder.Interval),
		reminder.WithMetrics(metrics),
	}
	if o.clock != nil {
		schedOpts = append(schedOpts, reminder.WithClock(o.clock))
	}
	a.Scheduler = reminder.NewScheduler(a.Notes, notifier, log, schedOpts...)
	return a, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

// GRPCServer returns the note service bound to this app.
func (a *App) GRPCServer() *grpcserver.Server {
	return &grpcserver.Server{
		Guard:    a.Guard,
		Notes:    a.Service,
		Users:    a.Users,
		Secret:   a.Config.Auth.JWTSecret,
		TokenTTL: a.Config.Auth.TokenTTL,
	}
}

// SaveSession persists the token of the logged-in user for later invocations.
func (a *App) SaveSession(token string) error {
	return os.WriteFile(a.Config.Auth.TokenPath, []byte(token+"\n"), 0o600)
}

// ClearSession forgets the persisted token and the active identity.
func (a *App) ClearSession() error {
	a.Guard.Logout()
	err := os.Remove(a.Config.Auth.TokenPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RestoreSession re-establishes the identity saved by SaveSession.
// It returns auth.ErrNoSession when nobody is logged in.
func (a *App) RestoreSession(ctx context.Context) (*models.User, error) {
	raw, err := os.ReadFile(a.Config.Auth.TokenPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, auth.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	u, err := a.Guard.Restore(ctx, strings.TrimSpace(string(raw)))
	if err != nil {
		a.Log.Debug("stale session discarded", "error", err)
		_ = os.Remove(a.Config.Auth.TokenPath)
		return nil, err
	}
	return u, nil
}

// RunDaemon runs the reminder scheduler, the gRPC API and the metrics
// endpoint until ctx is cancelled. An empty address disables that listener.
func (a *App) RunDaemon(ctx context.Context) error {
	var shutdowns []func(context.Context) error

	if a.Config.GRPC.Address != "" {
		stop, err := grpcserver.StartGRPC(a.Config, a.GRPCServer(), a.Log)
		if err != nil {
			return fmt.Errorf("start grpc: %w", err)
		}
		shutdowns = append(shutdowns, stop)
	}

	if a.Config.Metrics.Address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: a.Config.Metrics.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.Log.Error("metrics server", "error", err)
			}
		}()
		a.Log.Info("metrics listening", "address", a.Config.Metrics.Address)
		shutdowns = append(shutdowns, srv.Shutdown)
	}

	err := a.Scheduler.Run(ctx)

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(shutdowns) - 1; i >= 0; i-- {
		if serr := shutdowns[i](sctx); serr != nil {
			a.Log.Warn("shutdown", "error", serr)
		}
	}
	return err
}
