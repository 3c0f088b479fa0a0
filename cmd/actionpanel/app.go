package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/ericfisherdev/actionpanel/internal/adapter/driven/actionsapi"
	"github.com/ericfisherdev/actionpanel/internal/adapter/driven/memory"
	sqliteadapter "github.com/ericfisherdev/actionpanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/actionpanel/internal/adapter/driving/navigation"
	"github.com/ericfisherdev/actionpanel/internal/application"
	"github.com/ericfisherdev/actionpanel/internal/config"
	"github.com/ericfisherdev/actionpanel/internal/domain/port/driven"
	"github.com/ericfisherdev/actionpanel/internal/metrics"
)

// app is the wired core shared by every command.
type app struct {
	cfg      *config.Config
	session  *application.SessionManager
	client   *actionsapi.Client
	list     *application.ListController
	registry *prometheus.Registry
	storage  string
	closeFn  func() error
}

// stores bundles the credential and preference ports with a description of
// where they live.
type stores struct {
	creds   driven.CredentialStore
	prefs   driven.PreferenceStore
	desc    string
	closeFn func() error
}

// setupLogger installs the default slog handler. verbose forces debug.
func setupLogger(cfg *config.Config, fallback slog.Level, verbose bool) {
	level := cfg.Level(fallback)
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newApp wires storage, session, metrics and the API client. The session is
// not bootstrapped; callers decide whether to wait for it.
func newApp(ctx context.Context, cfg *config.Config, nav driven.LoginNavigator) (*app, error) {
	// 1. Open credential and preference storage.
	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// 2. Session manager over the credential store.
	session := application.NewSessionManager(st.creds)

	// 3. Metrics registry.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 4. API client: resource calls through the gateway, login calls direct.
	opts := []actionsapi.GatewayOption{
		actionsapi.WithMetrics(collector),
		actionsapi.WithNavigator(nav),
	}
	if limiter := newLimiter(cfg.RequestsPerSecond); limiter != nil {
		opts = append(opts, actionsapi.WithLimiter(limiter))
	}
	client, err := actionsapi.NewClient(actionsapi.ClientConfig{
		APIBaseURL:  cfg.APIBaseURL,
		AuthBaseURL: cfg.AuthBaseURL,
		Timeout:     cfg.HTTPTimeout,
		Transport:   actionsapi.NewTransport(session, opts...),
		Envelopes:   collector,
	})
	if err != nil {
		_ = st.closeFn()
		return nil, err
	}

	// 5. List controller with the remembered page size.
	list := application.NewListController(client, st.prefs, cfg.PageSize, application.WithStaleRecorder(collector))
	if err := list.LoadPreferences(ctx); err != nil {
		slog.Warn("failed to load list preferences", "error", err)
	}

	return &app{
		cfg:      cfg,
		session:  session,
		client:   client,
		list:     list,
		registry: registry,
		storage:  st.desc,
		closeFn:  st.closeFn,
	}, nil
}

// Close releases storage.
func (a *app) Close() error {
	return a.closeFn()
}

func openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	if cfg.DBPath == "" {
		store := memory.NewStore()
		slog.Debug("using in-memory credential store")
		return stores{creds: store, prefs: store, desc: "memory", closeFn: func() error { return nil }}, nil
	}

	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return stores{}, err
	}
	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return stores{}, errors.Join(err, db.Close())
	}
	slog.Debug("database opened", "path", cfg.DBPath, "schema_version", version)

	creds := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	desc := "sqlite " + db.Path()
	if creds.Encrypted() {
		desc += " (encrypted)"
	}

	return stores{
		creds:   creds,
		prefs:   sqliteadapter.NewPreferenceRepo(db),
		desc:    desc,
		closeFn: db.Close,
	}, nil
}

// newLimiter paces outgoing calls at rps with a burst of one second's worth.
// Non-positive rps disables pacing.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := max(1, int(math.Ceil(rps)))
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// newCLINavigator tells the user once per process that the session ended.
func newCLINavigator(w io.Writer) *navigation.Navigator {
	var once sync.Once
	return &navigation.Navigator{
		OnRequest: func(context.Context) {
			once.Do(func() {
				_, _ = fmt.Fprintln(w, "session expired: run `actionpanel login` to sign in again")
			})
		},
	}
}
