// Package app wires the healthd daemon: configuration in, a serving HTTP
// handler out.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/healthkit/adapters/echohealth"
	"github.com/jonwraymond/healthkit/adapters/ginhealth"
	"github.com/jonwraymond/healthkit/auth"
	"github.com/jonwraymond/healthkit/cache"
	"github.com/jonwraymond/healthkit/health"
	"github.com/jonwraymond/healthkit/internal/config"
	"github.com/jonwraymond/healthkit/observe"
	"github.com/jonwraymond/healthkit/observe/exporters"
)

// App is a configured healthd instance.
type App struct {
	cfg      config.Config
	observer observe.Observer
	logger   observe.Logger
	registry *health.Registry
	handler  http.Handler
	releases []func()
}

// New builds every component described by cfg. Dependency clients are
// created without connecting; unreachable dependencies show up as failing
// checks, not as errors here.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs, err := observe.NewObserver(ctx, cfg.Observe,
		observe.WithExporterOptions(exporters.Options{Registerer: promReg}))
	if err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}
	instr, err := observe.InstrumentationFromObserver(obs)
	if err != nil {
		return nil, errors.Join(err, obs.Shutdown(ctx))
	}

	a := &App{cfg: cfg, observer: obs, logger: obs.Logger()}

	opts := []health.Option{
		health.WithTimeout(cfg.Server.CheckTimeout),
		health.WithReportTimeout(cfg.Server.RequestTimeout),
		health.WithLogger(a.logger),
		health.WithInstrumentation(instr),
	}
	if cfg.Cache.TTL > 0 {
		opts = append(opts, health.WithReportCache(cache.NewMemoryCache(), cache.Policy{TTL: cfg.Cache.TTL}))
	}
	a.registry = health.NewRegistry(opts...)

	for _, cc := range cfg.Checks {
		checker, release, err := buildChecker(ctx, cc)
		a.releases = append(a.releases, release)
		if err == nil {
			err = a.registry.Add(cc.Name, checker, checkOptions(cc)...)
		}
		if err != nil {
			return nil, errors.Join(fmt.Errorf("check %q: %w", cc.Name, err), a.Close(ctx))
		}
	}

	var metrics http.Handler
	if cfg.Observe.Metrics.Enabled && cfg.Observe.Metrics.Exporter == "prometheus" && cfg.Server.MetricsPath != "" {
		metrics = promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})
	}
	a.handler = a.route(handlerOptions(cfg.Server, cfg.Auth), metrics)

	a.logger.Info(ctx, "healthd configured",
		observe.Field{Key: "checks", Value: a.registry.Names()},
		observe.Field{Key: "framework", Value: cfg.Server.Framework},
	)
	return a, nil
}

func handlerOptions(srv config.ServerConfig, ac config.AuthConfig) []health.HandlerOption {
	opts := []health.HandlerOption{health.WithRequestTimeout(srv.RequestTimeout)}
	if a := authenticator(ac); a != nil {
		opts = append(opts, health.WithAuthenticator(a))
	}
	return opts
}

func authenticator(ac config.AuthConfig) auth.Authenticator {
	var auths []auth.Authenticator
	if ac.JWTSecret != "" {
		auths = append(auths, auth.NewJWTAuthenticator(auth.JWTConfig{
			Secret:   []byte(ac.JWTSecret),
			Issuer:   ac.JWTIssuer,
			Audience: ac.JWTAudience,
		}))
	}
	if len(ac.APIKeys) > 0 {
		store := auth.NewMemoryAPIKeyStore()
		for i, key := range ac.APIKeys {
			store.Add(fmt.Sprintf("key-%d", i), key)
		}
		auths = append(auths, auth.NewAPIKeyAuthenticator(ac.APIKeyHeader, store))
	}

	switch len(auths) {
	case 0:
		return nil
	case 1:
		return auths[0]
	}
	return auth.NewCompositeAuthenticator(auths...)
}

func (a *App) route(opts []health.HandlerOption, metrics http.Handler) http.Handler {
	path := a.cfg.Server.MetricsPath

	switch a.cfg.Server.Framework {
	case config.FrameworkGin:
		gin.SetMode(gin.ReleaseMode)
		r := gin.New()
		r.Use(gin.Recovery())
		ginhealth.Register(r, a.registry, opts...)
		if metrics != nil {
			r.GET(path, gin.WrapH(metrics))
		}
		return r

	case config.FrameworkEcho:
		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		echohealth.Register(e, a.registry, opts...)
		if metrics != nil {
			e.GET(path, echo.WrapHandler(metrics))
		}
		return e
	}

	mux := http.NewServeMux()
	health.RegisterHandlers(mux, a.registry, opts...)
	if metrics != nil {
		mux.Handle("GET "+path, metrics)
	}
	return mux
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Registry returns the check registry.
func (a *App) Registry() *health.Registry { return a.registry }

// Logger returns the daemon logger.
func (a *App) Logger() observe.Logger { return a.logger }

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured timeout.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: a.cfg.Server.RequestTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	a.logger.Info(ctx, "healthd listening", observe.Field{Key: "addr", Value: ln.Addr().String()})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) {
		err = errors.Join(err, serveErr)
	}
	a.logger.Info(shutdownCtx, "healthd stopped")
	return err
}

// ListenAndServe listens on the configured address and calls Serve.
func (a *App) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Close releases dependency clients and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	for _, release := range slices.Backward(a.releases) {
		release()
	}
	a.releases = nil
	return a.observer.Shutdown(ctx)
}
