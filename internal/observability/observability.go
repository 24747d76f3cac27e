// Package observability starts the optional tracing and profiling backends
// configured for a matchfeed process.
package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

// Runtime holds whatever Start brought up. The zero value has nothing to stop.
type Runtime struct {
	logger    *logging.Logger
	stoppers  []stopper
	pprofAddr string
}

type stopper struct {
	name string
	stop func(context.Context) error
}

// Start brings up Uptrace, Pyroscope and the pprof listener as enabled in cfg.
// If one fails, everything already started is shut down before returning.
func Start(cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}
	rt := &Runtime{logger: logger.Named("observability")}

	if cfg.UptraceEnabled && cfg.UptraceDSN != "" {
		uptrace.ConfigureOpentelemetry(
			uptrace.WithDSN(cfg.UptraceDSN),
			uptrace.WithServiceName(cfg.ServiceName),
			uptrace.WithServiceVersion(cfg.ServiceVersion),
			uptrace.WithDeploymentEnvironment(cfg.AppEnv),
			uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
		)
		rt.add("uptrace", uptrace.Shutdown)
	}

	if cfg.PyroscopeEnabled {
		profiler, err := pyroscope.Start(pyroscopeConfig(cfg))
		if err != nil {
			rt.Shutdown(context.Background())
			return nil, err
		}
		rt.add("pyroscope", func(context.Context) error { return profiler.Stop() })
	}

	if cfg.PprofEnabled {
		srv := &http.Server{
			Addr:              cfg.PprofAddr,
			Handler:           pprofMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rt.logger.Error("pprof listener failed", "addr", cfg.PprofAddr, "error", err)
			}
		}()
		rt.pprofAddr = cfg.PprofAddr
		rt.add("pprof", srv.Shutdown)
	}

	rt.logger.Info("observability started",
		"uptrace", cfg.UptraceEnabled && cfg.UptraceDSN != "",
		"uptrace_logs", cfg.UptraceLogsEnabled,
		"pyroscope", cfg.PyroscopeEnabled,
		"pprof_addr", rt.pprofAddr,
	)
	return rt, nil
}

func (rt *Runtime) add(name string, stop func(context.Context) error) {
	rt.stoppers = append(rt.stoppers, stopper{name: name, stop: stop})
}

// Shutdown stops backends in reverse start order and reports every failure.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	if rt == nil {
		return nil
	}
	var errs []error
	for i := len(rt.stoppers) - 1; i >= 0; i-- {
		s := rt.stoppers[i]
		if err := s.stop(ctx); err != nil {
			rt.logger.Warn("stop failed", "backend", s.name, "error", err)
			errs = append(errs, err)
		}
	}
	rt.stoppers = nil
	return errors.Join(errs...)
}

// Running lists started backends in start order.
func (rt *Runtime) Running() []string {
	if rt == nil {
		return nil
	}
	names := make([]string, 0, len(rt.stoppers))
	for _, s := range rt.stoppers {
		names = append(names, s.name)
	}
	return names
}

func pyroscopeConfig(cfg config.Config) pyroscope.Config {
	return pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              map[string]string{"env": cfg.AppEnv, "service": cfg.ServiceName},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexDuration,
		},
	}
}

// pprofMux is served on its own listener, never on the public API port.
func pprofMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}
