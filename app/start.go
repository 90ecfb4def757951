package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// shutdownTimeout bounds graceful shutdown of servers and workers.
const shutdownTimeout = 15 * time.Second

// Run serves HTTP until ctx is cancelled, then shuts everything down.
func (app *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go app.AttemptModule.Run(ctx, &wg)

	srv := &http.Server{
		Addr:         app.Config.HTTP.Address,
		Handler:      app.Router(),
		ReadTimeout:  app.Config.HTTP.ReadTimeout,
		WriteTimeout: app.Config.HTTP.WriteTimeout,
	}
	servers := []*http.Server{srv}

	if addr := app.Config.Observability.MetricsAddress; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", app.metricsHandler())
		servers = append(servers, &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second})
	}

	errCh := make(chan error, len(servers))
	for _, s := range servers {
		go func(s *http.Server) {
			app.Logger.InfoContext(ctx, "HTTP server listening", slog.String("address", s.Addr))
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server %s: %w", s.Addr, err)
			}
		}(s)
	}

	var runErr error
	select {
	case <-ctx.Done():
		app.Logger.Info("Shutdown signal received")
	case runErr = <-errCh:
		app.Logger.Error("HTTP server failed", "error", runErr)
	}

	app.shutdown(servers, &wg)
	return runErr
}

func (app *App) shutdown(servers []*http.Server, wg *sync.WaitGroup) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, s := range servers {
		if err := s.Shutdown(ctx); err != nil {
			app.Logger.Error("HTTP server shutdown failed", slog.String("address", s.Addr), "error", err)
		}
	}

	if err := app.AttemptModule.Close(ctx); err != nil {
		app.Logger.Error("Attempt module shutdown failed", "error", err)
	}
	wg.Wait()

	if err := app.Close(); err != nil {
		app.Logger.Error("Resource cleanup failed", "error", err)
	}
	app.Logger.Info("Application shut down gracefully")
}
