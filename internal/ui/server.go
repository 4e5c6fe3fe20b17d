// Package ui provides the web surface for building and browsing charts.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/chartsmith/internal/dataset"
	"github.com/leapstack-labs/chartsmith/internal/store"
	"github.com/leapstack-labs/chartsmith/internal/ui/notifier"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
	"github.com/leapstack-labs/chartsmith/internal/ui/router"
)

// LoadFunc turns a file on disk into a Dataset. The server does not care
// whether the in-process loader or DuckDB is behind it.
type LoadFunc func(ctx context.Context, path string) (*dataset.Dataset, error)

// Server is the main UI server.
type Server struct {
	store        store.Store
	registry     *registry.Registry
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
	datasetsDir  string
	load         LoadFunc
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Store         store.Store
	Registry      *registry.Registry
	Port          int
	Watch         bool
	DatasetsDir   string
	SessionSecret string
	Load          LoadFunc
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		store:        cfg.Store,
		registry:     cfg.Registry,
		sessionStore: sessionStore,
		port:         cfg.Port,
		watch:        cfg.Watch,
		datasetsDir:  cfg.DatasetsDir,
		load:         cfg.Load,
		logger:       logger,
		notifier:     notifier.New(),
	}
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	deps := router.Deps{
		Store:        s.store,
		Registry:     s.registry,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		Load:         router.LoadFunc(s.load),
		Logger:       s.logger,
	}
	if err := router.SetupRoutes(r, deps); err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start file watcher if enabled
	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchFiles watches the datasets directory and reloads changed files into
// the registry.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.datasetsDir); err != nil {
		s.logger.Error("failed to watch datasets directory", "dir", s.datasetsDir, "error", err)
		// Don't fail - continue without watching
		<-ctx.Done()
		return nil
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !loadableFile(event.Name) {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.reloadFile(ctx, name)
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// reloadFile loads a changed file into the registry and pings SSE clients.
func (s *Server) reloadFile(ctx context.Context, path string) {
	s.logger.Debug("file changed, reloading", "file", path)

	ds, err := s.load(ctx, path)
	if err != nil {
		s.logger.Error("reload failed", "file", path, "error", err)
		return
	}
	s.registry.Put(filepath.Base(path), ds)
	s.notifier.Broadcast()
}

// LoadDir loads every loadable file in the datasets directory into the
// registry. Files that fail to parse are logged and skipped.
func (s *Server) LoadDir(ctx context.Context) error {
	matches, err := filepath.Glob(filepath.Join(s.datasetsDir, "*"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		if !loadableFile(path) {
			continue
		}
		ds, err := s.load(ctx, path)
		if err != nil {
			s.logger.Warn("skipping dataset", "file", path, "error", err)
			continue
		}
		s.registry.Put(filepath.Base(path), ds)
		s.logger.Info("loaded dataset", "file", path, "rows", ds.RowCount())
	}
	return nil
}

func loadableFile(path string) bool {
	switch filepath.Ext(path) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}
