/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the workday engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load config (file, .env, WORKDAY_* env)
  2. Build the zap logger
  3. Initialize SQLite store in the configured zone
  4. Optionally put the Redis score cache in front of it
  5. Load the birthday roster
  6. Create API handler, router and month-close scheduler
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Config file path (default: ./config/config.yaml or ./config.yaml)
  -port    HTTP server port, overrides server.port
  -db      SQLite database path, overrides db.path
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close Redis and database connections

EXAMPLES:
  # Run with file database
  ./server -db="./data/workday.db"

  # Run in Asia/Jakarta with an IP allow-list
  WORKDAY_ENGINE_TIMEZONE=Asia/Jakarta \
  WORKDAY_ATTENDANCE_OFFICE_IP_WHITELIST=10.0.0.5,10.0.0.6 ./server

SEE ALSO:
  - config/config.go: Settings and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/workday-engine/api"
	"github.com/warp/workday-engine/config"
	"github.com/warp/workday-engine/generic"
	"github.com/warp/workday-engine/logger"
	"github.com/warp/workday-engine/performance"
	"github.com/warp/workday-engine/roster"
	"github.com/warp/workday-engine/store/redis"
	"github.com/warp/workday-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "Config file path")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	loc, err := cfg.Engine.Location()
	if err != nil {
		return err
	}

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path, sqlite.WithLocation(loc))
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	var scores performance.ScoreStore = store
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(cfg.Redis, log)
		if err != nil {
			log.Warn("redis unavailable, serving scores from sqlite only", zap.Error(err))
		} else {
			defer rdb.Close()
			scores = redis.NewScoreCache(rdb, store, cfg.Redis.TTL, log.Named("redis"))
		}
	}

	people, err := loadRoster(cfg.Roster)
	if err != nil {
		return err
	}
	log.Info("roster loaded", zap.Int("people", len(people)))

	handler := api.NewHandler(store, api.Options{
		Clock:      generic.SystemClock{Zone: loc},
		AllowedIPs: cfg.Attendance.OfficeIPWhitelist,
		Roster:     people,
		Scores:     scores,
		Logger:     log,
	})

	scheduler := api.NewMonthCloseScheduler(handler)
	scheduler.Enabled = cfg.Scheduler.Enabled
	scheduler.CheckInterval = cfg.Scheduler.Interval
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("timezone", loc.String()),
			zap.String("db", cfg.Database.Path))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// loadRoster reads the roster spreadsheet, then appends inline config entries.
func loadRoster(cfg config.RosterConfig) ([]roster.Person, error) {
	var people []roster.Person
	if cfg.Path != "" {
		loaded, err := roster.LoadFile(cfg.Path, cfg.Sheet)
		if err != nil {
			return nil, fmt.Errorf("load roster: %w", err)
		}
		people = append(people, loaded...)
	}
	for _, p := range cfg.People {
		dob, ok := roster.ParseBirthday(p.DateOfBirth)
		if !ok {
			return nil, fmt.Errorf("roster: %s: unparseable date_of_birth %q", p.Name, p.DateOfBirth)
		}
		people = append(people, roster.Person{Name: p.Name, DateOfBirth: dob})
	}
	return people, nil
}
