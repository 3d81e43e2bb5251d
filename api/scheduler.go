/*
scheduler.go - Month-close score snapshot scheduler

PURPOSE:
  Periodically stores the just-closed month's performance score for every
  staff member who does not have one yet, so monthly scores exist even for
  people who never opened the performance page.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Only the previous month is considered; it is closed once today is in a
    new month
  - Goes through Performance.Get, which is insert-if-absent: an existing
    row is never recomputed

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewMonthCloseScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - performance/service.go: Service.Get
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/workday-engine/generic"
)

// SettleResult counts what one pass did.
type SettleResult struct {
	Month   generic.MonthRef
	Created int
	Skipped int
	Failed  int
}

// MonthCloseScheduler snapshots closed-month scores.
type MonthCloseScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewMonthCloseScheduler creates a new scheduler.
func NewMonthCloseScheduler(handler *Handler) *MonthCloseScheduler {
	return &MonthCloseScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *MonthCloseScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.Handler.Logger.Named("scheduler")
	if !s.Enabled {
		logger.Info("disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	logger.Info("started", zap.Duration("interval", s.CheckInterval))
}

// Stop stops the scheduler.
func (s *MonthCloseScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Handler.Logger.Named("scheduler").Info("stopped")
	}
}

func (s *MonthCloseScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.RunOnce(context.Background())

	for {
		select {
		case <-s.ticker.C:
			s.RunOnce(context.Background())
		case <-s.stop:
			return
		}
	}
}

// RunOnce settles the month before the current one.
func (s *MonthCloseScheduler) RunOnce(ctx context.Context) SettleResult {
	h := s.Handler
	logger := h.Logger.Named("scheduler")
	now := h.Clock.Now()
	closed := generic.MonthOf(generic.DateOf(now, h.Clock.Location())).Previous()
	result := SettleResult{Month: closed}

	staff, err := h.Store.ListStaff(ctx)
	if err != nil {
		logger.Error("list staff", zap.Error(err))
		return result
	}

	for _, st := range staff {
		existing, err := h.Store.GetScore(ctx, st.ID, closed)
		if err != nil {
			logger.Error("load score", zap.String("user_id", st.ID.String()), zap.Error(err))
			result.Failed++
			continue
		}
		if existing != nil {
			result.Skipped++
			continue
		}
		res, err := h.Performance.Get(ctx, st.ID, closed, now)
		if err != nil {
			logger.Error("settle score", zap.String("user_id", st.ID.String()), zap.Error(err))
			result.Failed++
			continue
		}
		if res.Cached {
			result.Skipped++
			continue
		}
		result.Created++
	}

	if result.Created > 0 || result.Failed > 0 {
		logger.Info("month settled",
			zap.String("month", closed.String()),
			zap.Int("created", result.Created),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed))
	}
	return result
}
