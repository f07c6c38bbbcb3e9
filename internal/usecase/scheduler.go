package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"NewsVerifier/internal/logging"
	"NewsVerifier/internal/ports"
)

// SectorIngestor is the part of Pipeline the scheduler drives.
type SectorIngestor interface {
	IngestAll(ctx context.Context, sectors []string) (int, error)
}

// Scheduler triggers ingestion of the configured sectors on every tick of the
// driver. A tick that fires while the previous run is still going is dropped.
type Scheduler struct {
	driver   ports.Scheduler
	ingestor SectorIngestor
	sectors  []string
	logger   *slog.Logger
	running  atomic.Bool
	skipped  atomic.Int64
}

// NewScheduler binds ingestor to driver for sectors.
func NewScheduler(driver ports.Scheduler, ingestor SectorIngestor, sectors []string, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, ingestor: ingestor, sectors: sectors, logger: logging.OrDiscard(logger)}
}

// Start registers the ingestion job with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.ingestor == nil || len(s.sectors) == 0 {
		return nil
	}
	return s.driver.Start(ctx, func(trigger time.Time) { s.run(ctx, trigger) })
}

func (s *Scheduler) run(ctx context.Context, trigger time.Time) {
	if !s.running.CompareAndSwap(false, true) {
		dropped := s.skipped.Add(1)
		s.logger.Warn("previous ingestion still running, tick dropped", "trigger", trigger, "dropped_total", dropped)
		return
	}
	defer s.running.Store(false)

	started := time.Now()
	total, err := s.ingestor.IngestAll(ctx, s.sectors)
	if err != nil {
		s.logger.Warn("scheduled ingestion incomplete", "trigger", trigger, "stored", total, "error", err)
		return
	}
	s.logger.Info("scheduled ingestion done", "trigger", trigger, "stored", total, "took", time.Since(started))
}

// Stop tears down the driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
