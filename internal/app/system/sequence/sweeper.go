// internal/app/system/sequence/sweeper.go
package sequence

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweepable is per-client state that can forget idle clients.
type Sweepable interface {
	Sweep() int
}

// Sweeper periodically calls Sweep on its targets so that state for
// browsers that went away does not accumulate.
type Sweeper struct {
	targets  []Sweepable
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSweeper creates a sweeper running every interval over targets.
func NewSweeper(logger *zap.Logger, interval time.Duration, targets ...Sweepable) *Sweeper {
	return &Sweeper{
		targets:  targets,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *Sweeper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("client state sweeper started",
		zap.Duration("interval", w.interval),
		zap.Int("targets", len(w.targets)))
}

// Stop signals the loop to exit and waits for it. Safe to call twice.
func (w *Sweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("client state sweeper stopped")
	})
}

func (w *Sweeper) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweepOnce()
		}
	}
}

func (w *Sweeper) sweepOnce() {
	total := 0
	for _, t := range w.targets {
		total += t.Sweep()
	}
	if total > 0 {
		w.log.Debug("forgot idle clients", zap.Int("count", total))
	}
}
