package holds

import (
	"context"
	"time"

	"boxoffice/pkg/logger"
)

// Sweeper runs the periodic expiry sweep. Lazy expiry on reads already keeps
// lapsed holds from being confirmed; the sweep exists so their seats return
// to the pool promptly even when nobody reads them.
type Sweeper struct {
	service  Service
	interval time.Duration
	done     chan struct{}
}

func NewSweeper(service Service, interval time.Duration) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (sw *Sweeper) Start(ctx context.Context) {
	go sw.run(ctx)
	logger.GetDefault().Info("hold expiry sweeper started", "interval", sw.interval.String())
}

// Stop shuts the sweep loop down.
func (sw *Sweeper) Stop() {
	close(sw.done)
	logger.GetDefault().Info("hold expiry sweeper stopped")
}

func (sw *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.sweep(ctx)
		case <-sw.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (sw *Sweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, sw.interval)
	defer cancel()

	expired, err := sw.service.ExpireLapsed(sweepCtx)
	if err != nil {
		logger.GetDefault().Error("hold expiry sweep failed", "error", err)
		return
	}
	if expired > 0 {
		logger.GetDefault().Info("hold expiry sweep released lapsed holds", "expired", expired)
	}
}
