package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gamebot-panel/internal/infra/metrics"
	"gamebot-panel/internal/usecase"
)

// ExpiryWorker periodically expires overdue grants via the licensing use case.
// It runs for the lifetime of the process; per-tick failures are logged and
// retried on the next tick rather than terminating the loop.
type ExpiryWorker struct {
	interval time.Duration
	licUC    usecase.LicensingUseCase
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, licUC usecase.LicensingUseCase, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	l := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		licUC:    licUC,
		log:      &l,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.licUC.SweepExpired(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep error")
				continue
			}
			if n > 0 {
				metrics.IncActivationsExpired(n)
				w.log.Info().Int("count", n).Msg("expired grants swept")
			}
		}
	}
}
