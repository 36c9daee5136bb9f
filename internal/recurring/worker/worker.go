package worker

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/wrenchworks/torqbill/internal/clock"
	"github.com/wrenchworks/torqbill/internal/config"
	recurringdomain "github.com/wrenchworks/torqbill/internal/recurring/domain"
)

// Worker periodically sweeps due recurring profiles and generates bills.
// Multiple instances can run against the same database; the run table
// keeps each occurrence single-shot.
type Worker struct {
	svc      recurringdomain.Service
	log      *zap.Logger
	clock    clock.Clock
	interval time.Duration
	batch    int

	cancel context.CancelFunc
	done   chan struct{}
}

type Params struct {
	fx.In

	Svc    recurringdomain.Service
	Log    *zap.Logger
	Clock  clock.Clock
	Config config.Config
}

func New(p Params) *Worker {
	interval := p.Config.Recurring.PollInterval
	if interval <= 0 {
		interval = time.Minute
	}
	return &Worker{
		svc:      p.Svc,
		log:      p.Log.Named("recurring.worker"),
		clock:    p.Clock,
		interval: interval,
		batch:    p.Config.Recurring.BatchSize,
	}
}

// Start launches the sweep loop. An immediate sweep runs before the first
// tick so restarts do not wait a full interval.
func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)

		w.sweep(ctx)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.sweep(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight sweep to finish.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

func (w *Worker) sweep(ctx context.Context) {
	result, err := w.svc.GenerateDue(ctx, w.clock.Now(), w.batch)
	if err != nil {
		w.log.Error("recurring sweep failed", zap.Error(err))
		return
	}
	if result.Generated > 0 || result.Expired > 0 {
		w.log.Info("recurring bills generated",
			zap.Int("generated", result.Generated),
			zap.Int("expired", result.Expired),
		)
	}
}

var Module = fx.Module("recurring.worker",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, w *Worker, cfg config.Config) {
		if !cfg.Recurring.Enabled {
			return
		}
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				w.Start()
				return nil
			},
			OnStop: func(context.Context) error {
				w.Stop()
				return nil
			},
		})
	}),
)
