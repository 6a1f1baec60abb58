package earning

import (
	"context"
	"math"
	"math/rand"
	"time"

	"dreamseller-controlplane/pkg/featureflags"
	"dreamseller-controlplane/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// simulatorFlag gates the demo earnings generator per environment.
const simulatorFlag = "earnings-simulator"

// BusinessRef is the slice of a business the simulator needs.
type BusinessRef struct {
	ID     string
	Name   string
	UserID string
}

// BusinessSource lists businesses eligible for simulated income.
type BusinessSource interface {
	ListActive(ctx context.Context) ([]BusinessRef, error)
}

// Simulator ports the demo income generator: one 5–50 dollar earning per
// active business per run, written through the same validated pipeline as
// real income.
type Simulator struct {
	service *Service
	source  BusinessSource
	flags   featureflags.FeatureFlag
}

type SimulatorParams struct {
	fx.In
	Service *Service
	Source  BusinessSource
	Flags   featureflags.FeatureFlag
}

func NewSimulator(p SimulatorParams) *Simulator {
	return &Simulator{
		service: p.Service,
		source:  p.Source,
		flags:   p.Flags,
	}
}

func (s *Simulator) HandleGenerate(ctx context.Context, t *asynq.Task) error {
	if !s.flags.IsEnabled(ctx, simulatorFlag, true) {
		zap.L().Debug("earnings simulator disabled by feature flag")
		return nil
	}

	businesses, err := s.source.ListActive(ctx)
	if err != nil {
		return err
	}

	var generated int
	for _, b := range businesses {
		amount := math.Round((5+rand.Float64()*45)*100) / 100

		if _, err := s.service.Record(ctx, RecordParams{
			UserID:       b.UserID,
			BusinessID:   b.ID,
			BusinessName: b.Name,
			Amount:       amount,
			Source:       "simulator",
		}); err != nil {
			zap.L().Warn("simulator failed to record earning",
				zap.String("business_id", b.ID),
				zap.Error(err),
			)
			continue
		}
		generated++
	}

	zap.L().Info("earnings simulator run finished",
		zap.Int("businesses", len(businesses)),
		zap.Int("generated", generated),
	)

	return nil
}

// RegisterSimulator mounts the generate task on the worker mux.
func RegisterSimulator(mux *asynq.ServeMux, s *Simulator) {
	mux.HandleFunc(taskname.EarningGenerate, s.HandleGenerate)
}

// SimulatorLoop enqueues a generate task on the configured cadence.
type SimulatorLoop struct {
	client   *asynq.Client
	interval time.Duration
}

func NewSimulatorLoop(client *asynq.Client, interval time.Duration) *SimulatorLoop {
	return &SimulatorLoop{client: client, interval: interval}
}

func (l *SimulatorLoop) Run(ctx context.Context) {
	zap.L().Info("[Scheduler] started earnings simulator loop", zap.Duration("interval", l.interval))

	for {
		select {
		case <-time.After(l.interval):
			if _, err := l.client.EnqueueContext(ctx,
				asynq.NewTask(taskname.EarningGenerate, nil),
				asynq.Queue("low"),
			); err != nil {
				zap.L().Error("[Scheduler] failed to enqueue earning generation", zap.Error(err))
			}
		case <-ctx.Done():
			zap.L().Warn("[Scheduler] earnings simulator loop stopped")
			return
		}
	}
}
