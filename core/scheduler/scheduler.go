package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/FilipeDoria/genetic-load-manager/core/events"
	"github.com/FilipeDoria/genetic-load-manager/core/forecast"
	"github.com/FilipeDoria/genetic-load-manager/core/genetic"
	"github.com/FilipeDoria/genetic-load-manager/core/logger"
	coremetrics "github.com/FilipeDoria/genetic-load-manager/core/metrics"
	"github.com/FilipeDoria/genetic-load-manager/core/model"
	"github.com/FilipeDoria/genetic-load-manager/core/planstore"
	"github.com/FilipeDoria/genetic-load-manager/core/runlog"
	"github.com/FilipeDoria/genetic-load-manager/internal/eventbus"
)

// Optimizer produces a dispatch plan from a forecast snapshot.
type Optimizer interface {
	Run(ctx context.Context, snap model.ForecastSnapshot) (model.RunResult, error)
}

// Publisher delivers published plans to downstream consumers.
type Publisher interface {
	PublishPlan(res model.RunResult) error
}

// Scheduler drives periodic optimization runs and owns the published plan.
type Scheduler struct {
	cfg      Config
	provider forecast.SnapshotProvider
	opt      Optimizer
	store    planstore.Store
	pub      Publisher
	runs     runlog.Store
	sink     coremetrics.MetricsSink
	bus      eventbus.EventBus
	tuner    genetic.Tuner
	log      logger.Logger
	now      func() time.Time

	running atomic.Bool

	mu      sync.Mutex
	history []model.RunResult
}

// NewScheduler creates a scheduler. provider, opt and store are required.
// pub, runs, sink, bus and tuner may be nil to disable the corresponding
// output. A nil log disables logging.
func NewScheduler(cfg Config, provider forecast.SnapshotProvider, opt Optimizer, store planstore.Store, pub Publisher, runs runlog.Store, sink coremetrics.MetricsSink, bus eventbus.EventBus, log logger.Logger, tuner genetic.Tuner) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if provider == nil || opt == nil || store == nil {
		return nil, fmt.Errorf("scheduler: provider, optimizer and store are required")
	}
	if log == nil {
		log = noplog{}
	}
	return &Scheduler{
		cfg:      cfg,
		provider: provider,
		opt:      opt,
		store:    store,
		pub:      pub,
		runs:     runs,
		sink:     sink,
		bus:      bus,
		tuner:    tuner,
		log:      log,
		now:      time.Now,
	}, nil
}

// Run executes an immediate first tick and then one tick per interval
// until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Infof("scheduler started, interval %s", s.cfg.Interval())
	s.Tick(ctx)
	ticker := time.NewTicker(s.cfg.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Infof("scheduler stopped: %v", ctx.Err())
			return nil
		case fired := <-ticker.C:
			if late := s.now().Sub(fired); late > s.cfg.Interval() {
				s.log.Debugf("tick delayed by %s", late.Round(time.Millisecond))
			}
			s.Tick(ctx)
		}
	}
}

// Tick runs one optimization cycle. Concurrent calls are collapsed: when a
// run is already in flight the tick is skipped and the previous plan kept.
// A panicking cycle is contained and reported as a skipped tick.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.skip("run_in_progress", nil)
		return
	}
	defer s.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			s.skip("internal_error", fmt.Errorf("tick panic: %v", r))
		}
	}()
	s.tick(ctx)
}

func (s *Scheduler) tick(ctx context.Context) {
	snap, err := s.provider.Snapshot(ctx)
	if err != nil {
		s.skip("provider_error", err)
		return
	}
	if err := forecast.CheckFresh(snap, s.now(), s.cfg.StaleAfter()); err != nil {
		s.skip("stale_snapshot", err)
		return
	}
	res, err := s.opt.Run(ctx, snap)
	if err != nil {
		if ctx.Err() != nil {
			s.log.Infof("optimization aborted: %v", err)
			return
		}
		if errors.Is(err, model.ErrInvalidSnapshot) {
			s.skip("invalid_snapshot", err)
		} else {
			s.skip("optimizer_error", err)
		}
		return
	}
	if !res.Feasible && s.cfg.SkipInfeasible {
		s.appendRunlog(ctx, snap, res)
		s.skip("infeasible", nil)
		return
	}
	s.publish(ctx, snap, res)
}

func (s *Scheduler) publish(ctx context.Context, snap model.ForecastSnapshot, res model.RunResult) {
	s.store.Set(res)
	if s.pub != nil {
		if err := s.pub.PublishPlan(res); err != nil {
			s.log.Errorf("plan publish failed: %v", err)
		} else if s.bus != nil {
			s.bus.Publish(events.PublishEvent{RunID: res.ID, Topic: publisherTopic(s.pub)})
		}
	}
	s.appendRunlog(ctx, snap, res)
	if s.sink != nil {
		if err := s.sink.RecordRun(coremetrics.RunEvent{Result: res, Component: "scheduler", Time: s.now()}); err != nil {
			s.log.Warnf("metrics sink: %v", err)
		}
		if rec, ok := s.sink.(coremetrics.SnapshotRecorder); ok {
			_ = rec.RecordSnapshot(coremetrics.SnapshotEvent{Snapshot: snap, Component: "scheduler", Time: s.now()})
		}
	}
	if s.bus != nil {
		s.bus.Publish(events.RunEvent{Result: res})
	}
	s.tune(res)
	s.log.Infow("plan published", map[string]any{
		"run_id":          res.ID,
		"feasible":        res.Feasible,
		"best_fitness":    res.BestFitness,
		"savings":         res.Savings(),
		"first_action_kw": res.Plan.FirstActionKW(),
	})
}

func (s *Scheduler) appendRunlog(ctx context.Context, snap model.ForecastSnapshot, res model.RunResult) {
	if s.runs == nil {
		return
	}
	rec := runlog.RunRecord{
		Timestamp:  s.now(),
		Result:     res,
		InitialSoC: snap.SoC,
		Horizon:    snap.Horizon(),
	}
	if err := s.runs.Append(ctx, rec); err != nil {
		s.log.Warnf("run log append failed: %v", err)
	}
}

func (s *Scheduler) tune(res model.RunResult) {
	s.mu.Lock()
	s.history = append(s.history, res)
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
	hist := append([]model.RunResult(nil), s.history...)
	s.mu.Unlock()
	if s.tuner != nil {
		s.tuner.Tune(hist)
	}
}

func (s *Scheduler) skip(reason string, err error) {
	if err != nil {
		s.log.Warnf("tick skipped (%s): %v", reason, err)
	} else {
		s.log.Warnf("tick skipped (%s)", reason)
	}
	if s.sink != nil {
		if rec, ok := s.sink.(coremetrics.TickSkipRecorder); ok {
			_ = rec.RecordTickSkip(coremetrics.TickSkipEvent{Reason: reason, Component: "scheduler", Time: s.now()})
		}
	}
	if s.bus != nil {
		s.bus.Publish(events.SkipEvent{Reason: reason, Err: err})
	}
}

func publisherTopic(p Publisher) string {
	if t, ok := p.(interface{ Topic() string }); ok {
		return t.Topic()
	}
	return ""
}

type noplog struct{}

func (noplog) Debugf(string, ...any)         {}
func (noplog) Debugw(string, map[string]any) {}
func (noplog) Infof(string, ...any)          {}
func (noplog) Infow(string, map[string]any)  {}
func (noplog) Warnf(string, ...any)          {}
func (noplog) Errorf(string, ...any)         {}
