package generator

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coreevents "github.com/FilipeDoria/genetic-load-manager/core/events"
	"github.com/FilipeDoria/genetic-load-manager/infra/logger"
	"github.com/FilipeDoria/genetic-load-manager/internal/eventbus"
	"github.com/FilipeDoria/genetic-load-manager/pricing"
)

// Generator periodically emits synthetic tariff events, exercising the
// price overlay without a grid operator feed.
type Generator struct {
	cfg   pricing.GeneratorConfig
	store pricing.Intake
	bus   eventbus.EventBus
	log   logger.Logger
	rand  *rand.Rand
	seq   int
}

var (
	eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tariff_generator_events_total",
		Help: "Total tariff events emitted",
	}, []string{"kind"})
	lastEmit = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tariff_generator_last_emit_timestamp_seconds",
		Help: "Last emission time",
	})
	intervalHist = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tariff_generator_interval_seconds",
		Help:    "Interval between events",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(eventsTotal, lastEmit, intervalHist)
}

// New creates a new Generator.
func New(cfg pricing.GeneratorConfig, store pricing.Intake, bus eventbus.EventBus) *Generator {
	return &Generator{
		cfg:   cfg,
		store: store,
		bus:   bus,
		log:   logger.New("tariff-generator"),
		rand:  rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Start begins emitting events until context cancellation.
func (g *Generator) Start(ctx context.Context) {
	for {
		interval := g.randomInterval()
		intervalHist.Observe(interval.Seconds())
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		g.emit(g.Generate(time.Now()))
	}
}

// Generate produces a new tariff event starting at the given time. Peak
// events scale prices up, rebates scale them down.
func (g *Generator) Generate(now time.Time) pricing.TariffEvent {
	g.seq++
	kind := g.randomKind()
	var mult float64
	if kind == pricing.KindRebate {
		mult = g.randomFloat(g.cfg.MinMultiplier, 1)
	} else {
		mult = g.randomFloat(1, g.cfg.MaxMultiplier)
	}
	duration := g.randomDuration(g.cfg.MinDurationSeconds, g.cfg.MaxDurationSeconds)
	return pricing.TariffEvent{
		Kind:       kind,
		StartTime:  now,
		EndTime:    now.Add(duration),
		Multiplier: mult,
		Meta: map[string]string{
			"seq":    strconv.Itoa(g.seq),
			"source": "generator",
		},
	}
}

func (g *Generator) emit(ev pricing.TariffEvent) {
	g.log.Infof("tariff %s x%.2f until %s", ev.Kind, ev.Multiplier, ev.EndTime.Format(time.RFC3339))
	if g.store != nil {
		g.store.Add(ev)
	}
	if g.bus != nil {
		g.bus.Publish(coreevents.TariffEvent{
			Kind:       ev.Kind,
			Start:      ev.StartTime,
			End:        ev.EndTime,
			Multiplier: ev.Multiplier,
		})
	}
	eventsTotal.WithLabelValues(ev.Kind).Inc()
	lastEmit.Set(float64(time.Now().Unix()))
}

func (g *Generator) randomKind() string {
	if len(g.cfg.Kinds) == 0 {
		return pricing.KindPeak
	}
	return g.cfg.Kinds[g.rand.Intn(len(g.cfg.Kinds))]
}

func (g *Generator) randomFloat(min, max float64) float64 {
	if max <= min {
		return min
	}
	f := min + g.rand.Float64()*(max-min)
	j := 1 + (g.rand.Float64()*2-1)*g.cfg.JitterPct
	f *= j
	if f < min {
		f = min
	}
	if f > max {
		f = max
	}
	return f
}

func (g *Generator) randomDuration(min, max int) time.Duration {
	if max <= min {
		return time.Duration(min) * time.Second
	}
	sec := float64(min) + g.rand.Float64()*float64(max-min)
	j := 1 + (g.rand.Float64()*2-1)*g.cfg.JitterPct
	sec *= j
	if sec < float64(min) {
		sec = float64(min)
	}
	if sec > float64(max) {
		sec = float64(max)
	}
	return time.Duration(sec) * time.Second
}

func (g *Generator) randomInterval() time.Duration {
	return g.randomDuration(g.cfg.MinIntervalSeconds, g.cfg.MaxIntervalSeconds)
}
