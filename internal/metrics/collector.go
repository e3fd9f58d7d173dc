// internal/metrics/collector.go
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goldenbao/jinvault/internal/events"
)

const namespace = "jinvault"

// Collector ведёт метрики распределений и ручных операций.
// Наполняется событиями шины; у каждого Collector собственный реестр.
type Collector struct {
	registry *prometheus.Registry

	cycles          *prometheus.CounterVec
	feesClaimed     prometheus.Counter
	goldPurchased   prometheus.Counter
	tokenBuyback    prometheus.Counter
	transactions    prometheus.Counter
	rewardedHolders *prometheus.CounterVec
	lastSuccess     prometheus.Gauge
	manualClaims    *prometheus.CounterVec
	swaps           *prometheus.CounterVec
	configUpdates   prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "distribution",
			Name:      "cycles_total",
			Help:      "Distribution cycles by outcome",
		}, []string{"trigger", "status"}),
		feesClaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "distribution",
			Name:      "fees_claimed_sol_total",
			Help:      "Creator fees claimed by successful cycles, SOL",
		}),
		goldPurchased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "distribution",
			Name:      "gold_purchased_total",
			Help:      "Reward asset bought for holders",
		}),
		tokenBuyback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "distribution",
			Name:      "token_buyback_total",
			Help:      "Protocol tokens bought back",
		}),
		transactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "distribution",
			Name:      "transactions_total",
			Help:      "Confirmed transactions sent by distribution cycles",
		}),
		rewardedHolders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "distribution",
			Name:      "holders_total",
			Help:      "Holders classified per tier across cycles",
		}, []string{"tier"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "distribution",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful cycle",
		}),
		manualClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "fee_claims_total",
			Help:      "Manual fee claims by source",
		}, []string{"source"}),
		swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "swaps_total",
			Help:      "Manual swaps by kind and route",
		}, []string{"kind", "route"}),
		configUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "config_updates_total",
			Help:      "Protocol config updates",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.cycles, c.feesClaimed, c.goldPurchased, c.tokenBuyback, c.transactions,
		c.rewardedHolders, c.lastSuccess, c.manualClaims, c.swaps, c.configUpdates,
	)
	return c
}

// Attach подписывает Collector на все события шины.
func (c *Collector) Attach(bus *events.Bus) events.Subscription {
	return bus.SubscribeAll(c)
}

// Handle реализует events.Handler.
func (c *Collector) Handle(_ context.Context, event events.Event) error {
	switch e := event.(type) {
	case *events.DistributionCompletedEvent:
		c.recordDistribution(e)
	case *events.FeesClaimedEvent:
		c.manualClaims.WithLabelValues(e.Source).Inc()
	case *events.SwapExecutedEvent:
		c.swaps.WithLabelValues(e.Kind, e.Route).Inc()
	case *events.ConfigUpdatedEvent:
		c.configUpdates.Inc()
	}
	return nil
}

func (c *Collector) recordDistribution(e *events.DistributionCompletedEvent) {
	r := e.Result
	c.transactions.Add(float64(len(r.TxSignatures)))
	c.rewardedHolders.WithLabelValues("major").Add(float64(r.MajorHolders))
	c.rewardedHolders.WithLabelValues("medium").Add(float64(r.MediumHolders))

	if !r.Success {
		c.cycles.WithLabelValues(e.Trigger, "failed").Inc()
		return
	}
	c.cycles.WithLabelValues(e.Trigger, "success").Inc()
	c.feesClaimed.Add(r.TotalFeesClaimed.InexactFloat64())
	c.goldPurchased.Add(r.GoldPurchased.InexactFloat64())
	c.tokenBuyback.Add(r.TokenBuyback.InexactFloat64())
	c.lastSuccess.Set(float64(e.Timestamp().Unix()))
}

// TrackGauge регистрирует датчик, значение которого читается при сборе.
func (c *Collector) TrackGauge(subsystem, name, help string, fn func() float64) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, fn))
}

// Handler отдаёт метрики в формате Prometheus.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
