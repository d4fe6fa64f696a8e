package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics records calculation outcomes for the pricing engine.
type PricingMetrics struct {
	duration        *prometheus.HistogramVec
	calculations    *prometheus.CounterVec
	marginProtected prometheus.Counter
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_calculation_duration_seconds",
		Help:    "Duration of pricing waterfall calculations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"surface"})
	calculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_calculations_total",
		Help: "Pricing calculations by outcome.",
	}, []string{"outcome"})
	marginProtected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricing_margin_protected_total",
		Help: "Calculations where the margin floor raised the price.",
	})
	reg.MustRegister(duration, calculations, marginProtected)
	return &PricingMetrics{
		duration:        duration,
		calculations:    calculations,
		marginProtected: marginProtected,
	}
}

// ObserveDuration records the duration for the named surface (single/bulk).
func (p *PricingMetrics) ObserveDuration(surface string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(surface)).Observe(duration.Seconds())
}

// IncCalculation increments the calculation counter for the outcome.
func (p *PricingMetrics) IncCalculation(outcome string) {
	if p == nil || p.calculations == nil {
		return
	}
	p.calculations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncMarginProtected increments the margin protection counter.
func (p *PricingMetrics) IncMarginProtected() {
	if p == nil || p.marginProtected == nil {
		return
	}
	p.marginProtected.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
