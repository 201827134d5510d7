package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surfforecast_provider_calls_total",
			Help: "Total forecast provider API calls",
		},
		[]string{"provider", "status"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "surfforecast_provider_latency_seconds",
			Help:    "Forecast provider API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// 0 closed, 1 half-open, 2 open.
	ProviderCircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "surfforecast_provider_circuit_state",
			Help: "Circuit breaker state per forecast provider",
		},
		[]string{"provider"},
	)

	ForecastBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surfforecast_forecast_builds_total",
			Help: "Total aggregated forecasts built",
		},
		[]string{"status"},
	)

	ForecastBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "surfforecast_forecast_build_seconds",
			Help:    "Time to fetch and aggregate a forecast for all beaches",
			Buckets: prometheus.DefBuckets,
		},
	)
)
