package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/propmarket/apicore/internal/breaker"
	"github.com/propmarket/apicore/internal/client"
	"github.com/propmarket/apicore/internal/environment"
	"github.com/propmarket/apicore/internal/monitoring"
	"github.com/propmarket/apicore/internal/prober"
	"github.com/propmarket/apicore/internal/utils/config"
	"github.com/propmarket/apicore/internal/utils/logger"
)

const metricsAddr = ":9091"

func main() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	metrics := monitoring.NewMetrics()
	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	brk := breaker.New(appConfig.API.BreakerThreshold, appConfig.API.BreakerCooldown, logger)

	// Running from a CLI: there is no browsing context to inspect.
	apiClient := client.New(appConfig, environment.HostContext{}, brk, logger, metrics)

	logger.Info("starting readiness prober", map[string]string{
		"environment": string(apiClient.Environment()),
		"base_url":    apiClient.BaseURL(),
		"schedule":    appConfig.API.ProbeSchedule,
	})

	p := prober.New(apiClient, logger, appConfig.API.ProbeSchedule)
	if err := p.Start(); err != nil {
		logger.Error("failed to start prober", map[string]string{"error": err.Error()})
		os.Exit(1)
	}
	defer p.Stop()

	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(metricsAddr, nil); err != nil {
		logger.Fatal("metrics server stopped", map[string]string{"error": err.Error()})
	}
}
