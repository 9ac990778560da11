// Package prober periodically checks backend readiness through the resilient
// client, so operators can tell "backend down" apart from "backend still
// starting" without waiting for a user-facing request to fail.
package prober

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/propmarket/apicore/internal/client"
	"github.com/propmarket/apicore/internal/utils/logger"
)

type Prober struct {
	client   *client.Client
	logger   *logger.Logger
	schedule string
	cron     *cron.Cron

	mu          sync.RWMutex
	healthy     bool
	lastChecked time.Time
}

// New creates a prober with a cron schedule such as "@every 2m".
func New(c *client.Client, logger *logger.Logger, schedule string) *Prober {
	return &Prober{
		client:   c,
		logger:   logger,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start runs one immediate probe, then probes on the schedule until Stop.
func (p *Prober) Start() error {
	if _, err := p.cron.AddFunc(p.schedule, p.probe); err != nil {
		return err
	}

	p.probe()
	p.cron.Start()
	return nil
}

func (p *Prober) Stop() {
	p.cron.Stop()
}

// Healthy reports the outcome of the most recent probe.
func (p *Prober) Healthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.healthy
}

// LastChecked returns when the most recent probe completed; zero before the
// first probe.
func (p *Prober) LastChecked() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.lastChecked
}

func (p *Prober) probe() {
	outcome := p.client.Get(context.Background(), "health", "")

	// Any 2xx means ready; no specific body schema is required.
	healthy := outcome.OK && !outcome.FromFallback

	p.mu.Lock()
	p.healthy = healthy
	p.lastChecked = time.Now()
	p.mu.Unlock()

	if healthy {
		p.logger.Debug("backend health probe succeeded", map[string]string{
			"status": strconv.Itoa(outcome.Status),
		})
		return
	}

	p.logger.Error("backend health probe failed", map[string]string{
		"status":        strconv.Itoa(outcome.Status),
		"from_fallback": strconv.FormatBool(outcome.FromFallback),
	})
}
