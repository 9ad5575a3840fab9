// Package probe runs named dependency checks on demand and on a cron
// schedule. Failures are logged and recorded as HealthCheckError events.
package probe

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	StatusHealthy       = "healthy"
	StatusUnhealthy     = "unhealthy"
	StatusNotConfigured = "not_configured"
)

// EventRecorder records custom APM events.
type EventRecorder interface {
	RecordEvent(eventType string, params map[string]any)
}

// Check is one named dependency probe.
type Check struct {
	Name string
	// Required checks mark the whole report unhealthy when they fail.
	Required bool
	Probe    func(ctx context.Context) error
}

// Result is the outcome of a single check.
type Result struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// Report aggregates one run.
type Report struct {
	Healthy   bool              `json:"healthy"`
	CheckedAt time.Time         `json:"checkedAt"`
	Results   map[string]Result `json:"results"`
}

// Status returns the status of name, or not_configured when no check by
// that name was registered.
func (r Report) Status(name string) string {
	if res, ok := r.Results[name]; ok {
		return res.Status
	}
	return StatusNotConfigured
}

// Runner owns the registered checks and the background schedule.
type Runner struct {
	timeout time.Duration
	logger  *zerolog.Logger
	events  EventRecorder

	mu     sync.RWMutex
	checks map[string]Check
	last   Report

	cron *cron.Cron
}

// NewRunner creates a Runner whose checks are each bounded by timeout.
func NewRunner(timeout time.Duration, logger *zerolog.Logger, events EventRecorder) *Runner {
	return &Runner{
		timeout: timeout,
		logger:  logger,
		events:  events,
		checks:  make(map[string]Check),
	}
}

// Register adds or replaces a check.
func (r *Runner) Register(c Check) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[c.Name] = c
}

// Names lists the registered checks in sorted order.
func (r *Runner) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named checks concurrently, or every check when names is
// empty. Unknown names are ignored.
func (r *Runner) Run(ctx context.Context, names ...string) Report {
	checks := r.selected(names)

	report := Report{
		Healthy:   true,
		CheckedAt: time.Now().UTC(),
		Results:   make(map[string]Result, len(checks)),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, c := range checks {
		wg.Add(1)
		go func(c Check) {
			defer wg.Done()
			res := r.runOne(ctx, c)

			mu.Lock()
			defer mu.Unlock()
			report.Results[c.Name] = res
			if res.Status != StatusHealthy && c.Required {
				report.Healthy = false
			}
		}(c)
	}
	wg.Wait()

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()

	return report
}

func (r *Runner) selected(names []string) []Check {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(names) == 0 {
		out := make([]Check, 0, len(r.checks))
		for _, c := range r.checks {
			out = append(out, c)
		}
		return out
	}

	out := make([]Check, 0, len(names))
	for _, name := range names {
		if c, ok := r.checks[name]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (r *Runner) runOne(ctx context.Context, c Check) Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := c.Probe(ctx)
	elapsed := time.Since(start)

	if err != nil {
		r.logger.Error().
			Err(err).
			Str("check", c.Name).
			Dur("response_time", elapsed).
			Msgf("%s health check failed", c.Name)

		if r.events != nil {
			r.events.RecordEvent("HealthCheckError", map[string]any{
				"check_type":       c.Name,
				"operation":        "health_check",
				"error_type":       c.Name + "_unhealthy",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
		}

		return Result{Status: StatusUnhealthy, ResponseTime: elapsed.String(), Error: err.Error()}
	}

	r.logger.Debug().Str("check", c.Name).Dur("response_time", elapsed).Msgf("%s health check passed", c.Name)
	return Result{Status: StatusHealthy, ResponseTime: elapsed.String()}
}

// Last returns the most recent report, scheduled or on demand.
func (r *Runner) Last() Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Start schedules the named checks every interval.
func (r *Runner) Start(interval time.Duration, names ...string) error {
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		report := r.Run(context.Background(), names...)
		if !report.Healthy {
			r.logger.Warn().Msg("scheduled health check failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule health checks: %w", err)
	}

	r.cron = c
	c.Start()
	r.logger.Info().Dur("interval", interval).Strs("checks", names).Msg("health probes scheduled")
	return nil
}

// Stop halts the schedule and waits for a running probe to finish.
func (r *Runner) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}
