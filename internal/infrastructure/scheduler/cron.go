package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

type entry struct {
	id   cron.EntryID
	spec string
	job  func()
}

// CronScheduler runs named jobs on cron specs ("@every 6h", "0 */6 * * *", "@daily").
type CronScheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]entry
}

var _ ports.Timer = (*CronScheduler)(nil)

// NewCronScheduler builds a stopped scheduler in loc. Panicking jobs are recovered and logged.
func NewCronScheduler(loc *time.Location, logger cron.Logger) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = cron.DiscardLogger
	}
	return &CronScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
		entries: map[string]entry{},
	}
}

// ParseSpec validates a cron spec.
func ParseSpec(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", domain.ErrInvalidSchedule, spec, err)
	}
	return schedule, nil
}

// Schedule registers job under name, replacing any previous registration.
func (c *CronScheduler) Schedule(name, spec string, job func()) error {
	schedule, err := ParseSpec(spec)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.cron.Schedule(schedule, cron.FuncJob(job))
	if old, ok := c.entries[name]; ok {
		c.cron.Remove(old.id)
	}
	c.entries[name] = entry{id: id, spec: spec, job: job}
	return nil
}

// Reschedule swaps the spec of an existing job. The new entry is added before
// the old one is removed, and nothing changes when spec is invalid.
func (c *CronScheduler) Reschedule(name, spec string) error {
	schedule, err := ParseSpec(spec)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	old, ok := c.entries[name]
	if !ok {
		return fmt.Errorf("job %s is not scheduled", name)
	}

	id := c.cron.Schedule(schedule, cron.FuncJob(old.job))
	c.cron.Remove(old.id)
	c.entries[name] = entry{id: id, spec: spec, job: old.job}
	return nil
}

// Next is the upcoming fire time of name, zero when stopped or unknown.
func (c *CronScheduler) Next(name string) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[name]; ok {
		return c.cron.Entry(e.id).Next
	}
	return time.Time{}
}

// Prev is the last fire time of name, zero if it never fired.
func (c *CronScheduler) Prev(name string) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[name]; ok {
		return c.cron.Entry(e.id).Prev
	}
	return time.Time{}
}

// Spec returns the current spec of name.
func (c *CronScheduler) Spec(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[name].spec
}

// Start begins firing jobs in a background goroutine.
func (c *CronScheduler) Start() {
	c.cron.Start()
}

// Stop halts the timers. The returned context is done once running jobs complete.
func (c *CronScheduler) Stop() context.Context {
	return c.cron.Stop()
}
