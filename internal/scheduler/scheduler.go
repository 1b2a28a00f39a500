// Package scheduler runs the pipeline on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one unit of scheduled work
type Job func(ctx context.Context) error

// jobTimeout bounds one run, scheduled or immediate
const jobTimeout = 30 * time.Minute

// Scheduler fires named jobs in a fixed timezone
type Scheduler struct {
	cron     *cron.Cron
	jobs     map[string]cron.EntryID
	timezone *time.Location
}

// New creates a scheduler. An empty timezone means the local one.
func New(timezone string) (*Scheduler, error) {
	if timezone == "" {
		timezone = "Local"
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		jobs:     make(map[string]cron.EntryID),
		timezone: loc,
	}, nil
}

// AddRunJob schedules the pipeline under the name "run". spec is either a
// daily time such as "07:00" or a cron expression such as "0 */6 * * *".
func (s *Scheduler) AddRunJob(spec string, job Job) error {
	if t, err := time.Parse("15:04", spec); err == nil {
		spec = fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour())
	}
	return s.AddJob("run", spec, job)
}

// AddJob registers job under name with a cron expression
func (s *Scheduler) AddJob(name, spec string, job Job) error {
	id, err := s.cron.AddFunc(spec, func() {
		// a failed run is retried by the next tick
		_ = s.execute(context.Background(), name, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = id
	log.Printf("[scheduler] Added job %s (%s, %s)", name, spec, s.timezone)
	return nil
}

// RunNow runs job once outside the schedule, under the same timeout as a
// scheduled run. It returns when the job does.
func (s *Scheduler) RunNow(ctx context.Context, name string, job Job) error {
	log.Printf("[scheduler] Running %s now", name)
	return s.execute(ctx, name, job)
}

func (s *Scheduler) execute(parent context.Context, name string, job Job) error {
	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		log.Printf("[scheduler] Job %s failed after %v: %v", name, time.Since(start).Round(time.Millisecond), err)
		return err
	}
	log.Printf("[scheduler] Job %s completed in %v", name, time.Since(start).Round(time.Millisecond))
	return nil
}

// Start begins firing jobs in the background
func (s *Scheduler) Start() {
	log.Println("[scheduler] Starting scheduler")
	s.cron.Start()
}

// Stop halts the schedule. The returned context is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	log.Println("[scheduler] Stopping scheduler")
	return s.cron.Stop()
}

// JobInfo describes a registered job
type JobInfo struct {
	Name    string
	NextRun time.Time
	LastRun time.Time
}

// ListJobs reports the registered jobs and their next firing time. NextRun
// is zero until the scheduler has been started.
func (s *Scheduler) ListJobs() []JobInfo {
	infos := make([]JobInfo, 0, len(s.jobs))
	for name, id := range s.jobs {
		e := s.cron.Entry(id)
		if !e.Valid() {
			continue
		}
		infos = append(infos, JobInfo{Name: name, NextRun: e.Next, LastRun: e.Prev})
	}
	return infos
}
