// Package scheduler fires the recurring pipeline jobs on Rome local time.
// Jobs are weekly cron-style entries with a misfire grace window; missed
// occurrences within the grace are coalesced into a single firing.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// checkInterval is how often the loop looks for due jobs.
const defaultCheckInterval = 30 * time.Second

// Job is one weekly scheduled entry.
type Job struct {
	ID           string
	Weekday      time.Weekday
	Hour         int
	Minute       int
	MisfireGrace time.Duration
	Run          func(ctx context.Context)

	lastFired time.Time // latest occurrence already handled
}

// JobStatus is the externally visible state of a job.
type JobStatus struct {
	ID      string     `json:"id"`
	NextRun *time.Time `json:"next_run"`
	Trigger string     `json:"trigger"`
}

// Status reports whether the scheduler runs and what it will fire next.
type Status struct {
	Running bool        `json:"running"`
	Jobs    []JobStatus `json:"jobs"`
}

// Scheduler runs registered jobs in a background loop.
type Scheduler struct {
	mu       sync.Mutex
	loc      *time.Location
	jobs     map[string]*Job
	order    []string
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
	now      func() time.Time
	interval time.Duration
}

// New creates a scheduler pinned to the given timezone.
func New(timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", timezone, err)
	}
	return &Scheduler{
		loc:      loc,
		jobs:     make(map[string]*Job),
		now:      time.Now,
		interval: defaultCheckInterval,
	}, nil
}

// Register adds a job, replacing any existing job with the same id.
func (s *Scheduler) Register(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; !exists {
		s.order = append(s.order, job.ID)
	}
	s.jobs[job.ID] = job
	log.Printf("[Scheduler] job registered: %s (%s %02d:%02d %s)",
		job.ID, job.Weekday, job.Hour, job.Minute, s.loc)
}

// Start launches the background loop. Idempotent.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		log.Printf("[Scheduler] already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.loop(s.stopCh)
	log.Printf("[Scheduler] started with %d jobs", len(s.jobs))
}

// Stop halts the loop. Idempotent; running job functions finish on their own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	log.Printf("[Scheduler] stopped")
}

func (s *Scheduler) loop(stopCh chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.fireDue()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.fireDue()
		}
	}
}

func (s *Scheduler) fireDue() {
	s.mu.Lock()
	now := s.now().In(s.loc)
	var due []*Job
	for _, id := range s.order {
		job := s.jobs[id]
		occ, ok := s.dueOccurrence(job, now)
		if !ok {
			continue
		}
		job.lastFired = occ
		due = append(due, job)
	}
	s.mu.Unlock()

	for _, job := range due {
		log.Printf("[Scheduler] firing job %s", job.ID)
		s.wg.Add(1)
		go func(j *Job) {
			defer s.wg.Done()
			j.Run(context.Background())
		}(job)
	}
}

// dueOccurrence returns the latest scheduled occurrence at or before now if
// the job should fire for it: inside the misfire grace and not yet handled.
// Missed occurrences coalesce because only the latest one is considered.
func (s *Scheduler) dueOccurrence(job *Job, now time.Time) (time.Time, bool) {
	occ := lastOccurrence(job, now, s.loc)
	if !occ.After(job.lastFired) {
		return time.Time{}, false
	}
	if now.Sub(occ) > job.MisfireGrace {
		return time.Time{}, false
	}
	return occ, true
}

// lastOccurrence finds the latest weekly occurrence of the job at or before now.
func lastOccurrence(job *Job, now time.Time, loc *time.Location) time.Time {
	now = now.In(loc)
	daysBack := int(now.Weekday() - job.Weekday)
	if daysBack < 0 {
		daysBack += 7
	}
	day := now.AddDate(0, 0, -daysBack)
	occ := time.Date(day.Year(), day.Month(), day.Day(), job.Hour, job.Minute, 0, 0, loc)
	if occ.After(now) {
		occ = occ.AddDate(0, 0, -7)
	}
	return occ
}

// nextOccurrence finds the next weekly occurrence of the job strictly after now.
func nextOccurrence(job *Job, now time.Time, loc *time.Location) time.Time {
	return lastOccurrence(job, now, loc).AddDate(0, 0, 7)
}

// Status reports the scheduler state. Next-run times are only exposed while
// running.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Running: s.running, Jobs: []JobStatus{}}
	if !s.running {
		return st
	}
	now := s.now().In(s.loc)
	for _, id := range s.order {
		job := s.jobs[id]
		next := nextOccurrence(job, now, s.loc)
		st.Jobs = append(st.Jobs, JobStatus{
			ID:      job.ID,
			NextRun: &next,
			Trigger: fmt.Sprintf("cron[%s %02d:%02d %s]", weekdayShort(job.Weekday), job.Hour, job.Minute, s.loc),
		})
	}
	return st
}

func weekdayShort(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "mon"
	case time.Tuesday:
		return "tue"
	case time.Wednesday:
		return "wed"
	case time.Thursday:
		return "thu"
	case time.Friday:
		return "fri"
	case time.Saturday:
		return "sat"
	default:
		return "sun"
	}
}
