// Package maintenance runs the periodic housekeeping jobs and keeps the
// outcome of the last run for the admin API.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"interndesk/internal/logging"
	"interndesk/internal/scheduler"
)

var ErrBusy = errors.New("maintenance run already in progress")

// Job is one housekeeping step. Timeout <= 0 means the run's own context only.
type Job struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

type Status struct {
	Running   bool     `json:"running"`
	Runs      int      `json:"runs"`
	LastRunAt string   `json:"lastRunAt,omitempty"`
	LastOkAt  string   `json:"lastOkAt,omitempty"`
	LastError string   `json:"lastError,omitempty"`
	Jobs      []string `json:"jobs"`
}

type Runner struct {
	jobs   []Job
	mu     sync.Mutex // held for the duration of a run
	status atomic.Value
	now    func() time.Time
}

func New(jobs ...Job) *Runner {
	r := &Runner{jobs: jobs, now: time.Now}
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name)
	}
	r.status.Store(Status{Jobs: names})
	return r
}

// Status is a snapshot of the last run. Safe to call while a run is in progress.
func (r *Runner) Status() Status {
	st := r.status.Load().(Status)
	st.Jobs = append([]string(nil), st.Jobs...)
	return st
}

func (r *Runner) update(fn func(*Status)) {
	st := r.Status()
	fn(&st)
	r.status.Store(st)
}

// RunOnce runs every job concurrently and waits for all of them.
// A failing job does not stop the others; their errors are joined.
func (r *Runner) RunOnce(ctx context.Context) error {
	if !r.mu.TryLock() {
		return ErrBusy
	}
	defer r.mu.Unlock()

	log := logging.With("maintenance")
	r.update(func(st *Status) {
		st.Running = true
		st.LastRunAt = r.now().UTC().Format(time.RFC3339)
	})

	errs := make([]error, len(r.jobs))
	var g errgroup.Group
	for i, j := range r.jobs {
		g.Go(func() error {
			jctx, cancel := ctx, context.CancelFunc(func() {})
			if j.Timeout > 0 {
				jctx, cancel = context.WithTimeout(ctx, j.Timeout)
			}
			defer cancel()

			if err := j.Run(jctx); err != nil {
				log.Warn().Err(err).Str("job", j.Name).Msg("job failed")
				errs[i] = fmt.Errorf("%s: %w", j.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	r.update(func(st *Status) {
		st.Running = false
		st.Runs++
		if err != nil {
			st.LastError = err.Error()
			return
		}
		st.LastError = ""
		st.LastOkAt = r.now().UTC().Format(time.RFC3339)
	})
	log.Debug().Int("jobs", len(r.jobs)).Bool("ok", err == nil).Msg("run finished")
	return err
}

// Start runs the jobs now and then every interval until ctx is done. It blocks.
func (r *Runner) Start(ctx context.Context, interval time.Duration) {
	scheduler.Every(ctx, interval, "maintenance", r.RunOnce)
}
