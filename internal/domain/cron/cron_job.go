package cron

import (
	"context"
	"sync"
	"time"

	"github.com/questx-lab/luckydraw/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Next() time.Time
}

type CronJobManager struct {
	mutex     sync.Mutex
	wait      sync.WaitGroup
	jobs      map[CronJob]*time.Timer
	started   bool
	cancelled bool
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{jobs: make(map[CronJob]*time.Timer)}
}

func (m *CronJobManager) Register(job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.jobs[job] = nil
}

// Start runs the registered jobs and blocks until Cancel is called. It returns
// at once if Cancel came first.
func (m *CronJobManager) Start(ctx context.Context) {
	m.mutex.Lock()
	if m.cancelled {
		m.mutex.Unlock()
		xcontext.Logger(ctx).Infof("Cron job manager was cancelled before start")
		return
	}

	xcontext.Logger(ctx).Infof("Cron job manager started")
	m.started = true
	jobs := make([]CronJob, 0, len(m.jobs))
	for job := range m.jobs {
		jobs = append(jobs, job)
	}
	m.wait.Add(len(jobs))
	m.mutex.Unlock()

	for _, job := range jobs {
		if job.RunNow() {
			go m.run(ctx, job)
		} else {
			m.schedule(ctx, job)
		}
	}

	m.wait.Wait()
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

func (m *CronJobManager) Cancel(ctx context.Context) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.cancelled {
		return
	}
	m.cancelled = true

	for job, timer := range m.jobs {
		if timer != nil {
			timer.Stop()
		} else if m.started {
			xcontext.Logger(ctx).Warnf("Stop a job that hasn't been scheduled: %T", job)
		}

		// Only jobs counted by Start are waited for.
		if m.started {
			m.wait.Done()
		}
	}

	// Cleared jobs are never scheduled again.
	m.jobs = make(map[CronJob]*time.Timer)
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	xcontext.Logger(ctx).Debugf("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Debugf("%T ok", job)

	m.schedule(ctx, job)
}

func (m *CronJobManager) schedule(ctx context.Context, job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.jobs[job]; ok {
		m.jobs[job] = time.AfterFunc(time.Until(job.Next()), func() { m.run(ctx, job) })
	}
}
