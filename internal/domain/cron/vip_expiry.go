package cron

import (
	"context"
	"time"

	"github.com/questx-lab/luckydraw/internal/common"
	"github.com/questx-lab/luckydraw/internal/repository"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	robfigcron "github.com/robfig/cron/v3"
)

// VIPExpiryCronJob clears the VIP flag of users whose trial is over. Draws
// already ignore an expired trial, the job only keeps the stored flag honest.
type VIPExpiryCronJob struct {
	userRepo repository.UserRepository
	schedule robfigcron.Schedule
	now      func() time.Time
}

func NewVIPExpiryCronJob(userRepo repository.UserRepository, spec string) (*VIPExpiryCronJob, error) {
	schedule, err := robfigcron.ParseStandard(spec)
	if err != nil {
		return nil, err
	}

	return &VIPExpiryCronJob{userRepo: userRepo, schedule: schedule, now: time.Now}, nil
}

func (job *VIPExpiryCronJob) Do(ctx context.Context) {
	n, err := job.userRepo.ExpireVIP(ctx, job.now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot expire vip trials: %v", err)
		return
	}

	if n > 0 {
		common.PromCounters[common.VIPExpiredTotal].WithLabelValues().Add(float64(n))
		xcontext.Logger(ctx).Infof("Expired %d vip trials", n)
	}
}

func (job *VIPExpiryCronJob) RunNow() bool {
	return true
}

func (job *VIPExpiryCronJob) Next() time.Time {
	return job.schedule.Next(job.now())
}
