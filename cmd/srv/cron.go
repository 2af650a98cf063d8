package main

import (
	"github.com/questx-lab/luckydraw/internal/domain/cron"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	defer s.stop()

	if err := s.loadDatabase(); err != nil {
		return err
	}
	s.loadRepos()

	vipExpiryJob, err := cron.NewVIPExpiryCronJob(s.userRepo, xcontext.Configs(s.ctx).Cron.VIPExpirySchedule)
	if err != nil {
		return err
	}

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(vipExpiryJob)

	go func() {
		<-s.ctx.Done()
		cronJobManager.Cancel(s.ctx)
	}()

	cronJobManager.Start(s.ctx)
	return nil
}
