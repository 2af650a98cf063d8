package main

import (
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	defer s.stop()

	if err := s.loadDatabase(); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Database is up to date")
	return nil
}
