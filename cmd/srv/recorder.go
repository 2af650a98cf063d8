package main

import (
	"github.com/questx-lab/luckydraw/internal/domain/recorder"
	"github.com/questx-lab/luckydraw/pkg/kafka"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startRecorder(*cli.Context) error {
	defer s.stop()

	cfg := xcontext.Configs(s.ctx)
	httpRecorder, err := s.newHTTPRecorder()
	if err != nil {
		return err
	}

	forwarder := recorder.NewForwarder(httpRecorder, cfg.Recorder)
	subscriber, err := kafka.NewSubscriber(
		cfg.Kafka.Group,
		[]string{cfg.Kafka.Addr},
		[]string{cfg.Kafka.Topic},
		forwarder.Subscribe,
	)
	if err != nil {
		return err
	}
	defer subscriber.Stop(s.ctx)

	xcontext.Logger(s.ctx).Infof("Forwarding draw records of topic %s", cfg.Kafka.Topic)
	return subscriber.Subscribe(s.ctx)
}
