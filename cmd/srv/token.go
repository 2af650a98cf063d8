package main

import (
	"fmt"

	"github.com/questx-lab/luckydraw/internal/model"
	"github.com/questx-lab/luckydraw/pkg/authenticator"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startToken(cctx *cli.Context) error {
	defer s.stop()

	role := cctx.String("role")
	if role != model.RoleUser && role != model.RoleService {
		return fmt.Errorf("invalid role %s", role)
	}

	cfg := xcontext.Configs(s.ctx).Auth
	if cfg.TokenSecret == "" {
		return fmt.Errorf("auth token secret is not configured")
	}

	expiration := cctx.Duration("expiration")
	if expiration <= 0 {
		expiration = cfg.AccessToken.Expiration
	}

	tokenEngine := authenticator.NewTokenEngine[model.AccessToken](cfg.TokenSecret, expiration)
	token, err := tokenEngine.Generate(cctx.String("id"), model.AccessToken{ID: cctx.String("id"), Role: role})
	if err != nil {
		return err
	}

	fmt.Fprintln(cctx.App.Writer, token)
	return nil
}
