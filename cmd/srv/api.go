package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/questx-lab/luckydraw/internal/common"
	"github.com/questx-lab/luckydraw/internal/middleware"
	"github.com/questx-lab/luckydraw/internal/model"
	"github.com/questx-lab/luckydraw/pkg/authenticator"
	"github.com/questx-lab/luckydraw/pkg/prometheus"
	"github.com/questx-lab/luckydraw/pkg/router"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func (s *srv) startApi(*cli.Context) error {
	defer s.stop()

	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.loadRedisClient(); err != nil {
		return err
	}

	s.loadRepos()
	if err := s.loadEngine(); err != nil {
		return err
	}

	asyncRecorder, err := s.loadRecorder()
	if err != nil {
		return err
	}

	if asyncRecorder != nil {
		s.loadDomains(asyncRecorder)
	} else {
		s.loadDomains(nil)
	}
	if err := s.loadRouter(); err != nil {
		return err
	}

	cfg := xcontext.Configs(s.ctx)
	httpSrv := &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.router.Handler(cfg.ApiServer.AllowedOrigins),
	}

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		xcontext.Logger(ctx).Infof("Starting server on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		xcontext.Logger(s.ctx).Infof("Server is shutting down")
		if s.publisher != nil {
			defer s.publisher.Stop(shutdownCtx)
		}

		return httpSrv.Shutdown(shutdownCtx)
	})

	if asyncRecorder != nil {
		g.Go(func() error { return asyncRecorder.Run(ctx) })
	}

	return g.Wait()
}

func (s *srv) loadRouter() error {
	cfg := xcontext.Configs(s.ctx)

	promHandler, err := prometheus.NewHandler(common.PromCollectors()...)
	if err != nil {
		return err
	}

	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime())
	s.router.After(middleware.Logger())
	s.router.After(middleware.Prometheus())
	s.router.Static(http.MethodGet, "/metrics", promHandler)

	// Public API.
	router.GET(s.router, "/getPrizes", s.luckyDrawDomain.GetPrizes)

	authVerifier := middleware.NewAuthVerifier(
		authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.TokenSecret, cfg.Auth.AccessToken.Expiration))

	// These following APIs need an access token.
	authRouter := s.router.Branch()
	authRouter.Before(authVerifier.Middleware())
	{
		router.POST(authRouter, "/draw", s.luckyDrawDomain.Draw)
		router.GET(authRouter, "/getQuota", s.luckyDrawDomain.GetQuota)
		router.GET(authRouter, "/getInventory", s.luckyDrawDomain.GetInventory)
		router.POST(authRouter, "/consumeItem", s.luckyDrawDomain.ConsumeItem)
		router.GET(authRouter, "/getDrawHistory", s.luckyDrawDomain.GetDrawHistory)

		router.GET(authRouter, "/getMe", s.userDomain.GetMe)
		router.GET(authRouter, "/getPointTransactions", s.userDomain.GetPointTransactions)
	}

	// These following APIs are only called by trusted services.
	serviceRouter := authRouter.Branch()
	serviceRouter.Before(middleware.OnlyService())
	{
		router.POST(serviceRouter, "/creditPoints", s.userDomain.CreditPoints)
		router.POST(serviceRouter, "/updateMembership", s.userDomain.UpdateMembership)
	}

	return nil
}
