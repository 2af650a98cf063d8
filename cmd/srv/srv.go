package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/luckydraw/config"
	"github.com/questx-lab/luckydraw/internal/client"
	"github.com/questx-lab/luckydraw/internal/domain"
	"github.com/questx-lab/luckydraw/internal/domain/draw"
	"github.com/questx-lab/luckydraw/internal/domain/recorder"
	"github.com/questx-lab/luckydraw/internal/repository"
	"github.com/questx-lab/luckydraw/migration"
	"github.com/questx-lab/luckydraw/pkg/api"
	"github.com/questx-lab/luckydraw/pkg/kafka"
	"github.com/questx-lab/luckydraw/pkg/logger"
	"github.com/questx-lab/luckydraw/pkg/pubsub"
	"github.com/questx-lab/luckydraw/pkg/router"
	"github.com/questx-lab/luckydraw/pkg/xcontext"
	"github.com/questx-lab/luckydraw/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app  *cli.App
	ctx  context.Context
	stop context.CancelFunc

	userRepo             repository.UserRepository
	quotaRepo            repository.DrawQuotaRepository
	inventoryRepo        repository.InventoryRepository
	drawRecordRepo       repository.DrawRecordRepository
	pointTransactionRepo repository.PointTransactionRepository

	engine          *draw.Engine
	luckyDrawDomain domain.LuckyDrawDomain
	userDomain      domain.UserDomain

	redisClient xredis.Client
	publisher   pubsub.Publisher
	router      *router.Router
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"), cctx.String("env"))
	if err != nil {
		return err
	}

	level := logger.ParseLevel(cfg.LogLevel)
	var log logger.Logger = logger.NewLogger(level)
	if cfg.Env != "local" {
		log = logger.NewJSONLogger(level, os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	s.stop = stop
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, log)
	s.ctx = ctx

	return nil
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	default:
		return nil, errors.New("unsupported database driver " + cfg.Driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "info":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}

func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return migration.Migrate(s.ctx)
}

// loadRedisClient leaves redisClient nil when redis is not configured.
func (s *srv) loadRedisClient() error {
	if !xcontext.Configs(s.ctx).Redis.Enabled() {
		xcontext.Logger(s.ctx).Warnf("Redis is not configured, draws are only locked in process")
		return nil
	}

	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		return err
	}

	s.redisClient = redisClient
	return nil
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.quotaRepo = repository.NewDrawQuotaRepository()
	s.inventoryRepo = repository.NewInventoryRepository()
	s.drawRecordRepo = repository.NewDrawRecordRepository()
	s.pointTransactionRepo = repository.NewPointTransactionRepository()
}

func (s *srv) loadEngine() error {
	engine, err := domain.NewDrawEngine(xcontext.Configs(s.ctx).Draw, draw.DefaultSource())
	if err != nil {
		return err
	}

	s.engine = engine
	return nil
}

func (s *srv) loadDomains(recordQueue recorder.Queue) {
	s.luckyDrawDomain = domain.NewLuckyDrawDomain(
		s.engine,
		s.userRepo,
		s.quotaRepo,
		s.inventoryRepo,
		s.drawRecordRepo,
		s.pointTransactionRepo,
		s.redisClient,
		recordQueue,
	)
	s.userDomain = domain.NewUserDomain(s.engine, s.userRepo, s.pointTransactionRepo)
}

func (s *srv) loadPublisher() error {
	cfg := xcontext.Configs(s.ctx).Kafka
	publisher, err := kafka.NewPublisher("luckydraw", []string{cfg.Addr})
	if err != nil {
		return err
	}

	s.publisher = publisher
	return nil
}

// newHTTPRecorder returns the client of the remote recording endpoint.
func (s *srv) newHTTPRecorder() (client.DrawRecorder, error) {
	cfg := xcontext.Configs(s.ctx).Recorder
	if cfg.Endpoint == "" {
		return nil, errors.New("recorder endpoint is required")
	}

	return client.NewHTTPDrawRecorder(api.NewGenerator(cfg.Endpoint), cfg.Token, cfg.Secret), nil
}

// loadRecorder returns the asynchronous recorder of the configured mode, nil
// when recording is disabled.
func (s *srv) loadRecorder() (*recorder.AsyncRecorder, error) {
	cfg := xcontext.Configs(s.ctx)

	var drawRecorder client.DrawRecorder
	switch cfg.Recorder.Mode {
	case "", "none":
		return nil, nil

	case "http":
		r, err := s.newHTTPRecorder()
		if err != nil {
			return nil, err
		}
		drawRecorder = r

	case "kafka":
		if err := s.loadPublisher(); err != nil {
			return nil, err
		}
		drawRecorder = client.NewKafkaDrawRecorder(s.publisher, cfg.Kafka.Topic)

	default:
		return nil, errors.New("unsupported recorder mode " + cfg.Recorder.Mode)
	}

	return recorder.NewAsyncRecorder(drawRecorder, cfg.Recorder), nil
}
