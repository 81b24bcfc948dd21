package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/internal/handler"
	"github.com/noah-isme/sciclass-api/internal/models"
	"github.com/noah-isme/sciclass-api/internal/repository"
	"github.com/noah-isme/sciclass-api/internal/service"
	"github.com/noah-isme/sciclass-api/pkg/cache"
	"github.com/noah-isme/sciclass-api/pkg/config"
	"github.com/noah-isme/sciclass-api/pkg/database"
	"github.com/noah-isme/sciclass-api/pkg/i18n"
	"github.com/noah-isme/sciclass-api/pkg/jobs"
)

// app holds every wired component of a running process.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService

	db    *sqlx.DB
	redis *redis.Client
	queue *jobs.Queue

	roster      *service.RosterService
	sessions    *service.SessionService
	ledger      *service.LedgerService
	warnings    *service.WarningService
	attendance  *service.AttendanceService
	preRoutines *service.PreRoutineService
	auth        *service.AuthService
	board       *service.BoardService
	quiz        *service.QuizService
	missions    *service.MissionService
	store       *service.StoreService
	snapshots   *service.SnapshotService
	reports     *service.ReportService

	checks map[string]handler.Pinger
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, checks: map[string]handler.Pinger{}}
	if cfg.Metrics.Enabled {
		a.metrics = service.NewMetricsService()
	}

	blobs, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	repos := repository.NewRepositories(blobs, repository.CollectionOptions{
		KeyPrefix:  cfg.Store.KeyPrefix,
		MaxRetries: cfg.Store.MaxRetries,
		OnConflict: a.metrics.RecordStoreConflict,
	})

	cacheRepo, err := a.openCache()
	if err != nil {
		a.Close()
		return nil, err
	}

	translator, err := i18n.New(cfg.Lang)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load translations: %w", err)
	}

	confirmations := service.NewConfirmationService(cacheRepo, cfg.Store.KeyPrefix, cfg.Confirmation.TTL, logger)
	a.roster = service.NewRosterService(repos.Students, repos.Classes, confirmations, nil, logger)
	a.sessions = service.NewSessionService(repos.Sessions, repos.Classes, confirmations, nil, logger, a.metrics)
	a.ledger = service.NewLedgerService(repos.Points, nil, logger, a.metrics)
	a.warnings = service.NewWarningService(repos.Warnings, a.sessions, repos.Students, logger)
	a.attendance = service.NewAttendanceService(repos.Attendances, a.sessions, logger)
	a.preRoutines = service.NewPreRoutineService(repos.PreRoutines, a.sessions, logger)
	a.auth = service.NewAuthService(repos.Students, a.attendance, nil, logger, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "sciclass-api",
		TeacherID:         cfg.Teacher.ID,
		TeacherName:       cfg.Teacher.Name,
		TeacherPasscode:   cfg.Teacher.Passcode,
	})

	feedCache := service.NewCacheService(cacheRepo, a.metrics, cfg.Store.KeyPrefix+":cache", cfg.Cache.BoardFeedTTL, logger, true)
	a.board = service.NewBoardService(repos.Questions, repos.Answers, a.sessions, a.warnings, a.ledger, feedCache, cfg.Cache.BoardFeedTTL,
		service.BoardRewards{
			QuestionCreate: cfg.Points.QuestionCreate,
			AnswerCreate:   cfg.Points.AnswerCreate,
			BestAnswer:     cfg.Points.BestAnswer,
		}, nil, logger)
	a.quiz = service.NewQuizService(repos.QuizResponses, a.sessions, a.warnings, a.ledger,
		models.QuizRewards{FirstTry: cfg.Points.QuizFirstTry, SecondTry: cfg.Points.QuizSecondTry}, logger, a.metrics)

	a.queue = jobs.NewQueue("mission-conversion", service.ConversionHandler(a.ledger, cfg.Mission.ConversionMode, logger), jobs.QueueConfig{
		Workers:    cfg.Mission.Workers,
		MaxRetries: cfg.Mission.Retries,
		RetryDelay: cfg.Mission.RetryDelay,
		Logger:     logger,
	})
	a.missions = service.NewMissionService(repos.MissionResults, a.sessions, repos.Students, a.queue, logger)
	a.store = service.NewStoreService(repos.Claims, a.ledger, nil, logger)
	a.snapshots = service.NewSnapshotService(service.SnapshotSources{
		Sessions:    a.sessions,
		PreRoutines: a.preRoutines,
		Warnings:    a.warnings,
		Ledger:      a.ledger,
		Quiz:        a.quiz,
		Board:       a.board,
		Roster:      a.roster,
		Attendance:  a.attendance,
		Missions:    a.missions,
	}, translator, logger)
	a.reports = service.NewReportService(a.sessions, a.snapshots, logger)

	if cfg.Seed.DemoData {
		if err := a.roster.Seed(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

// openStore builds the collection store selected by STORE_BACKEND.
func (a *app) openStore(ctx context.Context) (repository.BlobStore, error) {
	switch a.cfg.Store.Backend {
	case config.StoreMemory, "":
		a.logger.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryBlobStore(), nil
	case config.StorePostgres:
		db, err := database.NewPostgres(a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return a.sqlStore(ctx, db, repository.DialectPostgres)
	case config.StoreSQLite:
		db, err := database.NewSQLite(a.cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return a.sqlStore(ctx, db, repository.DialectSQLite)
	case config.StoreRedis:
		client, err := a.redisClient()
		if err != nil {
			return nil, err
		}
		return repository.NewRedisBlobStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}
}

func (a *app) sqlStore(ctx context.Context, db *sqlx.DB, dialect repository.SQLDialect) (repository.BlobStore, error) {
	a.db = db
	a.checks["store"] = db.PingContext
	store := repository.NewSQLBlobStore(db, dialect, a.metrics.ObserveStoreQuery)
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	a.logger.Info("collection store ready", zap.String("backend", string(dialect)))
	return store, nil
}

func (a *app) redisClient() (*redis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	client, err := cache.NewRedis(a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.redis = client
	a.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return client, nil
}

// openCache returns the redis cache when enabled or already connected, otherwise process memory.
func (a *app) openCache() (service.CacheRepository, error) {
	if !a.cfg.Cache.Enabled && a.redis == nil {
		return repository.NewMemoryCacheRepository(), nil
	}
	client, err := a.redisClient()
	if err != nil {
		return nil, err
	}
	return repository.NewCacheRepository(client, a.logger), nil
}

// Close releases connections. Safe on a partially built app.
func (a *app) Close() {
	if a.queue != nil {
		a.queue.Stop()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *app) handlers() handler.Handlers {
	return handler.Handlers{
		Auth:         handler.NewAuthHandler(a.auth),
		Student:      handler.NewStudentHandler(a.roster, a.snapshots, a.preRoutines, a.ledger),
		Board:        handler.NewBoardHandler(a.roster, a.board),
		Quiz:         handler.NewQuizHandler(a.roster, a.quiz),
		Store:        handler.NewStoreHandler(a.store),
		Class:        handler.NewClassHandler(a.roster, a.snapshots),
		Session:      handler.NewSessionHandler(a.sessions, a.attendance, a.warnings, a.missions, a.reports),
		Points:       handler.NewPointsHandler(a.ledger),
		Metrics:      handler.NewMetricsHandler(a.metrics, a.checks),
		Tokens:       a.auth,
		Observer:     a.metrics,
		Logger:       a.logger,
		PollInterval: a.cfg.Polling.Interval,
	}
}

const shutdownTimeout = 10 * time.Second
