package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/safehaven/peer-support-core/internal/audit"
	"github.com/safehaven/peer-support-core/internal/catalog"
	"github.com/safehaven/peer-support-core/internal/classifier"
	"github.com/safehaven/peer-support-core/internal/config"
	"github.com/safehaven/peer-support-core/internal/database"
	"github.com/safehaven/peer-support-core/internal/handler"
	"github.com/safehaven/peer-support-core/internal/model"
	"github.com/safehaven/peer-support-core/internal/queue"
	"github.com/safehaven/peer-support-core/internal/repository"
	"github.com/safehaven/peer-support-core/internal/router"
	"github.com/safehaven/peer-support-core/internal/rules"
	queue_publisher "github.com/safehaven/peer-support-core/internal/service"
	"github.com/safehaven/peer-support-core/internal/workflow"
)

// publisher adapts the package-level queue publisher to the workflow's
// Notifier interface.
type publisher struct{}

func (publisher) PublishReviewRequired(ctx context.Context, ev queue.ReviewRequiredEvent) error {
	return queue_publisher.PublishReviewRequired(ctx, ev)
}

func main() {
	// .env is optional; environment variables may be set by the platform.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	// Safety rules and the resource catalog travel in one versioned file;
	// without one the built-in set applies.
	rs := rules.Default()
	var resources []model.EmergencyResource
	if cfg.RulesPath != "" {
		var err error
		rs, resources, err = rules.Load(cfg.RulesPath)
		if err != nil {
			log.Fatalf("load safety rules: %v", err)
		}
	}
	logger.Info("safety rules loaded",
		zap.String("version", rs.Version),
		zap.Int("resources", len(resources)))

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	if err := database.Migrate(context.Background(), db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// Redis backs rate limiting and the public feed cache; both degrade
	// gracefully to no-ops when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	consents := repository.NewConsentRepo(db)
	submissions := repository.NewSubmissionRepo(db)
	audits := repository.NewAuditRepo(db)

	recorder := audit.NewRecorder(audits, logger)
	cls := classifier.New(rs)
	cat := catalog.New(resources, rs)
	wf := workflow.NewService(cls, cat, submissions, recorder, publisher{}, logger)

	h := router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, users, tokens, consents, recorder),
		Submission: handler.NewSubmissionHandler(wf),
		Review:     handler.NewReviewHandler(wf),
		Consent:    handler.NewConsentHandler(consents, users, recorder),
		Feed:       handler.NewFeedHandler(submissions, cat),
	}

	e := echo.New()
	router.Register(e, cfg, h, consents, recorder, rdb, logger)

	// Background consumer standing in for the notification collaborator; it
	// reconnects forever and never takes the server down.
	go func() {
		if err := queue.StartReviewConsumer(); err != nil {
			logger.Error("review consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
