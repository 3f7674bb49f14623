package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pnj-dev/facility-booking/internal/config"
	"github.com/pnj-dev/facility-booking/internal/database"
	"github.com/pnj-dev/facility-booking/internal/handler"
	"github.com/pnj-dev/facility-booking/internal/lifecycle"
	"github.com/pnj-dev/facility-booking/internal/model"
	"github.com/pnj-dev/facility-booking/internal/queue"
	"github.com/pnj-dev/facility-booking/internal/repository"
	"github.com/pnj-dev/facility-booking/internal/router"
	"github.com/pnj-dev/facility-booking/internal/service"
	"github.com/pnj-dev/facility-booking/internal/storage"

	applog "github.com/pnj-dev/facility-booking/internal/logger"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	zl, err := applog.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zl.Fatal("database open", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		zl.Fatal("migrations", zap.Error(err))
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	buildings := repository.NewBuildingRepo(db)
	requests := repository.NewRequestRepo(db)
	schedules := repository.NewScheduleRepo(db)
	notifications := repository.NewNotificationRepo(db)
	dashboard := repository.NewDashboardRepo(requests, schedules, notifications)

	bootstrapAdmins(users, cfg, zl)

	blobs, err := storage.NewBlobStore(cfg.BlobDir)
	if err != nil {
		zl.Fatal("blob store", zap.Error(err))
	}

	engine := lifecycle.NewEngine(repository.NewStore(db), nil)

	var events *service.Publisher
	if cfg.AMQPURL != "" {
		events = service.NewPublisher(cfg.AMQPURL, zl)
		go func() {
			if err := queue.StartLifecycleConsumer(cfg.AMQPURL, zl); err != nil {
				zl.Warn("lifecycle consumer stopped", zap.Error(err))
			}
		}()
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		zl.Warn("redis unavailable, cache and rate limiting disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, tokens),
		Buildings:     handler.NewBuildingHandler(buildings),
		Requests:      handler.NewRequestHandler(engine, requests, blobs, events, cfg.MaxUploadBytes, zl),
		Schedules:     handler.NewScheduleHandler(engine, schedules, requests, events),
		Notifications: handler.NewNotificationHandler(notifications),
		Dashboard:     handler.NewDashboardHandler(dashboard),
	}, cfg, rdb)

	zl.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := e.Start(":" + cfg.Port); err != nil {
		zl.Fatal("server", zap.Error(err))
	}
}

// bootstrapAdmins guarantees the two reviewer accounts exist. Public
// registration only creates plain users, so without this step a fresh
// database would have nobody able to approve or schedule anything.
func bootstrapAdmins(users *repository.UserRepo, cfg config.Config, zl *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admins := []struct {
		name     string
		email    string
		password string
		role     model.Role
	}{
		{"Approval Admin", cfg.Admin1Email, cfg.Admin1Password, model.RoleAdmin1},
		{"Scheduling Admin", cfg.Admin2Email, cfg.Admin2Password, model.RoleAdmin2},
	}
	for _, a := range admins {
		id, err := users.EnsureAdmin(ctx, a.name, a.email, a.password, a.role, cfg.BcryptCost)
		if err != nil {
			zl.Fatal("admin bootstrap", zap.String("email", a.email), zap.Error(err))
		}
		zl.Info("admin account ready", zap.Uint64("id", id), zap.String("role", string(a.role)))
	}
}
