package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/vnkhanh/e-course-backend/config"
	"github.com/vnkhanh/e-course-backend/controllers"
	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/middleware"
	"github.com/vnkhanh/e-course-backend/repos"
	"github.com/vnkhanh/e-course-backend/routes"
	"github.com/vnkhanh/e-course-backend/search"
	"github.com/vnkhanh/e-course-backend/services"
	"github.com/vnkhanh/e-course-backend/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg, appLog)
	if err != nil {
		appLog.Fatal("database", "error", err)
	}
	rdb, err := config.NewRedis(cfg)
	if err != nil {
		appLog.Fatal("redis", "error", err)
	}
	es, err := config.NewSearchClient(cfg)
	if err != nil {
		appLog.Fatal("elasticsearch", "error", err)
	}

	rs := repos.NewSet(db, appLog)
	checks := map[string]controllers.Check{}

	var index search.Index
	if es != nil {
		elastic := search.NewElasticIndex(es, cfg.ElasticIndex, appLog)
		ensureCtx, cancel := context.WithTimeout(ctx, cfg.SearchTimeout)
		if err := elastic.EnsureIndex(ensureCtx); err != nil {
			appLog.Warn("search index not ready", "error", err)
		}
		cancel()
		index = elastic
		checks["search"] = elastic.Ping
	} else {
		appLog.Warn("ELASTICSEARCH_URLS not set, course search is disabled")
	}
	var queue services.ReindexQueue
	if rdb != nil {
		queue = services.NewRedisReindexQueue(rdb, cfg.ReindexKey, appLog)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		appLog.Warn("REDIS_ADDR not set, failed index syncs will not be retried")
	}

	hub := ws.NewHub(appLog)
	notify := services.NewProgressNotifier(hub)

	indexer := services.NewCourseIndexer(index, queue, rs, cfg.SearchTimeout, appLog)
	progress := services.NewProgressService(rs.Progress, rs.Videos, notify, appLog)
	tests := services.NewTestService(db, rs.Tests, rs.Videos, progress, notify, appLog)
	courses := services.NewCourseService(db, rs, progress, indexer, appLog)
	videos := services.NewVideoService(db, rs, progress, indexer, appLog)
	enrollments := services.NewEnrollmentService(db, rs, indexer, appLog)
	categories := services.NewCategoryService(rs.Categories, appLog)
	communities := services.NewCommunityService(rs.Communities, appLog)
	users := services.NewUserService(rs.Users, appLog)

	if queue != nil && index != nil {
		services.StartReindexJob(ctx, indexer, queue, cfg.ReindexEvery, appLog)
	}

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(appLog))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	routes.SetupRouter(r, routes.Handlers{
		Health:     controllers.NewHealthHandler(db, checks),
		Users:      controllers.NewUserHandler(users, appLog),
		Categories: controllers.NewCategoryHandler(categories, communities, appLog),
		Courses:    controllers.NewCourseHandler(courses, indexer, appLog),
		Videos:     controllers.NewVideoHandler(videos, progress, tests, appLog),
		Enrollment: controllers.NewEnrollmentHandler(enrollments, appLog),
		ProgressWS: ws.HandleProgressWebSocket(hub, ws.NewUpgrader(cfg.CORSOrigins)),
	}, middleware.AuthMiddleware(cfg.JWTSecret, rs.Users, appLog))

	appLog.Info("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		appLog.Fatal("server stopped", "error", err)
	}
}
