package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"reportgen/internal/api"
	"reportgen/internal/config"
	"reportgen/internal/intake"
	"reportgen/internal/prompts"
	"reportgen/internal/redis"
	"reportgen/internal/service/report"
	"reportgen/internal/staging"
	"reportgen/internal/storage"
	"reportgen/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := storage.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := storage.Migrate(db, cfg.DatabaseDriver); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	reportStore := storage.NewReportStore(db)

	rdb, err := redis.NewClient(cfg)
	if err != nil {
		log.Printf("redis unavailable, upload rate limiting disabled: %v", err)
		rdb = nil
	}
	defer rdb.Close()

	stagingStore, err := staging.NewStore(cfg.StagingDir, time.Duration(cfg.StagingTTLMinutes)*time.Minute)
	if err != nil {
		log.Fatalf("init staging store: %v", err)
	}
	reaperStop := make(chan struct{})
	defer close(reaperStop)
	stagingStore.StartReaper(time.Duration(cfg.StagingSweepMinutes)*time.Minute, reaperStop)

	promptStore := prompts.NewStore(cfg.PromptOverrideDir)

	var client report.GenerativeClient
	if cfg.GeminiAPIKey != "" {
		client, err = report.NewGeminiClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("init gemini client: %v", err)
		}
	} else {
		log.Printf("GEMINI_API_KEY is not set, report generation will return errors")
	}
	generator := report.NewService(cfg, client, promptStore)

	pool := worker.NewPool(cfg.MaxConcurrentGeneration, cfg.GenerationQueueSize)
	defer pool.Shutdown()

	handlers := api.NewHandler(cfg, intake.New(cfg), generator, pool, stagingStore, reportStore, promptStore, rdb)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(api.RequestID())
	store := cookie.NewStore([]byte(cfg.SecretKey))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, MaxAge: 8 * 60 * 60})
	router.Use(sessions.Sessions("reportgen_session", store))
	router.Use(api.Recovery())
	router.LoadHTMLGlob("templates/*.html")
	handlers.RegisterRoutes(router)

	if err := router.Run(cfg.ServerAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
