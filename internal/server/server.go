package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mohammad-safakhou/briefer/config"
	"github.com/mohammad-safakhou/briefer/internal/agenttask"
	"github.com/mohammad-safakhou/briefer/internal/briefing"
	"github.com/mohammad-safakhou/briefer/internal/enrich"
	"github.com/mohammad-safakhou/briefer/internal/speech"
	"github.com/mohammad-safakhou/briefer/internal/store"
	"github.com/mohammad-safakhou/briefer/internal/telemetry"
	"github.com/mohammad-safakhou/briefer/repository/redis_repository"
)

func Run(cfg *config.Config, addr string) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie"},
		AllowCredentials: true,
	}))

	metrics := telemetry.NewMetrics()
	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	if cfg.Telemetry.Enabled {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}

	if err := Migrate("file://migrations", cfg.Storage.Postgres.DSN(), "up", 0); err != nil {
		log.Printf("migrations not applied: %v", err)
	}

	ctx := context.Background()
	st, err := store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN())
	if err != nil {
		return err
	}

	rdb, err := redis_repository.Conn(ctx,
		cfg.Storage.Redis.Host, cfg.Storage.Redis.Port,
		cfg.Storage.Redis.Password, cfg.Storage.Redis.DB, cfg.Storage.Redis.Timeout)
	if err != nil {
		return err
	}
	repo := redis_repository.NewRepository(rdb)

	tasks := agenttask.NewClient(agenttask.Config{
		BaseURL:         cfg.Agent.BaseURL,
		CreatePath:      cfg.Agent.CreatePath,
		GetPathTemplate: cfg.Agent.GetPathTemplate,
		APIKey:          cfg.Agent.APIKey,
		AgentProfile:    cfg.Agent.AgentProfile,
		TaskMode:        cfg.Agent.TaskMode,
		HideInTaskList:  cfg.Agent.HideInTaskList,
		PollInterval:    cfg.Agent.PollInterval,
		MaxPoll:         cfg.Agent.MaxPoll,
		RequestTimeout:  cfg.Agent.RequestTimeout,
	}, log.New(log.Writer(), "[TASK] ", log.LstdFlags))

	orchLogger := log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	orch := briefing.New(cfg, orchLogger, metrics, repo, st, tasks, enrich.NewClient(cfg.Images))

	secret := cfg.Server.JWTSecret
	if secret == "" {
		return fmt.Errorf("jwt secret not configured (server.jwt_secret)")
	}
	auth := &AuthHandler{Store: st, Secret: []byte(secret)}

	api := e.Group("/api")
	auth.Register(api.Group("/auth"))

	me := api.Group("/me")
	me.Use(func(next echo.HandlerFunc) echo.HandlerFunc { return withAuth(next, auth.Secret) })
	me.GET("", func(c echo.Context) error {
		return c.JSON(200, MeResponse{UserID: c.Get("user_id").(string)})
	})

	bh := &BriefingHandler{Repo: repo, Orch: orch, History: st, Logger: orchLogger}
	bh.Register(api.Group(""), auth.Secret)

	sh := &SpeechHandler{Speech: speech.NewClient(cfg.Speech)}
	sh.Register(api.Group("/speech"), auth.Secret)

	oh := &OnboardHandler{Repo: repo}
	oh.Register(api.Group("/onboard"), auth.Secret)

	if cfg.Schedule.Enabled {
		sched := &Scheduler{
			Repo:    repo,
			History: st,
			Orch:    orch,
			Rdb:     rdb,
			Cron:    cfg.Schedule.Cron,
			Stop:    make(chan struct{}),
		}
		sched.Start()
	}

	if addr == "" {
		addr = cfg.Server.Address
		if addr != "" && addr[0] != ':' {
			addr = ":" + addr
		}
		if addr == "" {
			addr = ":10001"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
