package server

import (
	"context"
	"net/http"
	"time"

	"github.com/fleetflow/fleetflow/internal/config"
	"github.com/fleetflow/fleetflow/internal/dispatch"
	notifdomain "github.com/fleetflow/fleetflow/internal/notification/domain"
	"github.com/fleetflow/fleetflow/internal/realtime"
	"github.com/fleetflow/fleetflow/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	log       *zap.Logger
	hub       *realtime.Hub
	notifSvc  notifdomain.Service
	validator *dispatch.Validator
	jobs      *scheduler.Scheduler
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	Log       *zap.Logger
	Hub       *realtime.Hub
	NotifSvc  notifdomain.Service
	Validator *dispatch.Validator
	Jobs      *scheduler.Scheduler
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		log:       p.Log.Named("server"),
		hub:       p.Hub,
		notifSvc:  p.NotifSvc,
		validator: p.Validator,
		jobs:      p.Jobs,
	}
}

func (s *Server) RegisterRoutes() {
	s.engine.GET("/ws", s.handleWebSocket)

	api := s.engine.Group("/api/v1")
	api.GET("/notifications", s.listNotifications)
	api.PATCH("/notifications/:id/read", s.markNotificationRead)
	api.POST("/dispatch/validate", s.validateDispatch)
	api.POST("/automation/run", s.runAutomation)
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
