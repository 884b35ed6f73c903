package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/tvorai/creditgate/internal/account/domain"
	"github.com/tvorai/creditgate/internal/auth"
	"github.com/tvorai/creditgate/internal/config"
	ledgerdomain "github.com/tvorai/creditgate/internal/ledger/domain"
	"github.com/tvorai/creditgate/internal/observability"
	obslogger "github.com/tvorai/creditgate/internal/observability/logger"
	obsmetrics "github.com/tvorai/creditgate/internal/observability/metrics"
	"github.com/tvorai/creditgate/internal/pricing"
	"github.com/tvorai/creditgate/internal/providers"
	subscriptiondomain "github.com/tvorai/creditgate/internal/subscription/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, registry *prometheus.Registry, cfg config.Config) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.AllowedOrigin))
	r.Use(obslogger.GinMiddleware(log.Named("http"), obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, registry *prometheus.Registry, cfg config.Config) *gin.Engine {
	return NewEngine(log, obsCfg, httpMetrics, registry, cfg)
}

// corsMiddleware admits the single configured frontend origin. The gateway
// serves one CMS frontend, so a general CORS layer is not needed.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-Id")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger

	prices          pricing.Table
	accountSvc      accountdomain.Service
	subscriptionSvc subscriptiondomain.Service
	ledgerSvc       ledgerdomain.Service
	authSvc         *auth.Service
	gateway         *obsmetrics.GatewayMetrics

	translator providers.Translator
	speech     providers.Speech
	videoGen   providers.VideoGen
	avatar     providers.Avatar
	imageGen   providers.ImageGen
	textGen    providers.TextGen
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine
	Cfg config.Config
	DB  *gorm.DB
	Log *zap.Logger

	Prices          pricing.Table
	AccountSvc      accountdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	LedgerSvc       ledgerdomain.Service
	AuthSvc         *auth.Service
	Gateway         *obsmetrics.GatewayMetrics `optional:"true"`

	Translator providers.Translator
	Speech     providers.Speech
	VideoGen   providers.VideoGen
	Avatar     providers.Avatar
	ImageGen   providers.ImageGen
	TextGen    providers.TextGen
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log.Named("server"),
		prices:          p.Prices,
		accountSvc:      p.AccountSvc,
		subscriptionSvc: p.SubscriptionSvc,
		ledgerSvc:       p.LedgerSvc,
		authSvc:         p.AuthSvc,
		gateway:         p.Gateway,
		translator:      p.Translator,
		speech:          p.Speech,
		videoGen:        p.VideoGen,
		avatar:          p.Avatar,
		imageGen:        p.ImageGen,
		textGen:         p.TextGen,
	}

	svc.registerBillingRoutes()
	svc.registerAuthRoutes()
	svc.registerProxyRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerBillingRoutes() {
	s.engine.POST("/consume", s.Consume)
	s.engine.GET("/usage/:external_account_id", s.Usage)
	s.engine.POST("/webhook/subscription-update", s.SubscriptionUpdate)
}

func (s *Server) registerAuthRoutes() {
	s.engine.POST("/auth/wp-login-exchange", s.LoginExchange)
}

func (s *Server) registerProxyRoutes() {
	api := s.engine.Group("/", s.authSvc.Required())

	api.POST("/translate", s.Translate)
	api.GET("/voices", s.Voices)
	api.POST("/tts", s.TextToSpeech)
	api.POST("/video/generate", s.VideoGenerate)
	api.GET("/video/status/:task_id", s.VideoStatus)
	api.POST("/avatar/generate", s.AvatarGenerate)
	api.GET("/avatar/status/:video_id", s.AvatarStatus)
	api.POST("/image/generate", s.ImageGenerate)
	api.GET("/image/sizes", s.ImageSizes)
	api.POST("/templates/facebook-ad", s.FacebookAd)
}
