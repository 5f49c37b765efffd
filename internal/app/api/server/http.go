package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/novaai/backend/docs"
	"github.com/novaai/backend/internal/app/api/handlers"
	"github.com/novaai/backend/internal/app/service/billing"
	"github.com/novaai/backend/internal/app/service/oauthsession"
	paysvc "github.com/novaai/backend/internal/app/service/payment"
	"github.com/novaai/backend/internal/app/service/statistics"
	"github.com/novaai/backend/internal/app/service/usage"
	usersvc "github.com/novaai/backend/internal/app/service/user"
	"github.com/novaai/backend/internal/app/service/webhook"
	"github.com/novaai/backend/internal/platform/firebaseauth"
	cfgpkg "github.com/novaai/backend/pkg/config"

	mw "github.com/novaai/backend/internal/app/api/middleware"

	metrics "github.com/novaai/backend/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newEngine(cfg *cfgpkg.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Tracing only here; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())

	if len(cfg.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-ID")
		r.Use(cors.New(corsCfg))
	}
	return r
}

type routeDeps struct {
	fx.In

	Engine   *gin.Engine
	Log      *zap.SugaredLogger
	Cfg      *cfgpkg.Config
	Webhook  *webhook.Service
	Usage    *usage.Service
	Users    *usersvc.Service
	OAuth    *oauthsession.Service
	Billing  *billing.Service
	Payments *paysvc.Service
	Stats    *statistics.Service
	Verifier firebaseauth.TokenVerifier
}

func registerRoutes(d routeDeps) {
	r, log, cfg := d.Engine, d.Log, d.Cfg

	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Legacy AI quota endpoints, flat response shapes
	apiAI := r.Group("/api/ai")
	apiAI.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterUsageRoutes(apiAI, d.Usage, d.Verifier)

	// Provider-facing webhook
	apiV1Payment := r.Group("/api/v1/payment")
	apiV1Payment.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterPaymentWebhookRoutes(apiV1Payment, d.Webhook, log)

	// Desktop login bridge
	apiV1OAuth := r.Group("/api/v1/oauth")
	apiV1OAuth.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterOAuthRoutes(apiV1OAuth, d.OAuth, cfg)

	// User profile
	apiV1User := r.Group("/api/v1/user")
	apiV1User.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterUserRoutes(apiV1User, d.Users, d.Verifier)

	// Scheduled billing trigger
	apiV1Billing := r.Group("/api/v1/billing")
	apiV1Billing.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.TriggerTokenMiddleware(cfg.Billing.TriggerToken))
	handlers.RegisterBillingRoutes(apiV1Billing, d.Billing)

	// Admin APIs
	apiV1Admin := r.Group("/api/v1/admin")
	apiV1Admin.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.AdminAuthMiddleware(cfg.Admin.JWTSecret))
	handlers.RegisterAdminRoutes(apiV1Admin, d.Payments, d.Users, d.Stats)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
