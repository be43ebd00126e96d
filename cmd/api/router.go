package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nathanael250/travooz-hms-sub004/internal/config"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/audit"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/booking"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/inventory"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/roomfeed"
	"github.com/nathanael250/travooz-hms-sub004/internal/middleware"
	jwtsvc "github.com/nathanael250/travooz-hms-sub004/internal/pkg/jwt"
	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/metrics"
	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/response"
)

type unitStatusPublisher interface {
	PublishUnitStatus(ctx context.Context, ev inventory.UnitStatusEvent) error
}

// staff roles allowed to move units between housekeeping states
var housekeepingRoles = []string{"housekeeping", "manager", "admin"}

func newRouter(cfg *config.Config, db *gorm.DB, hub *roomfeed.Hub, publisher unitStatusPublisher, log *zap.Logger) *gin.Engine {
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	recorder := audit.NewRecorder(db, log.Named("audit"))

	inventoryService := inventory.NewService(db, publisher, recorder, m, log.Named("inventory"))
	inventoryHandler := inventory.NewHandler(inventoryService)

	bookingService := booking.NewService(db, log.Named("booking"),
		booking.WithPublisher(publisher),
		booking.WithAudit(recorder),
		booking.WithMetrics(m),
		booking.WithReferenceAttempts(cfg.ReferenceMaxAttempts),
	)
	bookingHandler := booking.NewHandler(bookingService)

	feedHandler := roomfeed.NewHandler(hub, j, cfg.CORSAllowedOrigins, log.Named("roomfeed"))

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RequestLogger(log.Named("http")),
		middleware.ErrorLogger(log.Named("http")),
	)

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNHEALTHY", "database unreachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "ws_clients": hub.ClientCount()})
	})
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	{
		// websocket authenticates through the query token
		feedHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			bookingHandler.RegisterRoutes(protected)

			housekeeping := protected.Group("/")
			housekeeping.Use(middleware.RequireRole(housekeepingRoles...))
			inventoryHandler.RegisterRoutes(protected, housekeeping)
		}
	}

	return r
}
