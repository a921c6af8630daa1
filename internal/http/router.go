package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/garra-os/backend/internal/auth"
	"github.com/garra-os/backend/internal/config"
	"github.com/garra-os/backend/internal/http/handlers"
	"github.com/garra-os/backend/internal/http/middleware"
	"github.com/garra-os/backend/internal/maplink"
	"github.com/garra-os/backend/internal/metrics"
	"github.com/garra-os/backend/internal/photos"
	"github.com/garra-os/backend/internal/session"
	"github.com/garra-os/backend/internal/store"

	_ "github.com/garra-os/backend/docs"
)

func Router(cfg config.Config, st *store.Store, ctrl *session.Controller, authSvc *auth.Service, reg *photos.Registry, m *metrics.Metrics, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     st,
		Session:   ctrl,
		Auth:      authSvc,
		Photos:    reg,
		Links:     maplink.Builder{BaseURL: cfg.MapBaseURL},
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := r.Group("/api")
	api.POST("/session/login", h.Login)

	authed := api.Group("")
	authed.Use(middleware.Bearer(authSvc))
	{
		authed.GET("/session", h.SessionState)
		authed.POST("/session/select/:id", h.SelectOrder)
		authed.POST("/session/back", h.Back)
		authed.POST("/session/manager", h.OpenManager)
		authed.POST("/session/start", h.StartService)
		authed.POST("/session/photos", h.StagePhoto)
		authed.GET("/session/photos/:id", h.ServePhoto)
		authed.DELETE("/session/photos/:id", h.DropPhoto)
		authed.POST("/session/finish", h.FinishExecution)
		authed.POST("/session/predictive", h.CompletePredictive)
		authed.POST("/session/home", h.GoHome)

		authed.GET("/technician", h.Technician)

		authed.GET("/orders", h.OrdersList)
		authed.GET("/orders/:id", h.OrderDetails)
		authed.GET("/orders/:id/map-link", h.OrderMapLink)
		authed.POST("/orders", h.OrderCreate)
		authed.PUT("/orders/:id", h.OrderUpdate)
		authed.PATCH("/orders/:id", h.OrderPatch)
		authed.DELETE("/orders/:id", h.OrderDelete)
		authed.POST("/orders/:id/clear-execution", h.OrderClearExecution)
		authed.DELETE("/orders/:id/photos", h.OrderRemovePhoto)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
