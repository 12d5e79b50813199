package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clientdesk/clientdesk/pkg/apiserver/handlers"
	"github.com/clientdesk/clientdesk/pkg/apiserver/middleware"
	"github.com/clientdesk/clientdesk/pkg/config"
	"github.com/clientdesk/clientdesk/pkg/eventbus"
	"github.com/clientdesk/clientdesk/pkg/store/postgres"
	redisclient "github.com/clientdesk/clientdesk/pkg/store/redis"
)

type Server struct {
	router *gin.Engine
	db     *postgres.Store
	redis  *redisclient.Client
	cfg    *config.Config
	logger *zap.Logger
	bus    *eventbus.Bus
}

func NewServer(db *postgres.Store, redis *redisclient.Client, cfg *config.Config, logger *zap.Logger) *Server {
	s := &Server{
		db:     db,
		redis:  redis,
		cfg:    cfg,
		logger: logger,
	}
	if redis != nil {
		s.bus = eventbus.NewBus(redis.Client())
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.Use(middleware.Auth(s.cfg.Auth))

		clientHandler := handlers.NewClientHandler(s.db, s.logger)
		api.GET("/clients", clientHandler.List)
		api.POST("/clients", clientHandler.Create)
		api.GET("/clients/:id", clientHandler.Get)
		api.PUT("/clients/:id", clientHandler.Update)
		api.DELETE("/clients/:id", clientHandler.Delete)

		contactHandler := handlers.NewContactHandler(s.db, s.logger)
		api.GET("/clients/:id/contacts", contactHandler.ListByClient)
		api.POST("/clients/:id/contacts", contactHandler.Create)
		api.PUT("/contacts/:id", contactHandler.Update)
		api.DELETE("/contacts/:id", contactHandler.Delete)
		api.POST("/contacts/:id/primary", contactHandler.MakePrimary)

		projectHandler := handlers.NewProjectHandler(s.db, s.logger)
		api.GET("/projects", projectHandler.List)
		api.POST("/projects", projectHandler.Create)
		api.GET("/projects/:id", projectHandler.Get)
		api.PUT("/projects/:id", projectHandler.Update)
		api.DELETE("/projects/:id", projectHandler.Delete)
		api.GET("/projects/:id/stats", projectHandler.Stats)

		timeEntryHandler := handlers.NewTimeEntryHandler(s.db, s.logger, s.bus)
		api.GET("/projects/:id/time-entries", timeEntryHandler.ListByProject)
		api.POST("/projects/:id/time-entries", timeEntryHandler.Create)
		api.PUT("/time-entries/:id", timeEntryHandler.Update)
		api.DELETE("/time-entries/:id", timeEntryHandler.Delete)
		api.POST("/time-entries/:id/invoiced", timeEntryHandler.MarkInvoiced)

		quoteHandler := handlers.NewQuoteHandler(s.db, s.cfg.Quote, s.logger, s.bus)
		api.GET("/clients/:id/quotes", quoteHandler.ListByClient)
		api.GET("/quotes", quoteHandler.List)
		api.POST("/quotes", quoteHandler.Create)
		api.GET("/quotes/:id", quoteHandler.Get)
		api.PUT("/quotes/:id", quoteHandler.Update)
		api.DELETE("/quotes/:id", quoteHandler.Delete)
		api.POST("/quotes/:id/items", quoteHandler.AddItem)
		api.PUT("/quotes/:id/items/:item_id", quoteHandler.UpdateItem)
		api.DELETE("/quotes/:id/items/:item_id", quoteHandler.DeleteItem)
		api.POST("/quotes/:id/send", quoteHandler.Send)
		api.POST("/quotes/:id/accept", quoteHandler.Accept)
		api.POST("/quotes/:id/reject", quoteHandler.Reject)
		api.POST("/quotes/:id/convert", quoteHandler.Convert)

		dashboardHandler := handlers.NewDashboardHandler(s.db, s.redis, s.logger)
		api.GET("/dashboard/billable-hours", dashboardHandler.BillableHours)
	}

	s.router = r
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
