package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quadra-hq/quadra/api/internal/commercial"
	"github.com/quadra-hq/quadra/api/internal/config"
	"github.com/quadra-hq/quadra/api/internal/enrich"
	"github.com/quadra-hq/quadra/api/internal/geosampa"
	"github.com/quadra-hq/quadra/api/internal/handlers"
	"github.com/quadra-hq/quadra/api/internal/logger"
	"github.com/quadra-hq/quadra/api/internal/middleware"
	"github.com/quadra-hq/quadra/api/internal/resolver"
	"github.com/quadra-hq/quadra/api/internal/session"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Quadra API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Query client against the GeoSampa geoserver
	client := geosampa.NewClient(cfg.GeoSampa.BaseURL, cfg.GeoSampa.Timeout, log)
	log.Info("GeoSampa client configured", map[string]interface{}{
		"base_url": cfg.GeoSampa.BaseURL,
		"timeout":  cfg.GeoSampa.Timeout.String(),
	})

	// Domain wiring: enrichment, click resolution, commercial state, and
	// the analyst session that ties them together
	enricher := enrich.NewService(client, log)
	res := resolver.New(client, enricher, log)
	engine := commercial.NewEngine(cfg.Session.StoreUnitPrice, cfg.Session.AptUnitPrice)
	identity := session.NewIdentityStore(cfg.Session.IdentityCache)
	sess := session.New(engine, res, identity, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(client, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize handlers
	lotHandler := handlers.NewLotHandler(enricher, sess)
	mapHandler := handlers.NewMapHandler(res, sess)
	selectionHandler := handlers.NewSelectionHandler(client, enricher, sess)
	commercialHandler := handlers.NewCommercialHandler(sess)
	reportHandler := handlers.NewReportHandler(sess)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		lots := v1.Group("/lots")
		{
			lots.GET("/lookup", lotHandler.Lookup)
			lots.POST("/batch", lotHandler.Batch)
		}

		v1.POST("/map/click", mapHandler.Click)
		v1.GET("/layers", mapHandler.Layers)
		v1.PUT("/layers", mapHandler.ToggleLayer)

		sel := v1.Group("/selection")
		{
			sel.GET("", selectionHandler.Get)
			sel.POST("/add", selectionHandler.Add)
			sel.DELETE("/:iptu", selectionHandler.Remove)
		}

		terms := v1.Group("/terms")
		{
			terms.GET("", commercialHandler.GetTotals)
			terms.GET("/:iptu", commercialHandler.GetTerms)
			terms.PUT("/:iptu", commercialHandler.UpdateTerms)
		}

		sessionGroup := v1.Group("/session")
		{
			sessionGroup.GET("/prices", commercialHandler.GetPrices)
			sessionGroup.PUT("/prices", commercialHandler.UpdatePrices)
			sessionGroup.GET("/identity", reportHandler.GetIdentity)
			sessionGroup.PUT("/identity", reportHandler.UpdateIdentity)
		}

		v1.POST("/report", reportHandler.Build)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
