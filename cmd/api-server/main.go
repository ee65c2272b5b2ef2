package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"libhub/internal/auth"
	"libhub/internal/favorites"
	"libhub/internal/ingest"
	"libhub/internal/registry"
	synchub "libhub/internal/sync"
	"libhub/pkg/database"
	"libhub/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.Clients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.Clients,
		})
	})

	srcCfg := utils.LoadSourceConfig()
	books := ingest.NewData4LibClient(srcCfg.Data4LibBaseURL, srcCfg.Data4LibAuthKey)

	// Libraries and proximity search (public)
	libRepo := registry.NewRepo(db)
	search := registry.NewSearchService(libRepo)
	libHandler := registry.NewHandler(libRepo, search, books)
	libHandler.RegisterRoutes(router.Group("/"))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Protected routes
	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(tokenSvc))

	protected.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
		})
	})

	favRepo := favorites.NewRepo(db)
	favHandler := favorites.NewHandler(favRepo, libRepo)
	favHandler.RegisterRoutes(protected)

	// Admin: trigger ingestion from the running server. The run happens
	// in the background; progress goes out over /ws.
	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware(tokenSvc))
	admin.POST("/ingest", func(c *gin.Context) {
		pipeline := ingest.NewPipeline(libRepo, hub, srcCfg.PageSize)
		nlss := ingest.NewNLSSClient(srcCfg.NLSSBaseURL)
		d4l := ingest.NewData4LibClient(srcCfg.Data4LibBaseURL, srcCfg.Data4LibAuthKey)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			if _, err := pipeline.IngestPrimary(ctx, nlss); err != nil {
				log.Printf("[ingest] primary run failed: %v", err)
				return
			}
			if _, _, err := pipeline.IngestSecondaryAndReconcile(ctx, d4l); err != nil {
				log.Printf("[ingest] secondary run failed: %v", err)
			}
		}()

		c.JSON(http.StatusAccepted, gin.H{"message": "ingestion started"})
	})

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Println("HTTP API server listening on :8080")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
