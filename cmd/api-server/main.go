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

	"aniguess/internal/auth"
	"aniguess/internal/catalog"
	"aniguess/internal/game"
	"aniguess/internal/live"
	"aniguess/internal/mediaproxy"
	"aniguess/internal/sampler"
	"aniguess/internal/session"
	"aniguess/internal/stats"
	"aniguess/pkg/database"
	"aniguess/pkg/utils"

	appcfg "aniguess/pkg/config"
)

func main() {
	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	cfg, err := appcfg.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Live event hub for spectating clients
	hub := live.NewHub()
	router.GET("/ws", live.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	// Catalog clients
	jikan := catalog.NewJikan()
	anilist := catalog.NewAniList()
	shikimori := catalog.NewShikimori()
	themes := catalog.NewAnimeThemes()
	ids := catalog.NewIDs()
	if !ids.Configured() {
		log.Println("[main] ANIGUESS_IDS_MOE_KEY not set, screenshot rounds will fail id translation")
	}
	cache := catalog.NewCache(db)

	smp := sampler.New(jikan, anilist, ids, shikimori, themes, cfg)

	// Session store with idle sweep
	store := session.New[game.Session](time.Duration(cfg.Global.SessionTTLMins) * time.Minute)
	store.StartSweeper(5 * time.Minute)
	defer store.Close()

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"sessions":   store.Len(),
			"ws_clients": hub.Stats().Clients,
		})
	})

	router.GET("/config", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"difficulties": appcfg.Difficulties,
			"games": gin.H{
				"anidle": gin.H{
					"max_guesses": cfg.Games.Anidle.MaxGuesses,
					"hint_costs":  cfg.Games.Anidle.HintCosts,
				},
				"screenshot": gin.H{"stages": cfg.Games.Screenshot.Stages},
				"character":  gin.H{"cards": cfg.Games.Character.Cards},
			},
		})
	})

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

	// Stats (protected)
	statsRepo := stats.NewRepo(db)
	statsHandler := stats.NewHandler(statsRepo)
	users := router.Group("/users")
	users.Use(auth.Middleware(tokenSvc))
	statsHandler.RegisterRoutes(users)

	// Games: anonymous play allowed, stats recorded when a token is sent
	gameHandler := game.NewHandler(store, smp, jikan, anilist, cache, cfg)
	gameHandler.Events = hub
	gameHandler.Stats = statsRepo
	games := router.Group("/games")
	games.Use(auth.OptionalMiddleware(tokenSvc))
	gameHandler.RegisterRoutes(games)

	// Media proxy for browser clients
	proxyHandler := mediaproxy.NewHandler()
	proxyHandler.RegisterRoutes(router.Group("/media"))

	addr := ":8080"
	if p := os.Getenv("ANIGUESS_PORT"); p != "" {
		addr = ":" + p
	}
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", addr)
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
