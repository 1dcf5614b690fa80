package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/randomPoison/hangry-river-horse/internal/broadcast"
	"github.com/randomPoison/hangry-river-horse/internal/configs"
	"github.com/randomPoison/hangry-river-horse/internal/game"
	"github.com/randomPoison/hangry-river-horse/internal/logger"
	"github.com/randomPoison/hangry-river-horse/internal/migrations"
	"github.com/randomPoison/hangry-river-horse/internal/storage"
	"github.com/rs/zerolog/log"
)

// CreateServer builds the router with the origin guard and CORS. An empty
// allow list lets every origin through.
func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	r.Use(gin.Recovery(), requestLogger())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	r.Use(cors.New(corsConfig))

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		log.Debug().
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", ctx.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", ctx.ClientIP()).
			Msg("request")
	}
}

func RegisterRoutes(r *gin.Engine, h *game.GameHandler, staticDir string) {
	{
		api := r.Group("/api")
		api.GET("/register-player", h.RegisterPlayerHandler)
		api.POST("/feed-me", h.FeedHandler)
		api.GET("/players", h.ListPlayersHandler)
		api.GET("/player/:id", h.GetPlayerHandler)
		api.GET("/nose-goes", h.NoseGoesStatusHandler)
		api.POST("/nose-goes/:id", h.NoseGoesHandler)
		api.GET("/high-scores", h.HighScoresHandler)
	}
	{
		ws := r.Group("/ws")
		ws.GET("/host", h.HostSocketHandler)
		ws.GET("/player", h.PlayerSocketHandler)
	}

	if staticDir == "" {
		return
	}
	r.StaticFile("/", filepath.Join(staticDir, "client.html"))
	r.StaticFile("/host", filepath.Join(staticDir, "host.html"))
	files := http.Dir(staticDir)
	r.NoRoute(func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "not-found"})
			return
		}
		ctx.FileFromFS(ctx.Request.URL.Path, files)
	})
}

func main() {
	envs, err := configs.Load()
	if err != nil {
		logger.Setup("console", false)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(envs.LogFormat, envs.Debug)
	if !envs.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hosts := broadcast.New[game.HostBroadcast]("host", envs.SubscriberBuffer)
	clients := broadcast.New[game.PlayerBroadcast]("player", envs.SubscriberBuffer)

	cfg := envs.Game()
	g := game.NewGame(cfg, game.NewIdGenerator(), game.NewRandomSource(), hosts, clients, time.Now())

	wg := sync.WaitGroup{}

	// The archive is optional, without Postgres the game simply forgets
	// finished hippos.
	var archive game.ScoreArchive
	var pgRepo *storage.PostgresRepo
	if envs.PostgresURL != "" {
		if err := migrations.Migrate(envs.PostgresURL); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate")
		}
		pgRepo, err = storage.NewPostgresRepo(ctx, envs.PostgresURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		archive = pgRepo
		archiver := game.NewArchiver(pgRepo, hosts, g)
		wg.Go(func() { archiver.Run(ctx) })
	}

	tickerGen := game.NewTickerGen()
	loop := game.NewGameLoop(g, &tickerGen, cfg.TickInterval)
	loopStarted := make(chan struct{})
	wg.Go(func() { loop.Run(ctx, loopStarted) })
	<-loopStarted

	r := CreateServer(envs.AllowedOrigins)
	RegisterRoutes(r, game.NewGameHandler(g, archive, hosts, clients, envs.AllowedOrigins), envs.StaticDir)

	srv := &http.Server{Addr: envs.Addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Str("addr", envs.Addr).Msg("server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	<-sigCh
	log.Info().Msg("SIGTERM or SIGINT received, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	cancel()
	hosts.Close()
	clients.Close()
	wg.Wait()

	if pgRepo != nil {
		pgRepo.Close()
	}
	log.Info().Msg("shut down")
}
