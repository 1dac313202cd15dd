package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidehq/tide/internal/config"
	"github.com/tidehq/tide/internal/database"
	"github.com/tidehq/tide/internal/logger"
	"github.com/tidehq/tide/internal/metrics"
	postgresrepo "github.com/tidehq/tide/internal/repository/postgres"
	"github.com/tidehq/tide/internal/service"
	"github.com/tidehq/tide/internal/storage"
	"github.com/tidehq/tide/internal/transport/http/handlers"
	"github.com/tidehq/tide/internal/transport/http/middleware"
	"github.com/tidehq/tide/internal/transport/ws"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	// Database
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatal("database connect", zap.Error(err))
	}
	defer pool.Close()
	log.Info("connected to database")

	// Repositories
	messageRepo := postgresrepo.NewMessageRepo(pool)
	reactionRepo := postgresrepo.NewReactionRepo(pool)
	memberRepo := postgresrepo.NewMemberRepo(pool)

	// Services
	memberService := service.NewMemberService(memberRepo)
	messageService := service.NewMessageService(messageRepo)
	reactionService := service.NewReactionService(reactionRepo, messageRepo)
	threadService := service.NewThreadService(messageRepo)
	feedService := service.NewFeedService(messageRepo, memberService, reactionService, threadService, log)

	// Live fanout: local hub, bridged over Redis when configured.
	hub := ws.NewHub(log)
	go hub.Run()

	var sink ws.EventSink = ws.NewHubSink(hub)
	if cfg.RedisURL != "" {
		bridge, err := ws.NewBridge(cfg.RedisURL, cfg.EventChannel, hub, log)
		if err != nil {
			log.Fatal("redis bridge", zap.Error(err))
		}
		defer bridge.Close()
		go func() {
			if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("redis bridge stopped", zap.Error(err))
			}
		}()
		sink = bridge
		log.Info("event bridge enabled", zap.String("channel", cfg.EventChannel))
	}

	notifier := ws.NewNotifier(sink, log)
	messageService.SetNotifier(notifier)
	reactionService.SetNotifier(notifier)

	// Uploads
	uploader, err := storage.NewUploader(cfg, log)
	if err != nil {
		log.Fatal("upload storage", zap.Error(err))
	}

	// Handlers
	feedHandler := handlers.NewFeedHandler(feedService, threadService, log)
	messageHandler := handlers.NewMessageHandler(messageService, memberService, log)
	reactionHandler := handlers.NewReactionHandler(reactionService, memberService, log)
	uploadHandler := handlers.NewUploadHandler(uploader, memberService, log)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret, log))

	// Protected - Feed
	mux.Handle("GET /api/v1/feed", auth(http.HandlerFunc(feedHandler.Page)))
	mux.Handle("GET /api/v1/messages/{id}/thread", auth(http.HandlerFunc(feedHandler.Thread)))

	// Protected - Messages
	mux.Handle("POST /api/v1/messages", auth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("PATCH /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Edit)))
	mux.Handle("DELETE /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Delete)))

	// Protected - Reactions
	mux.Handle("POST /api/v1/messages/{id}/reactions", auth(http.HandlerFunc(reactionHandler.Toggle)))
	mux.Handle("GET /api/v1/messages/{id}/reactions", auth(http.HandlerFunc(reactionHandler.Summaries)))

	// Protected - Uploads
	mux.Handle("POST /api/v1/uploads", auth(http.HandlerFunc(uploadHandler.Generate)))

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Info("starting server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, middleware.CORS(mux)); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}
