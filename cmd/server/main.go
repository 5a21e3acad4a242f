package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomchat/internal/config"
	"roomchat/internal/coordinator"
	"roomchat/internal/database"
	"roomchat/internal/router"
	"roomchat/internal/store"
	"roomchat/internal/websocket"
	"roomchat/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logg := logger.New(cfg.Log.Level)
	logg.Info("Starting room chat server")

	redisClient, err := database.NewRedisConnection(&cfg.Redis, logg)
	if err != nil {
		logg.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	st := store.NewRedisStore(redisClient, logg)

	// Seeding the public room list must succeed; there is no usable
	// room model without it.
	ctx := context.Background()
	if err := store.SeedPublicRooms(ctx, st, cfg.Chat.PublicRooms); err != nil {
		logg.Error("Failed to seed public rooms", "error", err)
		os.Exit(1)
	}
	logg.Info("Public rooms seeded", "rooms", cfg.Chat.PublicRooms)

	registry := coordinator.NewRegistry()
	coord := coordinator.New(st, registry, logg)
	dispatcher := websocket.NewDispatcher(coord, logg)

	hub := websocket.NewHub(coord, dispatcher, logg)
	go hub.Run()

	r := router.NewRouter(hub, logg)
	r.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error("Server forced to shutdown", "error", err)
	}

	logg.Info("Server stopped")
}
