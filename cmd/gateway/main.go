package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/graphops/graph-subscriptions/internal/chain"
	"github.com/graphops/graph-subscriptions/internal/config"
	"github.com/graphops/graph-subscriptions/internal/gate"
	"github.com/graphops/graph-subscriptions/internal/subscription"
	"github.com/graphops/graph-subscriptions/internal/ticket"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync() //nolint:errcheck

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Redis ─────────────────────────────────────────────────────────────────
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis ping failed", zap.Error(err))
	}

	// ── Chain client (subscriptions contract binding) ─────────────────────────
	onchain, err := chain.NewClient(cfg)
	if err != nil {
		log.Fatal("chain client init failed", zap.Error(err))
	}

	// ── Subscription cache (redis in front of the contract) ───────────────────
	ttl := time.Duration(cfg.Cache.SubscriptionTTLSec) * time.Second
	subs := subscription.NewCache(rdb, onchain, ttl)

	contractAddr, err := ticket.ParseAddress(cfg.Chain.ContractAddress)
	if err != nil {
		log.Fatal("invalid SUBSCRIPTIONS_CONTRACT", zap.Error(err))
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api", gate.Middleware(onchain.ChainID(), contractAddr, subs, log))
	api.GET("/subscription", func(c *gin.Context) {
		payload := c.MustGet(gate.CtxPayload).(*ticket.Payload)
		sub := c.MustGet(gate.CtxSubscription).(subscription.Subscription)
		c.JSON(http.StatusOK, gin.H{
			"user":         c.GetString(gate.CtxUser),
			"subscription": sub,
			"ticket":       payload,
		})
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	log.Info("shutdown complete")
}
