package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/samber/do"
	"github.com/serroba/albumkit/internal/container"
	"github.com/serroba/albumkit/internal/messaging"
	"go.uber.org/zap"
)

func main() {
	opts := &container.Options{
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		ConsumerGroup:  getEnv("CONSUMER_GROUP", "albumkit"),
		DigestWindowMs: getEnvInt("DIGEST_WINDOW_MS", 2000),
	}

	injector := do.New()
	container.ConsumerPackages(injector, opts)

	logger := do.MustInvoke[*zap.Logger](injector)
	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("digest consumer running", zap.String("group", opts.ConsumerGroup))

	<-ctx.Done()

	// Stops the consumers first, then flushes pending digests.
	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("consumer stopped")
	_ = logger.Sync()
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}

	return n
}
