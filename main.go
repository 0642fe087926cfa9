package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eshop/cache"
	"eshop/config"
	"eshop/controller"
	"eshop/database"
	"eshop/logger"
	"eshop/middlewares"
	"eshop/route"
	"eshop/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		log.Println(err)
		return err
	}
	l := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			slog.Warn("mongo disconnect", "error", err)
		}
	}()

	db := client.Database(cfg.DBName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	users := database.NewUserStore(db)

	handler := &controller.Handler{
		Products:   database.NewProductStore(db),
		Categories: database.NewCategoryStore(db),
		Users:      users,
		Secret:     cfg.Secret,
		TokenTTL:   cfg.TokenTTL,
	}

	var uploadDir string
	switch cfg.StorageDriver {
	case config.StorageS3:
		s3Store, err := storage.NewS3Store(ctx, cfg.BucketName, cfg.AWSRegion)
		if err != nil {
			return err
		}
		handler.Images = s3Store
	default:
		disk, err := storage.NewDiskStore(cfg.UploadDir)
		if err != nil {
			return err
		}
		handler.Images = disk
		uploadDir = disk.Dir()
	}

	var policy middlewares.RevocationPolicy = middlewares.AdminOnlyPolicy{}
	if cfg.RevocationPolicy == config.PolicyUserExists {
		var lookup middlewares.UserLookup = users
		if cfg.RedisURL != "" {
			rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
			if err != nil {
				return err
			}
			defer rdb.Close()
			userCache := cache.NewUserCache(rdb, users, cfg.UserCacheTTL)
			lookup = userCache
			handler.Forgetter = userCache
		}
		policy = middlewares.UserExistsPolicy{Users: lookup}
	}
	slog.Info("revocation policy", "policy", cfg.RevocationPolicy)

	gate := middlewares.NewGate(cfg.Secret, middlewares.DefaultAllowList(cfg.APIURL), policy)

	var limiter *middlewares.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middlewares.NewRateLimiter(cfg.RateLimit, time.Minute)
		defer limiter.Stop()
	}

	router := route.New(handler, gate, route.Options{
		APIURL:      cfg.APIURL,
		UploadDir:   uploadDir,
		Origins:     cfg.Origins(),
		RateLimiter: limiter,
		Logger:      l,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "api", cfg.APIURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
