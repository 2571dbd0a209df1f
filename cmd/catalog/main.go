package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"electron-shop/api/internal/common"
	"electron-shop/api/internal/container"
	"electron-shop/api/internal/routers"
	"electron-shop/api/pkg/cache"
	"electron-shop/api/pkg/controllers"
	"electron-shop/api/pkg/lifecycle"
	"electron-shop/api/pkg/repository"
	"electron-shop/api/pkg/services"
	"electron-shop/api/pkg/storage"
	"electron-shop/api/pkg/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func main() {
	cfg, err := util.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := util.InitLogger(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	util.ExposeErrorDetails = !cfg.IsProduction()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := util.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		zap.L().Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			util.LogError("failed to disconnect MongoDB", err)
		}
	}()
	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		zap.L().Fatal("failed to ensure indexes", zap.Error(err))
	}

	var (
		redisClient *redis.Client
		readCache   cache.Cache = cache.Nop{}
	)
	if cfg.RedisURL != "" {
		redisClient, err = util.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			util.LogWarning("redis unavailable, caching and shared rate limits disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			readCache = cache.NewCatalog(redisClient, cfg.CacheTTL)
		}
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		zap.L().Fatal("failed to initialise storage", zap.Error(err))
	}
	zap.L().Info("storage ready", zap.String("driver", cfg.StorageDriver))

	janitor := lifecycle.NewJanitor(store, cfg.CleanupWorkers, cfg.CleanupWorkers*common.CLEANUP_QUEUE_PER_WORKER)
	janitor.Start()
	defer janitor.Stop()

	serviceContainer := container.NewServiceContainer(services.Dependencies{
		Categories:    repository.NewCategoryRepository(db),
		Subcategories: repository.NewSubcategoryRepository(db),
		Products:      repository.NewProductRepository(db),
		Tx:            repository.NewMongoTransactor(client),
		Storage:       store,
		Cleaner:       janitor,
		Cache:         readCache,
		SiteName:      cfg.SiteName,
	})

	checks := map[string]controllers.HealthCheck{
		"mongo": func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	opts := routers.Options{
		JWTSecret: cfg.JWTSecret,
		Redis:     redisClient,
		RateLimit: cfg.RateLimit,
		Checks:    checks,
	}
	if cfg.StorageDriver == "local" {
		opts.UploadDir = cfg.UploadDir
	}
	router := routers.InitRoute(serviceContainer, opts)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		zap.L().Info("catalog api starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		util.LogError("server forced to shutdown", err)
	}
	zap.L().Info("server exiting")
}

func newStorage(ctx context.Context, cfg util.Config) (storage.FileStorage, error) {
	switch cfg.StorageDriver {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "cloudinary":
		store, err := storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Storage(client, cfg.AWSS3Bucket, cfg.AWSS3Prefix, cfg.AWSEndpoint), nil
	default:
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create upload dir")
		}
		return storage.NewLocalStorage(cfg.UploadDir, cfg.FileDomain), nil
	}
}

func newS3Client(ctx context.Context, cfg util.Config) (*s3.Client, error) {
	cfgOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" || cfg.AWSSecretAccessKey != "" {
		cfgOpts = append(cfgOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpoint != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
	}), nil
}
