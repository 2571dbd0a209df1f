package util

import (
	"context"
	"os"
	"strconv"
	"time"

	"electron-shop/api/internal/common"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	Port          string `validate:"required,numeric"`
	AppEnv        string `validate:"required,oneof=development test production"`
	MongoURI      string `validate:"required"`
	MongoDatabase string `validate:"required"`
	RedisURL      string
	JWTSecret     string `validate:"required"`
	SiteName      string

	StorageDriver string `validate:"required,oneof=local memory cloudinary s3"`
	UploadDir     string `validate:"required_if=StorageDriver local"`
	FileDomain    string `validate:"required_if=StorageDriver local"`

	CloudinaryCloudName    string `validate:"required_if=StorageDriver cloudinary"`
	CloudinaryAPIKey       string `validate:"required_if=StorageDriver cloudinary"`
	CloudinaryAPISecret    string `validate:"required_if=StorageDriver cloudinary"`
	CloudinaryUploadFolder string

	AWSRegion          string
	AWSEndpoint        string
	AWSS3Bucket        string `validate:"required_if=StorageDriver s3"`
	AWSS3Prefix        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	RateLimit      int `validate:"gte=1"`
	CleanupWorkers int `validate:"gte=1"`
	CacheTTL       time.Duration
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LoadEnvFor loads .env when present and returns the variable v.
func LoadEnvFor(v string) string {
	_ = godotenv.Load()
	return os.Getenv(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Errorf("%s must be a number, got %q", key, raw)
	}
	return n, nil
}

// LoadConfig reads the process configuration from the environment, loading
// .env first when one exists.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		LogInfo("no .env file found, using environment variables")
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
		if os.Getenv("GIN_MODE") == "release" {
			env = "production"
		}
	}

	cfg := Config{
		Port:                   envOr("PORT", "8080"),
		AppEnv:                 env,
		MongoURI:               os.Getenv("MONGO_URI"),
		MongoDatabase:          envOr("MONGO_DATABASE", "electron_shop"),
		RedisURL:               os.Getenv("REDIS_URL"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		SiteName:               envOr("SITE_NAME", "Electron Shop"),
		StorageDriver:          envOr("STORAGE_DRIVER", "local"),
		UploadDir:              envOr("UPLOAD_DIR", "public/uploads"),
		FileDomain:             envOr("FILE_DOMAIN", "http://localhost:8080"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUDNAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: envOr("CLOUDINARY_UPLOAD_FOLDER", "electron-shop"),
		AWSRegion:              envOr("AWS_REGION", "us-east-1"),
		AWSEndpoint:            os.Getenv("AWS_ENDPOINT"),
		AWSS3Bucket:            os.Getenv("AWS_S3_BUCKET"),
		AWSS3Prefix:            envOr("AWS_S3_PREFIX", "catalog/"),
		AWSAccessKeyID:         os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:     os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}

	var err error
	if cfg.RateLimit, err = envInt("MAX_REQUEST_RATE_LIMIT", 100); err != nil {
		return Config{}, err
	}
	if cfg.CleanupWorkers, err = envInt("CLEANUP_WORKERS", 4); err != nil {
		return Config{}, err
	}
	ttl, err := envInt("CACHE_TTL_SECONDS", 300)
	if err != nil {
		return Config{}, err
	}
	cfg.CacheTTL = time.Duration(ttl) * time.Second

	if err := common.Validate.Struct(cfg); err != nil {
		return Config{}, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// ConnectDB opens and pings a MongoDB client.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	LogInfo("starting MongoDB connection..")
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "ping mongo")
	}
	LogInfo("MongoDB connection successful")
	return client, nil
}

// ConnectRedis parses url and returns a client after a successful ping.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}
	LogInfo("redis connection successful")
	return client, nil
}
