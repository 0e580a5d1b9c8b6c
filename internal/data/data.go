package data

import (
	"context"
	"fmt"

	"github.com/photogate-dev/photogate-backend/internal/conf"
	imagedata "github.com/photogate-dev/photogate-backend/internal/image/data"
	"github.com/photogate-dev/photogate-backend/internal/pkg/database"
	"github.com/photogate-dev/photogate-backend/internal/pkg/logger"
	"github.com/photogate-dev/photogate-backend/internal/pkg/minio"
	"github.com/photogate-dev/photogate-backend/internal/pkg/rekognition"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Data bundles every external collaborator the application talks to.
type Data struct {
	DB          *database.DB
	Redis       *redis.Client
	MinIO       *minio.Client
	Rekognition *rekognition.Client
	Logger      *logger.Logger
}

func NewData(ctx context.Context, config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := db.AutoMigrate(&imagedata.ImagePO{}, &imagedata.UploadSessionPO{}); err != nil {
		return nil, nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr(),
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	minioClient, err := minio.NewClient(ctx, &config.MinIO, log.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init minio: %w", err)
	}

	// Face detection degrades to a no-face policy result when the
	// recognition service is unavailable, so startup tolerates it.
	rekClient, err := rekognition.NewClient(ctx, &config.Rekognition, log.Logger)
	if err != nil {
		log.Warn("failed to init rekognition (face checks disabled)", zap.Error(err))
		rekClient = nil
	}

	d := &Data{
		DB:          db,
		Redis:       redisClient,
		MinIO:       minioClient,
		Rekognition: rekClient,
		Logger:      log,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
		if err := redisClient.Close(); err != nil {
			log.Warn("failed to close redis", zap.Error(err))
		}
	}

	return d, cleanup, nil
}
