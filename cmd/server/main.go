package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/photogate-dev/photogate-backend/internal/conf"
	"github.com/photogate-dev/photogate-backend/internal/data"
	"github.com/photogate-dev/photogate-backend/internal/image/biz"
	imagedata "github.com/photogate-dev/photogate-backend/internal/image/data"
	"github.com/photogate-dev/photogate-backend/internal/image/pipeline"
	"github.com/photogate-dev/photogate-backend/internal/image/service"
	"github.com/photogate-dev/photogate-backend/internal/pkg/logger"
	"github.com/photogate-dev/photogate-backend/internal/pkg/workerpool"
	"github.com/photogate-dev/photogate-backend/internal/server"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(&config.Log); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// Initialize data layer
	ctx := context.Background()
	d, cleanup, err := data.NewData(ctx, config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Initialize worker pool for the analysis stages
	pool, err := workerpool.New(&config.Pool, log.Logger)
	if err != nil {
		log.Fatal("failed to initialize worker pool", zap.Error(err))
	}
	defer pool.Release()

	// Initialize repositories and stores
	imageRepo := imagedata.NewImageRepo(d.DB.DB)
	sessionRepo := imagedata.NewSessionRepo(d.DB.DB)
	blobStore := imagedata.NewBlobStore(d.MinIO)
	chunkStore := imagedata.NewMemoryChunkStore(log)
	defer chunkStore.Close()

	var detector pipeline.FaceDetector
	if d.Rekognition != nil {
		detector = imagedata.NewFaceDetector(d.Rekognition)
	}

	// Initialize the validation pipeline and use cases
	validator := pipeline.NewValidator(&config.Validation, detector, pool, log)
	uploadUseCase := biz.NewUploadUseCase(imageRepo, blobStore, validator, log)
	sessionUseCase := biz.NewSessionUseCase(sessionRepo, chunkStore, uploadUseCase, log)
	imageUseCase := biz.NewImageUseCase(imageRepo, blobStore, log)

	// Initialize services and HTTP server
	imageService := service.NewImageService(uploadUseCase, sessionUseCase, imageUseCase, log)
	httpServer := server.NewHTTPServer(config, log.Logger, d, imageService)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
