package service

import (
	"github.com/gin-gonic/gin"
	"github.com/photogate-dev/photogate-backend/internal/image/biz"
	"github.com/photogate-dev/photogate-backend/internal/pkg/logger"
)

// ImageService exposes the upload pipeline and image queries over HTTP
type ImageService struct {
	uploads  *biz.UploadUseCase
	sessions *biz.SessionUseCase
	images   *biz.ImageUseCase
	logger   *logger.Logger
}

func NewImageService(uploads *biz.UploadUseCase, sessions *biz.SessionUseCase, images *biz.ImageUseCase, log *logger.Logger) *ImageService {
	return &ImageService{
		uploads:  uploads,
		sessions: sessions,
		images:   images,
		logger:   log,
	}
}

func (s *ImageService) RegisterRoutes(r *gin.RouterGroup) {
	upload := r.Group("/upload")
	{
		upload.POST("", s.Upload)
		upload.POST("/chunk", s.UploadChunk)
	}

	images := r.Group("/images")
	{
		images.GET("", s.ListImages)
		images.GET("/:id", s.GetImage)
		images.DELETE("/:id", s.DeleteImage)
	}
}
