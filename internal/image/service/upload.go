package service

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photogate-dev/photogate-backend/internal/image/biz"
	"github.com/photogate-dev/photogate-backend/internal/image/pipeline"
	apperrors "github.com/photogate-dev/photogate-backend/internal/pkg/errors"
	"github.com/photogate-dev/photogate-backend/internal/pkg/response"
	"go.uber.org/zap"
)

var allowedUploadMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/heic": true,
	"image/heif": true,
}

// Upload handles the single-shot multipart upload
func (s *ImageService) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.HandleError(c, apperrors.New(apperrors.ErrUploadNoFile))
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !allowedUploadMimeTypes[mimeType] {
		response.HandleError(c, apperrors.New(apperrors.ErrUploadInvalidMimeType, "got: "+mimeType))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.logger.Error("failed to open uploaded file", zap.Error(err))
		response.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("failed to read uploaded file", zap.Error(err))
		response.InternalError(c, "Failed to read uploaded file")
		return
	}

	result, err := s.uploads.ProcessUpload(c.Request.Context(), fileHeader.Filename, mimeType, data)
	if err != nil {
		s.handleUploadError(c, err)
		return
	}

	c.JSON(http.StatusCreated, &UploadResponse{
		Success: true,
		Image:   toImageResponse(result.Image, result.DownloadURL),
	})
}

func (s *ImageService) handleUploadError(c *gin.Context, err error) {
	var validationErr *biz.ValidationError
	var encodingErr *pipeline.UnsupportedEncodingError
	var storageErr *biz.StorageError

	switch {
	case errors.As(err, &validationErr):
		// The full violation list is the contract; it cannot be folded
		// into a single detail string.
		response.ErrorWithDetails(c, http.StatusBadRequest, "Image validation failed", validationErr.Violations)
	case errors.Is(err, biz.ErrDuplicateImage):
		response.HandleError(c, apperrors.New(apperrors.ErrUploadDuplicateImage))
	case errors.As(err, &encodingErr):
		s.logger.Warn("upload encoding failed", zap.Error(err))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrUploadEncodingFailed))
	case errors.As(err, &storageErr):
		s.logger.Error("upload storage failure", zap.String("op", storageErr.Op), zap.Error(err))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrStorageBlobFailed))
	default:
		s.logger.Error("upload failed", zap.Error(err))
		response.HandleError(c, apperrors.Wrap(err, apperrors.ErrUploadProcessingFailed))
	}
}
