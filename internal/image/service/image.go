package service

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/photogate-dev/photogate-backend/internal/image/biz"
	"github.com/photogate-dev/photogate-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// ListImages returns a page of persisted images, each with a freshly
// signed download URL.
func (s *ImageService) ListImages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	status := c.Query("status")

	req := &biz.ListImagesRequest{Page: page, Limit: limit, Status: status}
	images, total, err := s.images.List(c.Request.Context(), req)
	if err != nil {
		s.logger.Error("failed to list images", zap.Error(err))
		response.InternalError(c, "Failed to list images")
		return
	}

	items := make([]*ImageResponse, 0, len(images))
	for _, img := range images {
		url, err := s.images.DownloadURL(c.Request.Context(), img)
		if err != nil {
			s.logger.Warn("failed to sign download url",
				zap.String("image_id", img.ID), zap.Error(err))
		}
		items = append(items, toImageResponse(img, url))
	}

	pages := 0
	if req.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(req.Limit)))
	}

	c.JSON(http.StatusOK, &ListImagesResponse{
		Images: items,
		Pagination: PaginationBody{
			Page:  req.Page,
			Limit: req.Limit,
			Total: total,
			Pages: pages,
		},
	})
}

// GetImage returns one image by id
func (s *ImageService) GetImage(c *gin.Context) {
	id := c.Param("id")

	img, err := s.images.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, biz.ErrImageNotFound) {
			response.NotFound(c, "Image not found")
			return
		}
		s.logger.Error("failed to get image", zap.String("image_id", id), zap.Error(err))
		response.InternalError(c, "Failed to get image")
		return
	}

	url, err := s.images.DownloadURL(c.Request.Context(), img)
	if err != nil {
		s.logger.Warn("failed to sign download url",
			zap.String("image_id", img.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, &UploadResponse{Success: true, Image: toImageResponse(img, url)})
}

// DeleteImage removes the metadata record and blob for an image
func (s *ImageService) DeleteImage(c *gin.Context) {
	id := c.Param("id")

	if err := s.images.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, biz.ErrImageNotFound) {
			response.NotFound(c, "Image not found")
			return
		}
		s.logger.Error("failed to delete image", zap.String("image_id", id), zap.Error(err))
		response.InternalError(c, "Failed to delete image")
		return
	}

	c.JSON(http.StatusOK, &DeleteResponse{Success: true})
}
