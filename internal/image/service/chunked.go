package service

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photogate-dev/photogate-backend/internal/image/biz"
	apperrors "github.com/photogate-dev/photogate-backend/internal/pkg/errors"
	"github.com/photogate-dev/photogate-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// ChunkUploadRequest carries one chunk of a chunked upload. SessionID is
// empty on the request that opens the session. ChunkIndex is a pointer so
// binding can tell index zero from a missing field.
type ChunkUploadRequest struct {
	SessionID   string `json:"sessionId"`
	Filename    string `json:"filename" binding:"required"`
	MimeType    string `json:"mimeType" binding:"required"`
	TotalChunks int    `json:"totalChunks" binding:"required,min=1"`
	ChunkIndex  *int   `json:"chunkIndex" binding:"required"`
	ChunkData   string `json:"chunkData" binding:"required"`
}

// UploadChunk accepts one chunk; the chunk that completes the set gets the
// full pipeline result back, everyone else gets progress.
func (s *ImageService) UploadChunk(c *gin.Context) {
	var req ChunkUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid chunk request: "+err.Error())
		return
	}

	if !allowedUploadMimeTypes[req.MimeType] {
		response.HandleError(c, apperrors.New(apperrors.ErrUploadInvalidMimeType, "got: "+req.MimeType))
		return
	}

	chunk, err := base64.StdEncoding.DecodeString(req.ChunkData)
	if err != nil {
		response.BadRequest(c, "Invalid base64 chunk data")
		return
	}

	ctx := c.Request.Context()
	sessionID := req.SessionID
	if sessionID == "" {
		session, err := s.sessions.CreateSession(ctx, req.Filename, req.MimeType, req.TotalChunks)
		if err != nil {
			s.logger.Error("failed to create upload session", zap.Error(err))
			response.InternalError(c, "Failed to create upload session")
			return
		}
		sessionID = session.ID
	}

	result, err := s.sessions.HandleChunk(ctx, sessionID, req.TotalChunks, *req.ChunkIndex, chunk)
	if err != nil {
		s.handleChunkError(c, err)
		return
	}

	if result.Completed {
		c.JSON(http.StatusCreated, &ChunkCompletedResponse{
			Success:   true,
			Completed: true,
			SessionID: result.SessionID,
			Image:     toImageResponse(result.Upload.Image, result.Upload.DownloadURL),
		})
		return
	}

	c.JSON(http.StatusOK, &ChunkProgressResponse{
		Success:   true,
		Completed: false,
		SessionID: result.SessionID,
		Progress: ProgressBody{
			Uploaded:   result.Progress.Uploaded,
			Total:      result.Progress.Total,
			Percentage: result.Progress.Percentage,
		},
	})
}

func (s *ImageService) handleChunkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, biz.ErrSessionNotFound):
		response.HandleError(c, apperrors.New(apperrors.ErrSessionNotFound))
	case errors.Is(err, biz.ErrSessionExpired):
		response.HandleError(c, apperrors.New(apperrors.ErrSessionExpired))
	case errors.Is(err, biz.ErrSessionFinished):
		response.HandleError(c, apperrors.New(apperrors.ErrSessionTerminal))
	case errors.Is(err, biz.ErrChunkOutOfRange):
		response.HandleError(c, apperrors.New(apperrors.ErrSessionBadChunk, "Chunk index out of range"))
	case errors.Is(err, biz.ErrChunkCountMismatch):
		response.HandleError(c, apperrors.New(apperrors.ErrSessionBadChunk, "Total chunk count does not match session"))
	default:
		// Reassembled uploads fail the same ways single-shot ones do.
		s.handleUploadError(c, err)
	}
}
