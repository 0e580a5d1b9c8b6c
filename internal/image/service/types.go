package service

import (
	"time"

	"github.com/photogate-dev/photogate-backend/internal/image/biz"
)

// ImageResponse is the wire shape of one persisted image
type ImageResponse struct {
	ID           string  `json:"id"`
	Filename     string  `json:"filename"`
	OriginalName string  `json:"originalName"`
	MimeType     string  `json:"mimeType"`
	Size         int64   `json:"size"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Status       string  `json:"status"`
	BlurScore    float64 `json:"blurScore"`
	FaceCount    int     `json:"faceCount"`
	FaceSize     float64 `json:"faceSize"`
	DownloadURL  string  `json:"downloadUrl,omitempty"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// UploadResponse wraps a successful single-shot or completed chunked upload
type UploadResponse struct {
	Success bool           `json:"success"`
	Image   *ImageResponse `json:"image"`
}

// ChunkProgressResponse reports progress for an in-flight chunked session
type ChunkProgressResponse struct {
	Success   bool         `json:"success"`
	Completed bool         `json:"completed"`
	SessionID string       `json:"sessionId"`
	Progress  ProgressBody `json:"progress"`
}

type ProgressBody struct {
	Uploaded   int `json:"uploaded"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// ChunkCompletedResponse is returned to the single request that finished
// the session
type ChunkCompletedResponse struct {
	Success   bool           `json:"success"`
	Completed bool           `json:"completed"`
	SessionID string         `json:"sessionId"`
	Image     *ImageResponse `json:"image"`
}

// ListImagesResponse is the paginated listing shape
type ListImagesResponse struct {
	Images     []*ImageResponse `json:"images"`
	Pagination PaginationBody   `json:"pagination"`
}

type PaginationBody struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// DeleteResponse confirms a deletion
type DeleteResponse struct {
	Success bool `json:"success"`
}

func toImageResponse(img *biz.Image, downloadURL string) *ImageResponse {
	return &ImageResponse{
		ID:           img.ID,
		Filename:     img.Filename,
		OriginalName: img.OriginalName,
		MimeType:     img.MimeType,
		Size:         img.Size,
		Width:        img.Width,
		Height:       img.Height,
		Status:       string(img.Status),
		BlurScore:    img.BlurScore,
		FaceCount:    img.FaceCount,
		FaceSize:     img.FaceArea,
		DownloadURL:  downloadURL,
		CreatedAt:    img.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    img.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
