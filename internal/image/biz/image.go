package biz

import (
	"context"
	"time"

	"github.com/photogate-dev/photogate-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// ImageStatus is the lifecycle status of a persisted image. Rejected
// uploads are never persisted, so VALIDATED is the only status a stored
// record settles into.
type ImageStatus string

const (
	StatusValidated ImageStatus = "VALIDATED"
)

// Image is the durable record of an accepted upload
type Image struct {
	ID           string
	Filename     string // stored name, collision-resistant
	OriginalName string // untrusted, display only
	MimeType     string
	Size         int64
	Width        int
	Height       int
	StorageKey   string
	Hash         string
	BlurScore    float64
	FaceCount    int
	FaceArea     float64
	Status       ImageStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListImagesRequest is a paginated image query
type ListImagesRequest struct {
	Page   int
	Limit  int
	Status string // optional status filter
}

// ImageRepo persists image metadata records
type ImageRepo interface {
	Create(ctx context.Context, img *Image) error
	GetByID(ctx context.Context, id string) (*Image, error)
	List(ctx context.Context, req *ListImagesRequest) ([]*Image, int64, error)
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// BlobStore is the durable object-storage collaborator
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	SignedURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageUseCase serves queries and deletion over persisted images
type ImageUseCase struct {
	images ImageRepo
	blobs  BlobStore
	logger *logger.Logger
}

// NewImageUseCase creates an image use case
func NewImageUseCase(images ImageRepo, blobs BlobStore, log *logger.Logger) *ImageUseCase {
	return &ImageUseCase{
		images: images,
		blobs:  blobs,
		logger: log,
	}
}

// Get returns one image by id
func (uc *ImageUseCase) Get(ctx context.Context, id string) (*Image, error) {
	return uc.images.GetByID(ctx, id)
}

// List returns a page of images plus the total match count
func (uc *ImageUseCase) List(ctx context.Context, req *ListImagesRequest) ([]*Image, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 10
	}
	return uc.images.List(ctx, req)
}

// DownloadURL generates a fresh time-limited signed URL for the image.
// URLs are never persisted; every listing mints new ones.
func (uc *ImageUseCase) DownloadURL(ctx context.Context, img *Image) (string, error) {
	url, err := uc.blobs.SignedURL(ctx, img.StorageKey)
	if err != nil {
		return "", &StorageError{Op: "sign url", Err: err}
	}
	return url, nil
}

// Delete removes the metadata record and then the blob. The stores do
// not share a transaction: if the blob delete fails after the record is
// gone, the blob is orphaned. That window is logged and left to an
// external reconciliation sweep.
func (uc *ImageUseCase) Delete(ctx context.Context, id string) error {
	img, err := uc.images.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.images.Delete(ctx, id); err != nil {
		return &StorageError{Op: "delete record", Err: err}
	}

	if err := uc.blobs.Delete(ctx, img.StorageKey); err != nil {
		uc.logger.Error("blob delete failed after metadata delete, blob orphaned",
			zap.String("image_id", id),
			zap.String("storage_key", img.StorageKey),
			zap.Error(err),
		)
	}

	return nil
}
