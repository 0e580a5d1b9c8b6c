package biz

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/photogate-dev/photogate-backend/internal/image/pipeline"
	"github.com/photogate-dev/photogate-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// UploadResult is the outcome of an accepted upload
type UploadResult struct {
	Image       *Image
	DownloadURL string
}

// UploadUseCase sequences normalization, validation, duplicate checking
// and durable persistence for one upload. It is the only writer of Image
// records.
type UploadUseCase struct {
	images    ImageRepo
	blobs     BlobStore
	validator *pipeline.Validator
	logger    *logger.Logger
	now       func() time.Time
}

// NewUploadUseCase creates an upload use case
func NewUploadUseCase(images ImageRepo, blobs BlobStore, validator *pipeline.Validator, log *logger.Logger) *UploadUseCase {
	return &UploadUseCase{
		images:    images,
		blobs:     blobs,
		validator: validator,
		logger:    log,
		now:       time.Now,
	}
}

// ProcessUpload takes the complete raw upload through the pipeline:
// normalize, validate, check duplicates, write the blob and the metadata
// record, and mint a signed download URL. Every stage gates the next.
func (uc *UploadUseCase) ProcessUpload(ctx context.Context, originalName, mimeType string, data []byte) (*UploadResult, error) {
	log := uc.logger.WithContext(ctx)

	normalized, finalMime, err := pipeline.Normalize(data, mimeType, originalName)
	if err != nil {
		return nil, err
	}

	result := uc.validator.Validate(ctx, normalized)
	if !result.Valid {
		return nil, &ValidationError{Violations: result.Violations}
	}

	duplicate, err := uc.images.ExistsByHash(ctx, result.Metadata.Hash)
	if err != nil {
		return nil, &StorageError{Op: "duplicate check", Err: err}
	}
	if duplicate {
		return nil, ErrDuplicateImage
	}

	now := uc.now().UTC()
	storedName := fmt.Sprintf("%d-%s", now.UnixMilli(), SanitizeFilename(originalName))
	storageKey := "images/" + storedName

	if err := uc.blobs.Put(ctx, storageKey, normalized, finalMime); err != nil {
		return nil, &StorageError{Op: "blob write", Err: err}
	}

	img := &Image{
		ID:           uuid.NewString(),
		Filename:     storedName,
		OriginalName: originalName,
		MimeType:     finalMime,
		Size:         result.Metadata.Size,
		Width:        result.Metadata.Width,
		Height:       result.Metadata.Height,
		StorageKey:   storageKey,
		Hash:         result.Metadata.Hash,
		BlurScore:    result.Metadata.BlurScore,
		FaceCount:    result.Metadata.FaceCount,
		FaceArea:     result.Metadata.FaceArea,
		Status:       StatusValidated,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.images.Create(ctx, img); err != nil {
		// The blob is already written; without cross-store transactions this
		// leaves an orphan for the external reconciliation sweep.
		log.Error("metadata write failed after blob upload, blob orphaned",
			zap.String("storage_key", storageKey),
			zap.String("hash", img.Hash),
			zap.Error(err),
		)
		return nil, &StorageError{Op: "metadata write", Err: err}
	}

	url, err := uc.blobs.SignedURL(ctx, storageKey)
	if err != nil {
		return nil, &StorageError{Op: "sign url", Err: err}
	}

	log.Info("image accepted",
		zap.String("image_id", img.ID),
		zap.String("storage_key", storageKey),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
		zap.Float64("blur_score", img.BlurScore),
	)

	return &UploadResult{Image: img, DownloadURL: url}, nil
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
	repeatedDots        = regexp.MustCompile(`\.{2,}`)
	edgeDots            = regexp.MustCompile(`^\.+|\.+$`)
)

// SanitizeFilename strips a client-supplied filename down to a safe
// character set before it becomes part of a storage key.
func SanitizeFilename(filename string) string {
	name := unsafeFilenameChars.ReplaceAllString(filename, "_")
	name = repeatedDots.ReplaceAllString(name, ".")
	name = edgeDots.ReplaceAllString(name, "")
	if len(name) > 255 {
		name = name[:255]
	}
	return name
}
