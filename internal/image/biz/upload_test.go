package biz

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/photogate-dev/photogate-backend/internal/image/pipeline"
	"github.com/photogate-dev/photogate-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- shared test fixtures ----

type fakeImageRepo struct {
	mu        sync.Mutex
	images    map[string]*Image
	createErr error
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[string]*Image)}
}

func (r *fakeImageRepo) Create(ctx context.Context, img *Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.images[img.ID] = img
	return nil
}

func (r *fakeImageRepo) GetByID(ctx context.Context, id string) (*Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[id]
	if !ok {
		return nil, ErrImageNotFound
	}
	return img, nil
}

func (r *fakeImageRepo) List(ctx context.Context, req *ListImagesRequest) ([]*Image, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Image
	for _, img := range r.images {
		out = append(out, img)
	}
	return out, int64(len(out)), nil
}

func (r *fakeImageRepo) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, img := range r.images {
		if img.Hash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeImageRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.images[id]; !ok {
		return ErrImageNotFound
	}
	delete(r.images, id)
	return nil
}

func (r *fakeImageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.images)
}

type fakeBlobStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	putErr    error
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.blobs[key] = data
	return nil
}

func (s *fakeBlobStore) SignedURL(ctx context.Context, key string) (string, error) {
	return "https://blobs.test/" + key + "?signed=1", nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.blobs, key)
	return nil
}

func (s *fakeBlobStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

type stubDetector struct {
	faces []pipeline.FaceBox
}

func (d *stubDetector) DetectFaces(ctx context.Context, image []byte) ([]pipeline.FaceBox, error) {
	return d.faces, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(nil)
	require.NoError(t, err)
	return log
}

func testValidator(t *testing.T) *pipeline.Validator {
	t.Helper()
	detector := &stubDetector{faces: []pipeline.FaceBox{{Width: 0.5, Height: 0.5}}}
	return pipeline.NewValidator(nil, detector, nil, testLogger(t))
}

// sharpPNG renders a checkerboard that sails past the blur threshold.
func sharpPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{A: 255}
			if (x+y)%2 == 0 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func newTestUploadUseCase(t *testing.T, images *fakeImageRepo, blobs *fakeBlobStore) *UploadUseCase {
	t.Helper()
	uc := NewUploadUseCase(images, blobs, testValidator(t), testLogger(t))
	uc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return uc
}

// ---- tests ----

func TestProcessUpload_Success(t *testing.T) {
	images := newFakeImageRepo()
	blobs := newFakeBlobStore()
	uc := newTestUploadUseCase(t, images, blobs)

	data := sharpPNG(t, 800, 600)
	result, err := uc.ProcessUpload(context.Background(), "my photo.png", "image/png", data)
	require.NoError(t, err)

	img := result.Image
	assert.NotEmpty(t, img.ID)
	assert.Equal(t, "my photo.png", img.OriginalName)
	assert.True(t, strings.HasSuffix(img.Filename, "-my_photo.png"))
	assert.Equal(t, "images/"+img.Filename, img.StorageKey)
	assert.Equal(t, StatusValidated, img.Status)
	assert.Equal(t, 800, img.Width)
	assert.Equal(t, 600, img.Height)
	assert.Equal(t, pipeline.ComputeHash(data), img.Hash)
	assert.Equal(t, 1, img.FaceCount)
	assert.Contains(t, result.DownloadURL, img.StorageKey)

	assert.Equal(t, 1, images.count())
	blobs.mu.Lock()
	assert.Equal(t, data, blobs.blobs[img.StorageKey])
	blobs.mu.Unlock()
}

func TestProcessUpload_ValidationFailure(t *testing.T) {
	images := newFakeImageRepo()
	blobs := newFakeBlobStore()
	uc := newTestUploadUseCase(t, images, blobs)

	// Below the minimum resolution.
	_, err := uc.ProcessUpload(context.Background(), "small.png", "image/png", sharpPNG(t, 100, 100))

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.NotEmpty(t, validationErr.Violations)

	// Nothing is persisted for a rejected upload.
	assert.Equal(t, 0, images.count())
	assert.Equal(t, 0, blobs.count())
}

func TestProcessUpload_Duplicate(t *testing.T) {
	images := newFakeImageRepo()
	blobs := newFakeBlobStore()
	uc := newTestUploadUseCase(t, images, blobs)

	data := sharpPNG(t, 800, 600)
	_, err := uc.ProcessUpload(context.Background(), "first.png", "image/png", data)
	require.NoError(t, err)

	// Same bytes under a different name is still a duplicate.
	_, err = uc.ProcessUpload(context.Background(), "second.png", "image/png", data)
	assert.ErrorIs(t, err, ErrDuplicateImage)

	assert.Equal(t, 1, images.count())
	assert.Equal(t, 1, blobs.count())
}

func TestProcessUpload_UndecodableHEIC(t *testing.T) {
	images := newFakeImageRepo()
	blobs := newFakeBlobStore()
	uc := newTestUploadUseCase(t, images, blobs)

	_, err := uc.ProcessUpload(context.Background(), "photo.heic", "image/heic", []byte("garbage"))

	var encErr *pipeline.UnsupportedEncodingError
	assert.True(t, errors.As(err, &encErr))
	assert.Equal(t, 0, blobs.count())
}

func TestProcessUpload_MetadataWriteFailureLeavesOrphanBlob(t *testing.T) {
	images := newFakeImageRepo()
	images.createErr = errors.New("connection reset")
	blobs := newFakeBlobStore()
	uc := newTestUploadUseCase(t, images, blobs)

	_, err := uc.ProcessUpload(context.Background(), "photo.png", "image/png", sharpPNG(t, 800, 600))

	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "metadata write", storageErr.Op)

	// The blob write preceded the failing metadata write; the orphan is
	// an accepted inconsistency window.
	assert.Equal(t, 1, blobs.count())
	assert.Equal(t, 0, images.count())
}

func TestProcessUpload_BlobWriteFailure(t *testing.T) {
	images := newFakeImageRepo()
	blobs := newFakeBlobStore()
	blobs.putErr = errors.New("bucket unavailable")
	uc := newTestUploadUseCase(t, images, blobs)

	_, err := uc.ProcessUpload(context.Background(), "photo.png", "image/png", sharpPNG(t, 800, 600))

	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "blob write", storageErr.Op)
	assert.Equal(t, 0, images.count())
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces", "my photo.png", "my_photo.png"},
		{"path traversal", "../../etc/passwd", "_._etc_passwd"},
		{"repeated dots", "photo...png", "photo.png"},
		{"edge dots", ".hidden.", "hidden"},
		{"unicode", "héllo wörld.jpg", "h_llo_w_rld.jpg"},
		{"safe name unchanged", "IMG-2026.jpg", "IMG-2026.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}

	t.Run("length cap", func(t *testing.T) {
		long := strings.Repeat("a", 300)
		assert.Len(t, SanitizeFilename(long), 255)
	})
}
