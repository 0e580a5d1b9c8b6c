package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHEIC(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		filename string
		want     bool
	}{
		{"heic mime", "image/heic", "photo.jpg", true},
		{"heif mime", "image/heif", "photo.jpg", true},
		{"heic extension", "application/octet-stream", "photo.HEIC", true},
		{"heif extension", "application/octet-stream", "photo.heif", true},
		{"plain jpeg", "image/jpeg", "photo.jpg", false},
		{"plain png", "image/png", "photo.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHEIC(tt.mimeType, tt.filename))
		})
	}
}

func TestNormalize_PassthroughForNonHEIC(t *testing.T) {
	data := encodePNG(t, checkerboard(400, 400))

	out, mimeType, err := Normalize(data, "image/png", "photo.png")

	assert.NoError(t, err)
	assert.Equal(t, data, out)
	assert.Equal(t, "image/png", mimeType)
}

func TestNormalize_CorruptHEIC(t *testing.T) {
	_, _, err := Normalize([]byte("not a heic container"), "image/heic", "photo.heic")

	var encErr *UnsupportedEncodingError
	assert.True(t, errors.As(err, &encErr))
}
