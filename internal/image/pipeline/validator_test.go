package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkerboard produces a maximally sharp test image: alternating black
// and white pixels give the Laplacian a huge variance.
func checkerboard(w, h int) *image.NRGBA {
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
	return img
}

func uniformGray(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	return img
}

// encodePNG keeps test pixels byte-exact; JPEG artifacts would make
// blur scores unpredictable.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func encodeGIF(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.GIF))
	return buf.Bytes()
}

type stubDetector struct {
	faces []FaceBox
	err   error
}

func (d *stubDetector) DetectFaces(ctx context.Context, image []byte) ([]FaceBox, error) {
	return d.faces, d.err
}

func singleFace() *stubDetector {
	return &stubDetector{faces: []FaceBox{{Width: 0.5, Height: 0.5}}}
}

func hasViolationPrefix(violations []string, prefix string) bool {
	for _, v := range violations {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return false
}

func TestValidate_Pass(t *testing.T) {
	v := NewValidator(nil, singleFace(), nil, nil)
	data := encodePNG(t, checkerboard(800, 600))

	result := v.Validate(context.Background(), data)

	assert.True(t, result.Valid, "violations: %v", result.Violations)
	assert.Empty(t, result.Violations)
	assert.Equal(t, 800, result.Metadata.Width)
	assert.Equal(t, 600, result.Metadata.Height)
	assert.Equal(t, "png", result.Metadata.Format)
	assert.Equal(t, int64(len(data)), result.Metadata.Size)
	assert.Equal(t, ComputeHash(data), result.Metadata.Hash)
	assert.Equal(t, 1, result.Metadata.FaceCount)
	assert.Equal(t, 0.25, result.Metadata.FaceArea)
	assert.Greater(t, result.Metadata.BlurScore, 100.0)
}

func TestValidate_TooSmall(t *testing.T) {
	v := NewValidator(nil, singleFace(), nil, nil)
	data := encodePNG(t, checkerboard(299, 300))

	result := v.Validate(context.Background(), data)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Violations, "Image too small. Minimum size: 300x300, got: 299x300")
}

func TestValidate_TooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWidth = 500
	cfg.MaxHeight = 500
	v := NewValidator(cfg, singleFace(), nil, nil)
	data := encodePNG(t, checkerboard(501, 400))

	result := v.Validate(context.Background(), data)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Violations, "Image too large. Maximum size: 500x500, got: 501x400")
}

func TestValidate_MaxDimensionIsInclusive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWidth = 800
	cfg.MaxHeight = 600
	v := NewValidator(cfg, singleFace(), nil, nil)
	data := encodePNG(t, checkerboard(800, 600))

	result := v.Validate(context.Background(), data)

	assert.False(t, hasViolationPrefix(result.Violations, "Image too large"))
	assert.False(t, hasViolationPrefix(result.Violations, "Image too small"))
}

func TestValidate_InvalidFormat(t *testing.T) {
	v := NewValidator(nil, singleFace(), nil, nil)
	data := encodeGIF(t, checkerboard(400, 400))

	result := v.Validate(context.Background(), data)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Violations, "Invalid format. Allowed: jpeg, jpg, png, heic, got: gif")
}

func TestValidate_FileSizeBoundary(t *testing.T) {
	data := encodePNG(t, checkerboard(400, 400))

	// Exactly at the limit passes.
	cfg := DefaultConfig()
	cfg.MaxFileSize = int64(len(data))
	v := NewValidator(cfg, singleFace(), nil, nil)
	result := v.Validate(context.Background(), data)
	assert.False(t, hasViolationPrefix(result.Violations, "File too large"))

	// One byte over fails.
	cfg = DefaultConfig()
	cfg.MaxFileSize = int64(len(data)) - 1
	v = NewValidator(cfg, singleFace(), nil, nil)
	result = v.Validate(context.Background(), data)
	assert.False(t, result.Valid)
	assert.True(t, hasViolationPrefix(result.Violations, "File too large"))
}

func TestValidate_Blurry(t *testing.T) {
	v := NewValidator(nil, singleFace(), nil, nil)
	data := encodePNG(t, uniformGray(400, 400))

	result := v.Validate(context.Background(), data)

	assert.False(t, result.Valid)
	assert.True(t, hasViolationPrefix(result.Violations, "Image appears to be blurry"))
	assert.Less(t, result.Metadata.BlurScore, 100.0)
}

func TestValidate_FacePolicy(t *testing.T) {
	tests := []struct {
		name      string
		detector  *stubDetector
		violation string
	}{
		{
			name:      "no face",
			detector:  &stubDetector{},
			violation: "No face detected in the image",
		},
		{
			name: "multiple faces",
			detector: &stubDetector{faces: []FaceBox{
				{Width: 0.4, Height: 0.4},
				{Width: 0.3, Height: 0.3},
			}},
			violation: "Multiple faces detected (2). Only one face allowed.",
		},
		{
			name:      "face too small",
			detector:  &stubDetector{faces: []FaceBox{{Width: 0.2, Height: 0.2}}},
			violation: "Face too small relative to image (4.0%)",
		},
	}

	data := encodePNG(t, checkerboard(800, 600))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(nil, tt.detector, nil, nil)
			result := v.Validate(context.Background(), data)

			assert.False(t, result.Valid)
			assert.Contains(t, result.Violations, tt.violation)
		})
	}
}

func TestValidate_DetectorFailureDegradesToNoFace(t *testing.T) {
	detector := &stubDetector{err: errors.New("service unavailable")}
	v := NewValidator(nil, detector, nil, nil)
	data := encodePNG(t, checkerboard(800, 600))

	result := v.Validate(context.Background(), data)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Violations, "No face detected in the image")
	assert.Equal(t, 0, result.Metadata.FaceCount)
}

func TestValidate_UndecodableInput(t *testing.T) {
	v := NewValidator(nil, singleFace(), nil, nil)
	data := []byte("definitely not an image")

	result := v.Validate(context.Background(), data)

	assert.False(t, result.Valid)
	require.Len(t, result.Violations, 1)
	assert.True(t, hasViolationPrefix(result.Violations, "Image processing error:"))
	// The fingerprint is still computed for undecodable input.
	assert.Equal(t, ComputeHash(data), result.Metadata.Hash)
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	v := NewValidator(nil, &stubDetector{}, nil, nil)
	data := encodePNG(t, uniformGray(200, 200))

	result := v.Validate(context.Background(), data)

	assert.False(t, result.Valid)
	assert.True(t, hasViolationPrefix(result.Violations, "Image too small"))
	assert.True(t, hasViolationPrefix(result.Violations, "Image appears to be blurry"))
	assert.Contains(t, result.Violations, "No face detected in the image")
	assert.GreaterOrEqual(t, len(result.Violations), 3)
}
