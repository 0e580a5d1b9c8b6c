package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/jdeng/goheif"
)

// normalizedJPEGQuality is the quality factor used when re-encoding
// HEIC/HEIF input to the canonical JPEG encoding.
const normalizedJPEGQuality = 90

// MimeJPEG is the canonical MIME type every normalized buffer ends up with
const MimeJPEG = "image/jpeg"

// UnsupportedEncodingError means the source bytes could not be decoded.
// It is fatal for the upload and is not a validation violation.
type UnsupportedEncodingError struct {
	Err error
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("unsupported encoding: %v", e.Err)
}

func (e *UnsupportedEncodingError) Unwrap() error {
	return e.Err
}

// IsHEIC reports whether the declared MIME type or the filename extension
// indicates a HEIC/HEIF container.
func IsHEIC(mimeType, filename string) bool {
	switch strings.ToLower(mimeType) {
	case "image/heic", "image/heif":
		return true
	}

	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".heic") || strings.HasSuffix(name, ".heif")
}

// Normalize converts accepted input encodings into the canonical JPEG
// encoding. HEIC/HEIF buffers are decoded and re-encoded at a fixed
// quality factor; anything else passes through untouched together with
// its declared MIME type.
func Normalize(data []byte, mimeType, filename string) ([]byte, string, error) {
	if !IsHEIC(mimeType, filename) {
		return data, mimeType, nil
	}

	img, err := goheif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &UnsupportedEncodingError{Err: fmt.Errorf("heic decode: %w", err)}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(normalizedJPEGQuality)); err != nil {
		return nil, "", &UnsupportedEncodingError{Err: fmt.Errorf("jpeg encode: %w", err)}
	}

	return buf.Bytes(), MimeJPEG, nil
}
