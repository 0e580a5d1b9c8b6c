package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/photogate-dev/photogate-backend/internal/pkg/logger"
	"github.com/photogate-dev/photogate-backend/internal/pkg/workerpool"
	"go.uber.org/zap"
)

// Config carries the validation thresholds. All of them are
// environment-overridable (see conf); a nil Config falls back to the defaults.
type Config struct {
	MinWidth      int     `mapstructure:"minwidth"`
	MinHeight     int     `mapstructure:"minheight"`
	MaxWidth      int     `mapstructure:"maxwidth"`
	MaxHeight     int     `mapstructure:"maxheight"`
	MaxFileSize   int64   `mapstructure:"maxfilesize"`
	BlurThreshold float64 `mapstructure:"blurthreshold"`
	MinFaceArea   float64 `mapstructure:"minfacearea"`
}

// DefaultConfig returns the default validation thresholds
func DefaultConfig() *Config {
	return &Config{
		MinWidth:      300,
		MinHeight:     300,
		MaxWidth:      4000,
		MaxHeight:     4000,
		MaxFileSize:   10 * 1024 * 1024, // 10MB
		BlurThreshold: 100,
		MinFaceArea:   0.10,
	}
}

// allowedFormats is the format allowlist checked against the detected
// header format of the normalized buffer.
var allowedFormats = []string{"jpeg", "jpg", "png", "heic"}

// Metadata is the closed metadata bag attached to every ValidationResult.
// On a passing verdict it is folded into the persisted image record.
type Metadata struct {
	Width     int
	Height    int
	Size      int64
	Format    string
	BlurScore float64
	FaceCount int
	FaceArea  float64
	Hash      string
}

// ValidationResult is the orchestrator's structured outcome. Valid is
// true iff Violations is empty.
type ValidationResult struct {
	Valid      bool
	Violations []string
	Metadata   Metadata
}

// Validator sequences the quality, policy and fingerprint passes into a
// single pass/fail decision. It never returns an error or lets a fault
// escape: malformed input becomes a failed verdict with one processing
// violation.
type Validator struct {
	cfg      *Config
	detector FaceDetector
	pool     *workerpool.Pool
	logger   *logger.Logger
}

// NewValidator creates a validation orchestrator
func NewValidator(cfg *Config, detector FaceDetector, pool *workerpool.Pool, log *logger.Logger) *Validator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Validator{
		cfg:      cfg,
		detector: detector,
		pool:     pool,
		logger:   log,
	}
}

// Validate runs every check in order and collects all violations before
// returning; later checks never short-circuit earlier ones. The content
// hash is always computed, even on a failing verdict, because the caller
// needs it for duplicate checking and later reference.
func (v *Validator) Validate(ctx context.Context, data []byte) (result ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			if v.logger != nil {
				v.logger.Error("validation pass panicked", zap.Any("panic", r))
			}
			result = ValidationResult{
				Valid:      false,
				Violations: []string{fmt.Sprintf("Image processing error: %v", r)},
				Metadata:   result.Metadata,
			}
		}
	}()

	result.Metadata.Size = int64(len(data))
	result.Metadata.Hash = ComputeHash(data)

	width, height, format, err := Dimensions(data)
	if err != nil {
		result.Valid = false
		result.Violations = []string{fmt.Sprintf("Image processing error: %v", err)}
		return result
	}
	result.Metadata.Width = width
	result.Metadata.Height = height
	result.Metadata.Format = format

	var violations []string

	// 1. Minimum resolution
	if width < v.cfg.MinWidth || height < v.cfg.MinHeight {
		violations = append(violations, fmt.Sprintf("Image too small. Minimum size: %dx%d, got: %dx%d",
			v.cfg.MinWidth, v.cfg.MinHeight, width, height))
	}

	// 2. Maximum resolution
	if width > v.cfg.MaxWidth || height > v.cfg.MaxHeight {
		violations = append(violations, fmt.Sprintf("Image too large. Maximum size: %dx%d, got: %dx%d",
			v.cfg.MaxWidth, v.cfg.MaxHeight, width, height))
	}

	// 3. Format allowlist
	if !formatAllowed(format) {
		violations = append(violations, fmt.Sprintf("Invalid format. Allowed: %s, got: %s",
			strings.Join(allowedFormats, ", "), format))
	}

	// 4. File size
	if result.Metadata.Size > v.cfg.MaxFileSize {
		violations = append(violations, fmt.Sprintf("File too large. Maximum size: %d bytes, got: %d",
			v.cfg.MaxFileSize, result.Metadata.Size))
	}

	// 5+6. Blur estimation is CPU-bound and face detection is network-bound;
	// run them concurrently on the shared pool and join before aggregating,
	// so the violation order stays deterministic.
	var (
		blurScore float64
		blurErr   error
		faceCount int
		faceArea  float64
		faceErr   error
	)
	v.runAll(
		func() { blurScore, blurErr = BlurScore(data) },
		func() { faceCount, faceArea, faceErr = detectFaces(ctx, v.detector, data) },
	)

	if blurErr != nil {
		violations = append(violations, fmt.Sprintf("Image processing error: %v", blurErr))
	} else {
		result.Metadata.BlurScore = blurScore
		if blurScore < v.cfg.BlurThreshold {
			violations = append(violations, fmt.Sprintf("Image appears to be blurry (blur score: %.2f)", blurScore))
		}
	}

	if faceErr != nil {
		// Degrade to a zero-face result; the upload fails the face policy
		// rather than crashing the pipeline.
		if v.logger != nil {
			v.logger.Warn("face detection unavailable, treating as zero faces", zap.Error(faceErr))
		}
		faceCount, faceArea = 0, 0
	}
	result.Metadata.FaceCount = faceCount
	result.Metadata.FaceArea = faceArea

	switch {
	case faceCount == 0:
		violations = append(violations, "No face detected in the image")
	case faceCount > 1:
		violations = append(violations, fmt.Sprintf("Multiple faces detected (%d). Only one face allowed.", faceCount))
	case faceArea < v.cfg.MinFaceArea:
		violations = append(violations, fmt.Sprintf("Face too small relative to image (%.1f%%)", faceArea*100))
	}

	result.Violations = violations
	result.Valid = len(violations) == 0
	return result
}

// runAll executes the tasks on the pool when one is configured,
// otherwise inline.
func (v *Validator) runAll(tasks ...func()) {
	if v.pool != nil {
		v.pool.RunAll(tasks...)
		return
	}
	for _, task := range tasks {
		task()
	}
}

func formatAllowed(format string) bool {
	format = strings.ToLower(format)
	for _, allowed := range allowedFormats {
		if format == allowed {
			return true
		}
	}
	return false
}
