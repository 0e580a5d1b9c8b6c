package pipeline

import (
	"context"
)

// FaceBox is one detected face with its bounding box expressed as
// fractions of the image dimensions, both in [0,1].
type FaceBox struct {
	Width  float64
	Height float64
}

// Area returns the bounding-box area as a fraction of the image area
func (f FaceBox) Area() float64 {
	return f.Width * f.Height
}

// FaceDetector is the external face-recognition collaborator.
// Implementations perform network I/O and must honor the context.
type FaceDetector interface {
	DetectFaces(ctx context.Context, image []byte) ([]FaceBox, error)
}

// detectFaces runs the detector and reduces its output to the face count
// and the dominant (largest) face area. A detector failure degrades to a
// zero-face result so the upload is rejected for policy reasons instead
// of crashing the pipeline; the error is returned for logging only.
func detectFaces(ctx context.Context, detector FaceDetector, data []byte) (count int, maxArea float64, err error) {
	if detector == nil {
		return 0, 0, nil
	}

	faces, err := detector.DetectFaces(ctx, data)
	if err != nil {
		return 0, 0, err
	}

	for _, face := range faces {
		if area := face.Area(); area > maxArea {
			maxArea = area
		}
	}

	return len(faces), maxArea, nil
}
