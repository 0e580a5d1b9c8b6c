package data

import (
	"context"

	"github.com/photogate-dev/photogate-backend/internal/image/pipeline"
	"github.com/photogate-dev/photogate-backend/internal/pkg/rekognition"
)

// FaceDetector adapts the Rekognition client to pipeline.FaceDetector
type FaceDetector struct {
	client *rekognition.Client
}

func NewFaceDetector(client *rekognition.Client) pipeline.FaceDetector {
	return &FaceDetector{client: client}
}

func (d *FaceDetector) DetectFaces(ctx context.Context, image []byte) ([]pipeline.FaceBox, error) {
	faces, err := d.client.DetectFaces(ctx, image)
	if err != nil {
		return nil, err
	}

	boxes := make([]pipeline.FaceBox, len(faces))
	for i, f := range faces {
		boxes[i] = pipeline.FaceBox{Width: f.Width, Height: f.Height}
	}
	return boxes, nil
}
