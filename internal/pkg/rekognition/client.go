package rekognition

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"go.uber.org/zap"
)

// Face is one detected face with its bounding box expressed as
// fractions of the image dimensions, both in [0,1].
type Face struct {
	Width  float64
	Height float64
}

// Client wraps the AWS Rekognition DetectFaces API
type Client struct {
	client *rekognition.Client
	logger *zap.Logger
}

// NewClient creates a Rekognition client with static credentials
func NewClient(ctx context.Context, cfg *Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("rekognition: failed to load AWS config: %w", err)
	}

	return &Client{
		client: rekognition.NewFromConfig(awsCfg),
		logger: logger,
	}, nil
}

// DetectFaces returns every face found in the image bytes
func (c *Client) DetectFaces(ctx context.Context, image []byte) ([]Face, error) {
	out, err := c.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition: detect faces: %w", err)
	}

	faces := make([]Face, 0, len(out.FaceDetails))
	for _, detail := range out.FaceDetails {
		if detail.BoundingBox == nil {
			continue
		}
		var w, h float64
		if detail.BoundingBox.Width != nil {
			w = float64(*detail.BoundingBox.Width)
		}
		if detail.BoundingBox.Height != nil {
			h = float64(*detail.BoundingBox.Height)
		}
		faces = append(faces, Face{Width: w, Height: h})
	}

	if c.logger != nil {
		c.logger.Debug("face detection completed", zap.Int("faces", len(faces)))
	}

	return faces, nil
}
