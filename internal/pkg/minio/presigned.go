package minio

import (
	"context"
	"net/url"

	"go.uber.org/zap"
)

// PresignedGetURL generates a time-limited signed URL for downloading an object.
// The expiry comes from the client configuration; URLs are never persisted.
func (c *Client) PresignedGetURL(ctx context.Context, objectName string) (string, error) {
	if objectName == "" {
		return "", wrapError("PresignedGetURL", ErrInvalidArgument, c.config.Bucket, objectName)
	}

	presignedURL, err := c.client.PresignedGetObject(ctx, c.config.Bucket, objectName, c.config.SignedURLExpiry, url.Values{})
	if err != nil {
		return "", wrapError("PresignedGetURL", err, c.config.Bucket, objectName)
	}

	if c.logger != nil {
		c.logger.Debug("presigned GET URL generated",
			zap.String("bucket", c.config.Bucket),
			zap.String("object", objectName),
			zap.Duration("expiry", c.config.SignedURLExpiry),
		)
	}

	return presignedURL.String(), nil
}
