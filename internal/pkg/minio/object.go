package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// PutBytes uploads a byte buffer under the given object key
func (c *Client) PutBytes(ctx context.Context, objectName string, data []byte, contentType string) error {
	if objectName == "" {
		return wrapError("PutBytes", ErrInvalidArgument, c.config.Bucket, objectName)
	}

	_, err := c.client.PutObject(ctx, c.config.Bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return wrapError("PutBytes", err, c.config.Bucket, objectName)
	}

	if c.logger != nil {
		c.logger.Info("object uploaded",
			zap.String("bucket", c.config.Bucket),
			zap.String("object", objectName),
			zap.Int("size", len(data)),
		)
	}

	return nil
}

// GetBytes downloads an object and returns its full contents
func (c *Client) GetBytes(ctx context.Context, objectName string) ([]byte, error) {
	if objectName == "" {
		return nil, wrapError("GetBytes", ErrInvalidArgument, c.config.Bucket, objectName)
	}

	obj, err := c.client.GetObject(ctx, c.config.Bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapError("GetBytes", err, c.config.Bucket, objectName)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, wrapError("GetBytes", err, c.config.Bucket, objectName)
	}

	return data, nil
}

// RemoveObject deletes an object
func (c *Client) RemoveObject(ctx context.Context, objectName string) error {
	if objectName == "" {
		return wrapError("RemoveObject", ErrInvalidArgument, c.config.Bucket, objectName)
	}

	if err := c.client.RemoveObject(ctx, c.config.Bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return wrapError("RemoveObject", err, c.config.Bucket, objectName)
	}

	if c.logger != nil {
		c.logger.Info("object removed",
			zap.String("bucket", c.config.Bucket),
			zap.String("object", objectName),
		)
	}

	return nil
}

// StatObject returns object size, or ErrObjectNotFound
func (c *Client) StatObject(ctx context.Context, objectName string) (int64, error) {
	info, err := c.client.StatObject(ctx, c.config.Bucket, objectName, minio.StatObjectOptions{})
	if err != nil {
		if IsNotFound(err) {
			return 0, wrapError("StatObject", ErrObjectNotFound, c.config.Bucket, objectName)
		}
		return 0, wrapError("StatObject", err, c.config.Bucket, objectName)
	}
	return info.Size, nil
}
