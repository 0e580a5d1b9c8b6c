package data

import (
	"context"

	"github.com/photogate-dev/photogate-backend/internal/image/biz"
	"github.com/photogate-dev/photogate-backend/internal/pkg/minio"
)

// BlobStore implements biz.BlobStore on MinIO
type BlobStore struct {
	client *minio.Client
}

func NewBlobStore(client *minio.Client) biz.BlobStore {
	return &BlobStore{client: client}
}

func (s *BlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return s.client.PutBytes(ctx, key, data, contentType)
}

func (s *BlobStore) SignedURL(ctx context.Context, key string) (string, error) {
	return s.client.PresignedGetURL(ctx, key)
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, key)
}
