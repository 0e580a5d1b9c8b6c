package data

import (
	"context"
	"time"

	"github.com/photogate-dev/photogate-backend/internal/image/biz"
	"github.com/photogate-dev/photogate-backend/internal/pkg/database"
	"gorm.io/gorm"
)

// ImagePO represents the database model
type ImagePO struct {
	ID           string  `gorm:"type:uuid;primarykey"`
	Filename     string  `gorm:"size:300;not null"`
	OriginalName string  `gorm:"size:300;not null"`
	MimeType     string  `gorm:"size:100;not null"`
	Size         int64   `gorm:"not null"`
	Width        int     `gorm:"not null"`
	Height       int     `gorm:"not null"`
	StorageKey   string  `gorm:"size:512;not null"`
	Hash         string  `gorm:"size:64;not null;uniqueIndex:idx_images_hash"`
	BlurScore    float64 `gorm:"not null;default:0"`
	FaceCount    int     `gorm:"not null;default:0"`
	FaceArea     float64 `gorm:"not null;default:0"`
	Status       string  `gorm:"size:20;not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ImagePO) TableName() string {
	return "images"
}

// ImageRepo implements biz.ImageRepo interface
type ImageRepo struct {
	db *gorm.DB
}

func NewImageRepo(db *gorm.DB) biz.ImageRepo {
	return &ImageRepo{db: db}
}

func (r *ImageRepo) Create(ctx context.Context, img *biz.Image) error {
	po := r.toPO(img)
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return biz.ErrDuplicateImage
		}
		return err
	}
	return nil
}

func (r *ImageRepo) GetByID(ctx context.Context, id string) (*biz.Image, error) {
	var po ImagePO
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrImageNotFound
		}
		return nil, err
	}
	return r.toImage(&po), nil
}

func (r *ImageRepo) List(ctx context.Context, req *biz.ListImagesRequest) ([]*biz.Image, int64, error) {
	query := r.db.WithContext(ctx).Model(&ImagePO{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (req.Page - 1) * req.Limit
	var pos []ImagePO
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	images := make([]*biz.Image, len(pos))
	for i, po := range pos {
		images[i] = r.toImage(&po)
	}
	return images, total, nil
}

func (r *ImageRepo) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ImagePO{}).Where("hash = ?", hash).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ImageRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ImagePO{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return biz.ErrImageNotFound
	}
	return nil
}

func (r *ImageRepo) toPO(img *biz.Image) *ImagePO {
	return &ImagePO{
		ID:           img.ID,
		Filename:     img.Filename,
		OriginalName: img.OriginalName,
		MimeType:     img.MimeType,
		Size:         img.Size,
		Width:        img.Width,
		Height:       img.Height,
		StorageKey:   img.StorageKey,
		Hash:         img.Hash,
		BlurScore:    img.BlurScore,
		FaceCount:    img.FaceCount,
		FaceArea:     img.FaceArea,
		Status:       string(img.Status),
		CreatedAt:    img.CreatedAt,
		UpdatedAt:    img.UpdatedAt,
	}
}

func (r *ImageRepo) toImage(po *ImagePO) *biz.Image {
	return &biz.Image{
		ID:           po.ID,
		Filename:     po.Filename,
		OriginalName: po.OriginalName,
		MimeType:     po.MimeType,
		Size:         po.Size,
		Width:        po.Width,
		Height:       po.Height,
		StorageKey:   po.StorageKey,
		Hash:         po.Hash,
		BlurScore:    po.BlurScore,
		FaceCount:    po.FaceCount,
		FaceArea:     po.FaceArea,
		Status:       biz.ImageStatus(po.Status),
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}
