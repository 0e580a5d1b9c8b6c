package data

import (
	"context"
	"time"

	"github.com/photogate-dev/photogate-backend/internal/image/biz"
	"github.com/photogate-dev/photogate-backend/internal/pkg/database"
	"gorm.io/gorm"
)

// UploadSessionPO represents the database model
type UploadSessionPO struct {
	ID             string `gorm:"type:uuid;primarykey"`
	Filename       string `gorm:"size:300;not null"`
	MimeType       string `gorm:"size:100;not null"`
	TotalChunks    int    `gorm:"not null"`
	UploadedChunks int    `gorm:"not null;default:0"`
	Status         string `gorm:"size:20;not null;index:idx_upload_sessions_status"`
	StorageKey     string `gorm:"size:512"`

	ExpiresAt time.Time `gorm:"not null;index:idx_upload_sessions_expires_at"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (UploadSessionPO) TableName() string {
	return "upload_sessions"
}

// SessionRepo implements biz.SessionRepo interface
type SessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) biz.SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, session *biz.UploadSession) error {
	return r.db.WithContext(ctx).Create(r.toPO(session)).Error
}

func (r *SessionRepo) GetByID(ctx context.Context, id string) (*biz.UploadSession, error) {
	var po UploadSessionPO
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrSessionNotFound
		}
		return nil, err
	}
	return r.toSession(&po), nil
}

func (r *SessionRepo) UpdateProgress(ctx context.Context, id string, uploadedChunks int, status string) error {
	return r.db.WithContext(ctx).Model(&UploadSessionPO{}).
		Where("id = ? AND status NOT IN ?", id, []string{biz.SessionCompleted, biz.SessionFailed}).
		Updates(map[string]interface{}{
			"uploaded_chunks": uploadedChunks,
			"status":          status,
			"updated_at":      time.Now().UTC(),
		}).Error
}

// MarkCompleted transitions a non-terminal session to COMPLETED. The
// status guard makes the transition idempotent under races.
func (r *SessionRepo) MarkCompleted(ctx context.Context, id, storageKey string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&UploadSessionPO{}).
		Where("id = ? AND status NOT IN ?", id, []string{biz.SessionCompleted, biz.SessionFailed}).
		Updates(map[string]interface{}{
			"status":      biz.SessionCompleted,
			"storage_key": storageKey,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *SessionRepo) MarkFailed(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&UploadSessionPO{}).
		Where("id = ? AND status NOT IN ?", id, []string{biz.SessionCompleted, biz.SessionFailed}).
		Updates(map[string]interface{}{
			"status":     biz.SessionFailed,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *SessionRepo) toPO(s *biz.UploadSession) *UploadSessionPO {
	return &UploadSessionPO{
		ID:             s.ID,
		Filename:       s.Filename,
		MimeType:       s.MimeType,
		TotalChunks:    s.TotalChunks,
		UploadedChunks: s.UploadedChunks,
		Status:         s.Status,
		StorageKey:     s.StorageKey,
		ExpiresAt:      s.ExpiresAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (r *SessionRepo) toSession(po *UploadSessionPO) *biz.UploadSession {
	return &biz.UploadSession{
		ID:             po.ID,
		Filename:       po.Filename,
		MimeType:       po.MimeType,
		TotalChunks:    po.TotalChunks,
		UploadedChunks: po.UploadedChunks,
		Status:         po.Status,
		StorageKey:     po.StorageKey,
		ExpiresAt:      po.ExpiresAt,
		CreatedAt:      po.CreatedAt,
		UpdatedAt:      po.UpdatedAt,
	}
}
