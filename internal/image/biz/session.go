package biz

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/photogate-dev/photogate-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// SessionTTL is how long an upload session stays usable after creation.
const SessionTTL = 24 * time.Hour

// Session lifecycle states
const (
	SessionPending   = "PENDING"
	SessionUploading = "UPLOADING"
	SessionCompleted = "COMPLETED"
	SessionFailed    = "FAILED"
)

// UploadSession tracks one chunked upload from creation to assembly.
type UploadSession struct {
	ID             string
	Filename       string
	MimeType       string
	TotalChunks    int
	UploadedChunks int
	Status         string
	StorageKey     string
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Expired reports whether the session is past its deadline at t.
func (s *UploadSession) Expired(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// Terminal reports whether the session can accept no further chunks.
func (s *UploadSession) Terminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionFailed
}

// SessionRepo persists upload session records.
type SessionRepo interface {
	Create(ctx context.Context, session *UploadSession) error
	GetByID(ctx context.Context, id string) (*UploadSession, error)
	UpdateProgress(ctx context.Context, id string, uploadedChunks int, status string) error
	// MarkCompleted and MarkFailed only transition non-terminal sessions;
	// they report whether this call performed the transition.
	MarkCompleted(ctx context.Context, id, storageKey string) (bool, error)
	MarkFailed(ctx context.Context, id string) (bool, error)
}

// ChunkStore buffers chunk payloads for in-flight sessions. Put reports
// how many distinct chunks are filled and whether the set is complete.
// Take atomically removes the buffer and hands the assembled bytes to
// exactly one caller; everyone else gets ok=false.
type ChunkStore interface {
	Put(sessionID string, totalChunks, chunkIndex int, data []byte) (filled int, complete bool, err error)
	Take(sessionID string) (data []byte, ok bool)
	Release(sessionID string)
}

// ChunkProgress summarizes how far along a session is.
type ChunkProgress struct {
	Uploaded   int
	Total      int
	Percentage int
}

// ChunkResult is what HandleChunk returns. Completed is true only for
// the single call that finished the session; Upload is set on that call.
type ChunkResult struct {
	SessionID string
	Completed bool
	Progress  ChunkProgress
	Upload    *UploadResult
}

// SessionUseCase drives the chunked upload state machine.
type SessionUseCase struct {
	sessions SessionRepo
	chunks   ChunkStore
	uploads  *UploadUseCase
	logger   *logger.Logger
	now      func() time.Time
}

// NewSessionUseCase creates a session use case
func NewSessionUseCase(sessions SessionRepo, chunks ChunkStore, uploads *UploadUseCase, log *logger.Logger) *SessionUseCase {
	return &SessionUseCase{
		sessions: sessions,
		chunks:   chunks,
		uploads:  uploads,
		logger:   log,
		now:      time.Now,
	}
}

// CreateSession registers a new chunked upload.
func (uc *SessionUseCase) CreateSession(ctx context.Context, filename, mimeType string, totalChunks int) (*UploadSession, error) {
	if totalChunks < 1 {
		return nil, ErrChunkCountMismatch
	}
	now := uc.now().UTC()
	session := &UploadSession{
		ID:          uuid.NewString(),
		Filename:    filename,
		MimeType:    mimeType,
		TotalChunks: totalChunks,
		Status:      SessionPending,
		ExpiresAt:   now.Add(SessionTTL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.sessions.Create(ctx, session); err != nil {
		return nil, &StorageError{Op: "create session", Err: err}
	}
	return session, nil
}

// GetSession loads a session, enforcing expiry lazily.
func (uc *SessionUseCase) GetSession(ctx context.Context, id string) (*UploadSession, error) {
	session, err := uc.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Terminal() && session.Expired(uc.now()) {
		uc.chunks.Release(session.ID)
		if _, err := uc.sessions.MarkFailed(ctx, session.ID); err != nil {
			uc.logger.Warn("failed to mark expired session", zap.String("session_id", id), zap.Error(err))
		}
		return nil, ErrSessionExpired
	}
	return session, nil
}

// HandleChunk accepts one chunk for the session. When the final missing
// chunk arrives, exactly one caller assembles the payload and runs it
// through the full upload pipeline; a validation or pipeline failure
// marks the session FAILED.
func (uc *SessionUseCase) HandleChunk(ctx context.Context, sessionID string, totalChunks, chunkIndex int, data []byte) (*ChunkResult, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Terminal() {
		return nil, ErrSessionFinished
	}
	if totalChunks != session.TotalChunks {
		return nil, ErrChunkCountMismatch
	}
	if chunkIndex < 0 || chunkIndex >= session.TotalChunks {
		return nil, ErrChunkOutOfRange
	}

	ctx = logger.WithSessionID(ctx, sessionID)
	log := uc.logger.WithContext(ctx)

	filled, complete, err := uc.chunks.Put(sessionID, session.TotalChunks, chunkIndex, data)
	if err != nil {
		return nil, err
	}

	progress := ChunkProgress{
		Uploaded:   filled,
		Total:      session.TotalChunks,
		Percentage: percentage(filled, session.TotalChunks),
	}

	if !complete {
		if err := uc.sessions.UpdateProgress(ctx, sessionID, filled, SessionUploading); err != nil {
			log.Warn("failed to record session progress", zap.Error(err))
		}
		return &ChunkResult{SessionID: sessionID, Progress: progress}, nil
	}

	assembled, ok := uc.chunks.Take(sessionID)
	if !ok {
		// Another chunk raced us to completion and owns the assembly.
		return &ChunkResult{SessionID: sessionID, Progress: progress}, nil
	}

	upload, err := uc.uploads.ProcessUpload(ctx, session.Filename, session.MimeType, assembled)
	if err != nil {
		if _, markErr := uc.sessions.MarkFailed(ctx, sessionID); markErr != nil {
			log.Warn("failed to mark session failed", zap.Error(markErr))
		}
		return nil, err
	}

	if _, err := uc.sessions.MarkCompleted(ctx, sessionID, upload.Image.StorageKey); err != nil {
		log.Warn("failed to mark session completed", zap.Error(err))
	}

	log.Info("chunked upload completed",
		zap.String("image_id", upload.Image.ID),
		zap.Int("chunks", session.TotalChunks),
	)

	return &ChunkResult{
		SessionID: sessionID,
		Completed: true,
		Progress:  progress,
		Upload:    upload,
	}, nil
}

func percentage(uploaded, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(uploaded) * 100 / float64(total)))
}
