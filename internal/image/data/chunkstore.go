package data

import (
	"bytes"
	"sync"
	"time"

	"github.com/photogate-dev/photogate-backend/internal/image/biz"
	"github.com/photogate-dev/photogate-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

const reaperInterval = time.Hour

type chunkBuffer struct {
	mu          sync.Mutex
	chunks      map[int][]byte
	totalChunks int
	lastTouch   time.Time
}

// MemoryChunkStore buffers in-flight chunk payloads in process memory.
// A background reaper drops buffers untouched for longer than the
// session lifetime so abandoned sessions cannot pin memory forever.
type MemoryChunkStore struct {
	mu        sync.RWMutex
	buffers   map[string]*chunkBuffer
	logger    *logger.Logger
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryChunkStore(log *logger.Logger) *MemoryChunkStore {
	s := &MemoryChunkStore{
		buffers: make(map[string]*chunkBuffer),
		logger:  log,
		done:    make(chan struct{}),
	}
	go s.reap()
	return s
}

// Put stores one chunk. Re-sending an index overwrites the previous
// payload, last write wins.
func (s *MemoryChunkStore) Put(sessionID string, totalChunks, chunkIndex int, data []byte) (int, bool, error) {
	s.mu.Lock()
	buf, ok := s.buffers[sessionID]
	if !ok {
		buf = &chunkBuffer{
			chunks:      make(map[int][]byte, totalChunks),
			totalChunks: totalChunks,
		}
		s.buffers[sessionID] = buf
	}
	s.mu.Unlock()

	buf.mu.Lock()
	defer buf.mu.Unlock()

	// Copy so the caller's request buffer can be reused after return.
	chunk := make([]byte, len(data))
	copy(chunk, data)
	buf.chunks[chunkIndex] = chunk
	buf.lastTouch = time.Now()

	filled := len(buf.chunks)
	return filled, filled == buf.totalChunks, nil
}

// Take removes the buffer and returns the reassembled payload, in chunk
// index order. Only the first caller for a session gets ok=true.
func (s *MemoryChunkStore) Take(sessionID string) ([]byte, bool) {
	s.mu.Lock()
	buf, ok := s.buffers[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}

	buf.mu.Lock()
	defer buf.mu.Unlock()
	if len(buf.chunks) != buf.totalChunks {
		// Incomplete sets stay buffered for the remaining chunks.
		s.mu.Unlock()
		return nil, false
	}
	delete(s.buffers, sessionID)
	s.mu.Unlock()

	var assembled bytes.Buffer
	for i := 0; i < buf.totalChunks; i++ {
		assembled.Write(buf.chunks[i])
	}
	return assembled.Bytes(), true
}

// Release drops any buffered chunks for the session.
func (s *MemoryChunkStore) Release(sessionID string) {
	s.mu.Lock()
	delete(s.buffers, sessionID)
	s.mu.Unlock()
}

func (s *MemoryChunkStore) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *MemoryChunkStore) reap() {
	ticker := time.NewTicker(reaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.reapOnce(time.Now())
		}
	}
}

func (s *MemoryChunkStore) reapOnce(now time.Time) {
	cutoff := now.Add(-biz.SessionTTL)

	s.mu.Lock()
	var expired []string
	for id, buf := range s.buffers {
		buf.mu.Lock()
		stale := buf.lastTouch.Before(cutoff)
		buf.mu.Unlock()
		if stale {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(s.buffers, id)
	}
	s.mu.Unlock()

	if len(expired) > 0 {
		s.logger.Info("reaped expired chunk buffers", zap.Int("count", len(expired)))
	}
}

var _ biz.ChunkStore = (*MemoryChunkStore)(nil)
