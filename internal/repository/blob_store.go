package repository

import (
	"context"
	"sync"
)

// Collection keys shared by every backend.
const (
	KeyClasses        = "classes"
	KeyStudents       = "students"
	KeySessions       = "sessions"
	KeyAttendances    = "attendances"
	KeyPreRoutines    = "preRoutines"
	KeyWarnings       = "warnings"
	KeyPoints         = "points"
	KeyQuestions      = "questions"
	KeyAnswers        = "answers"
	KeyQuizResponses  = "quizResponses"
	KeyMissionResults = "missionResults"
	KeyClaims         = "claims"
)

// Blob is a versioned collection payload. Version 0 means the key is absent.
type Blob struct {
	Payload []byte
	Version int64
}

// BlobStore persists whole collections under string keys with optimistic versioning.
type BlobStore interface {
	Get(ctx context.Context, key string) (Blob, error)
	// CompareAndSwap writes payload only if the stored version equals expected.
	CompareAndSwap(ctx context.Context, key string, expected int64, payload []byte) error
}

// MemoryBlobStore keeps collections in process memory.
type MemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string]Blob
}

// NewMemoryBlobStore constructs an empty in-memory store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string]Blob)}
}

// Get implements BlobStore.
func (s *MemoryBlobStore) Get(ctx context.Context, key string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	blob := s.blobs[key]
	return Blob{Payload: append([]byte(nil), blob.Payload...), Version: blob.Version}, nil
}

// CompareAndSwap implements BlobStore.
func (s *MemoryBlobStore) CompareAndSwap(ctx context.Context, key string, expected int64, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blobs[key].Version != expected {
		return ErrVersionConflict
	}
	s.blobs[key] = Blob{Payload: append([]byte(nil), payload...), Version: expected + 1}
	return nil
}
