// Package filestore keeps the feedback collection in a single JSON file.
// Every operation reads the whole file, mutates the collection in memory and
// rewrites the whole file; a mutex serializes those cycles so concurrent
// requests cannot lose each other's updates.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NomadCrew/nomad-feedback-backend/internal/store"
	"github.com/NomadCrew/nomad-feedback-backend/logger"
	"github.com/NomadCrew/nomad-feedback-backend/types"
	"go.uber.org/zap"
)

// Ensure feedbackStore implements store.FeedbackStore
var _ store.FeedbackStore = (*feedbackStore)(nil)

type feedbackStore struct {
	path string
	now  func() time.Time
	log  *zap.SugaredLogger

	mu     sync.Mutex
	lastID int64
}

// NewFeedbackStore creates a feedback store backed by the JSON file at path.
// The file and its directory are created on the first write.
func NewFeedbackStore(path string) store.FeedbackStore {
	return &feedbackStore{
		path: path,
		now:  time.Now,
		log:  logger.GetLogger().Named("filestore"),
	}
}

// ListFeedback returns the whole collection in creation order.
func (s *feedbackStore) ListFeedback(ctx context.Context) ([]types.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// CreateFeedback appends a new pending entry and rewrites the file.
func (s *feedbackStore) CreateFeedback(ctx context.Context, fb *types.FeedbackCreate) (*types.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fb == nil {
		return nil, fmt.Errorf("%w: feedback is required", store.ErrValidation)
	}
	if missing := fb.MissingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", store.ErrValidation, strings.Join(missing, ", "))
	}
	if !fb.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown feedback type %q", store.ErrValidation, fb.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}

	now := s.now()
	created := types.Feedback{
		ID:        s.nextID(now, items),
		Name:      fb.Name,
		Email:     fb.Email,
		Message:   fb.Message,
		Type:      fb.Type,
		Status:    types.FeedbackStatusPending,
		CreatedAt: types.FormatFeedbackTime(now),
	}

	items = append(items, created)
	if err := s.save(items); err != nil {
		return nil, err
	}

	return &created, nil
}

// UpdateFeedbackStatus sets the status of the entry with the given ID. An
// unknown ID is reported before an invalid status.
func (s *feedbackStore) UpdateFeedbackStatus(ctx context.Context, id string, status types.FeedbackStatus) (*types.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}

	idx := indexOf(items, id)
	if idx == -1 {
		return nil, fmt.Errorf("feedback %s: %w", id, store.ErrNotFound)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w %q", store.ErrInvalidStatus, status)
	}

	items[idx].Status = status
	if err := s.save(items); err != nil {
		return nil, err
	}

	updated := items[idx]
	return &updated, nil
}

// DeleteFeedback removes the entry with the given ID, keeping the order of the rest.
func (s *feedbackStore) DeleteFeedback(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}

	idx := indexOf(items, id)
	if idx == -1 {
		return fmt.Errorf("feedback %s: %w", id, store.ErrNotFound)
	}

	remaining := make([]types.Feedback, 0, len(items)-1)
	remaining = append(remaining, items[:idx]...)
	remaining = append(remaining, items[idx+1:]...)
	return s.save(remaining)
}

// Ping reports whether the data file could be written: the nearest existing
// ancestor of the data directory must be a directory, and an existing data
// file must open. It never creates anything; save does that on first write.
func (s *feedbackStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%w: %s is not a directory", store.ErrStorage, dir)
			}
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: stat %s: %w", store.ErrStorage, dir, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: open %s: %w", store.ErrStorage, s.path, err)
	}
	return f.Close()
}

// load reads the collection. A missing or empty file is an empty collection;
// so is content that is not a JSON array of feedback, which is logged.
// Callers must hold s.mu.
func (s *feedbackStore) load() ([]types.Feedback, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []types.Feedback{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", store.ErrStorage, s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []types.Feedback{}, nil
	}

	var items []types.Feedback
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warnw("Feedback data file is unreadable, starting from an empty collection",
			"path", s.path, "error", err)
		return []types.Feedback{}, nil
	}
	if items == nil {
		items = []types.Feedback{}
	}
	return items, nil
}

// save replaces the file with the pretty-printed collection. It writes a
// temp file next to the target and renames it, so readers never observe a
// partially written file. Callers must hold s.mu.
func (s *feedbackStore) save(items []types.Feedback) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: ensure data directory: %w", store.ErrStorage, err)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode feedback: %w", store.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", store.ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write temp file: %w", store.ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync temp file: %w", store.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %w", store.ErrStorage, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod temp file: %w", store.ErrStorage, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", store.ErrStorage, s.path, err)
	}
	return nil
}

// nextID derives an ID from the creation time in Unix milliseconds. When
// that value is not above every ID already issued (same millisecond, clock
// step back, or IDs written by an earlier process) it is bumped past them,
// keeping IDs unique and increasing. Callers must hold s.mu.
func (s *feedbackStore) nextID(now time.Time, existing []types.Feedback) string {
	id := now.UnixMilli()
	floor := s.lastID
	for _, fb := range existing {
		if n, err := strconv.ParseInt(fb.ID, 10, 64); err == nil && n > floor {
			floor = n
		}
	}
	if id <= floor {
		id = floor + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func indexOf(items []types.Feedback, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
