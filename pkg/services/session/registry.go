package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultTTL         = 2 * time.Hour
	DefaultMaxSessions = 64
)

var ErrNotFound = errors.New("session not found")

// Detacher releases engine resources held for a dataset.
type Detacher interface {
	Detach(ctx context.Context, datasetID string) error
}

type Options struct {
	TTL         time.Duration
	MaxSessions int
}

type Session struct {
	ID        string
	Dataset   *domain.Dataset
	CreatedAt time.Time
	LastSeen  time.Time
}

// Registry holds one dataset per session. Idle sessions expire lazily on the
// next access; when full, the least recently used session is evicted.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	detacher Detacher
	opts     Options
	now      func() time.Time
}

func NewRegistry(detacher Detacher, opts Options) *Registry {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	return &Registry{
		sessions: make(map[string]*Session),
		detacher: detacher,
		opts:     opts,
		now:      time.Now,
	}
}

func (r *Registry) Create(ctx context.Context, ds *domain.Dataset) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.expireLocked(ctx, now)
	for len(r.sessions) >= r.opts.MaxSessions {
		r.evictOldestLocked(ctx)
	}

	s := &Session{
		ID:        uuid.NewString(),
		Dataset:   ds,
		CreatedAt: now,
		LastSeen:  now,
	}
	r.sessions[s.ID] = s

	zerolog.Ctx(ctx).Info().Str("session", s.ID).Str("dataset", ds.ID()).Msg("session created")
	return *s
}

func (r *Registry) Get(ctx context.Context, id string) (Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return Session{}, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// The session may have been dropped between the two locks.
	s, ok = r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	now := r.now()
	if r.expired(s, now) {
		r.dropLocked(ctx, s, "expired")
		return Session{}, ErrNotFound
	}
	s.LastSeen = now
	return *s, nil
}

// Replace swaps the dataset of a live session and detaches the previous one.
func (r *Registry) Replace(ctx context.Context, id string, ds *domain.Dataset) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	now := r.now()
	if !ok {
		return Session{}, ErrNotFound
	}
	if r.expired(s, now) {
		r.dropLocked(ctx, s, "expired")
		return Session{}, ErrNotFound
	}

	old := s.Dataset
	s.Dataset = ds
	s.LastSeen = now
	r.detach(ctx, old)

	zerolog.Ctx(ctx).Info().
		Str("session", id).
		Str("dataset", ds.ID()).
		Str("previous", old.ID()).
		Msg("session dataset replaced")
	return *s, nil
}

func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	r.dropLocked(ctx, s, "deleted")
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops every idle session and returns how many were dropped.
func (r *Registry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.sessions)
	r.expireLocked(ctx, r.now())
	return before - len(r.sessions)
}

// Close drops every session.
func (r *Registry) Close(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		r.dropLocked(ctx, s, "closed")
	}
}

func (r *Registry) expired(s *Session, now time.Time) bool {
	return now.Sub(s.LastSeen) > r.opts.TTL
}

func (r *Registry) expireLocked(ctx context.Context, now time.Time) {
	for _, s := range r.sessions {
		if r.expired(s, now) {
			r.dropLocked(ctx, s, "expired")
		}
	}
}

func (r *Registry) evictOldestLocked(ctx context.Context) {
	var oldest *Session
	for _, s := range r.sessions {
		if oldest == nil || s.LastSeen.Before(oldest.LastSeen) {
			oldest = s
		}
	}
	if oldest != nil {
		r.dropLocked(ctx, oldest, "evicted")
	}
}

func (r *Registry) dropLocked(ctx context.Context, s *Session, reason string) {
	delete(r.sessions, s.ID)
	r.detach(ctx, s.Dataset)
	zerolog.Ctx(ctx).Info().Str("session", s.ID).Str("reason", reason).Msg("session dropped")
}

func (r *Registry) detach(ctx context.Context, ds *domain.Dataset) {
	if r.detacher == nil || ds == nil {
		return
	}
	if err := r.detacher.Detach(ctx, ds.ID()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("dataset", ds.ID()).Msg("failed to detach dataset")
	}
}
