package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gonotes/notes-service/internal/errs"
	"github.com/gonotes/notes-service/internal/note"
	"github.com/gonotes/notes-service/internal/note/repository"
	"github.com/gonotes/notes-service/internal/storage"
)

const (
	MsgNotFound = "Note not found"
	MsgUpdated  = "Note updated successfully"
	MsgDeleted  = "Note deleted successfully"
)

// Authenticator decides whether a token may use the service.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) error
}

// Service defines the note operations used by the handler layer. Every
// operation authenticates first and stops on failure.
type Service interface {
	Authenticate(ctx context.Context, token string) error
	Create(ctx context.Context, token, text string) (string, error)
	GetContent(ctx context.Context, token, id string) (*note.Content, error)
	GetInfo(ctx context.Context, token, id string) (*note.Info, error)
	Update(ctx context.Context, token, id, text string) error
	Delete(ctx context.Context, token, id string) error
	List(ctx context.Context, token string) ([]string, error)
}

// New returns a Service persisting notes in records. A nil clock uses the
// system clock.
func New(records storage.Store, auth Authenticator, clock Clock) Service {
	if clock == nil {
		clock = SystemClock()
	}
	return &noteService{
		repo:  repository.New(records),
		auth:  auth,
		clock: clock,
		locks: make(map[string]*idLock),
	}
}

type noteService struct {
	repo  *repository.Repo
	auth  Authenticator
	clock Clock

	mu    sync.Mutex
	locks map[string]*idLock
}

type idLock struct {
	sync.Mutex
	refs int
}

// lock serializes read-modify-write on one id within this process.
func (s *noteService) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &idLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func (s *noteService) Authenticate(ctx context.Context, token string) error {
	return s.auth.Authenticate(ctx, token)
}

func (s *noteService) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *noteService) Create(ctx context.Context, token, text string) (string, error) {
	if err := s.Authenticate(ctx, token); err != nil {
		return "", err
	}
	now := s.now()
	n := &note.Note{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return "", err
	}
	return n.ID, nil
}

func (s *noteService) get(ctx context.Context, id string) (*note.Note, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.NotFound, MsgNotFound)
		}
		return nil, err
	}
	return n, nil
}

func (s *noteService) GetContent(ctx context.Context, token, id string) (*note.Content, error) {
	if err := s.Authenticate(ctx, token); err != nil {
		return nil, err
	}
	n, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &note.Content{ID: n.ID, Text: n.Text}, nil
}

func (s *noteService) GetInfo(ctx context.Context, token, id string) (*note.Info, error) {
	if err := s.Authenticate(ctx, token); err != nil {
		return nil, err
	}
	n, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &note.Info{CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt}, nil
}

func (s *noteService) Update(ctx context.Context, token, id, text string) error {
	if err := s.Authenticate(ctx, token); err != nil {
		return err
	}
	unlock := s.lock(id)
	defer unlock()

	n, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	now := s.now()
	// updated_at must move forward even if the clock did not
	if !now.After(n.UpdatedAt) {
		now = n.UpdatedAt.Add(time.Microsecond)
	}
	n.Text = text
	n.UpdatedAt = now
	return s.repo.Put(ctx, n)
}

func (s *noteService) Delete(ctx context.Context, token, id string) error {
	if err := s.Authenticate(ctx, token); err != nil {
		return err
	}
	unlock := s.lock(id)
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.New(errs.NotFound, MsgNotFound)
		}
		return err
	}
	return nil
}

func (s *noteService) List(ctx context.Context, token string) ([]string, error) {
	if err := s.Authenticate(ctx, token); err != nil {
		return nil, err
	}
	ids, err := s.repo.IDs(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
