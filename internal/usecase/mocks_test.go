package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"tutorhub/internal/realtime"
	"tutorhub/internal/repository"
)

type stubRequirementRepo struct {
	active    []repository.Requirement
	activeErr error
	byID      map[uuid.UUID]repository.Requirement
	getErr    error
}

func (s *stubRequirementRepo) ListActive(context.Context) ([]repository.Requirement, error) {
	return s.active, s.activeErr
}

func (s *stubRequirementRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Requirement, error) {
	if s.getErr != nil {
		return repository.Requirement{}, s.getErr
	}
	if r, ok := s.byID[id]; ok {
		return r, nil
	}
	return repository.Requirement{}, repository.ErrRequirementNotFound
}

type stubProfileRepo struct {
	profiles    map[uuid.UUID]repository.Profile
	tutors      map[uuid.UUID]repository.TutorProfile
	created     []repository.Profile
	upserted    []repository.TutorProfile
	createErr   error
	findErr     error
	getTutorErr error
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{
		profiles: map[uuid.UUID]repository.Profile{},
		tutors:   map[uuid.UUID]repository.TutorProfile{},
	}
}

func (s *stubProfileRepo) Create(_ context.Context, p repository.Profile) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.profiles[p.ID] = p
	s.created = append(s.created, p)
	return nil
}

func (s *stubProfileRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Profile, error) {
	if p, ok := s.profiles[id]; ok {
		return p, nil
	}
	return repository.Profile{}, repository.ErrProfileNotFound
}

func (s *stubProfileRepo) GetByEmail(_ context.Context, email string) (repository.Profile, error) {
	for _, p := range s.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return repository.Profile{}, repository.ErrProfileNotFound
}

func (s *stubProfileRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]repository.Profile, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := make(map[uuid.UUID]repository.Profile, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *stubProfileRepo) GetTutorProfile(_ context.Context, userID uuid.UUID) (repository.TutorProfile, error) {
	if s.getTutorErr != nil {
		return repository.TutorProfile{}, s.getTutorErr
	}
	if tp, ok := s.tutors[userID]; ok {
		return tp, nil
	}
	return repository.TutorProfile{}, repository.ErrTutorProfileNotFound
}

func (s *stubProfileRepo) UpsertTutorProfile(_ context.Context, tp repository.TutorProfile) error {
	s.tutors[tp.UserID] = tp
	s.upserted = append(s.upserted, tp)
	return nil
}

type stubMatchRepo struct {
	upsertErr error
	upserts   []repository.Match
	byReq     map[uuid.UUID]repository.Match
	findErr   error
}

func (s *stubMatchRepo) Upsert(_ context.Context, m repository.Match) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts = append(s.upserts, m)
	return nil
}

func (s *stubMatchRepo) FindByTutorAndRequirements(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]repository.Match, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := make(map[uuid.UUID]repository.Match, len(ids))
	for _, id := range ids {
		if m, ok := s.byReq[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

type stubMessageRepo struct {
	insertErr error
	inserted  []repository.Message
	unread    int
	unreadErr error
	between   []repository.Message
	markErr   error
	marked    int64
}

func (s *stubMessageRepo) Insert(_ context.Context, m repository.Message) (repository.Message, error) {
	if s.insertErr != nil {
		return repository.Message{}, s.insertErr
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.inserted = append(s.inserted, m)
	return m, nil
}

func (s *stubMessageRepo) CountUnread(context.Context, uuid.UUID) (int, error) {
	return s.unread, s.unreadErr
}

func (s *stubMessageRepo) ListBetween(context.Context, uuid.UUID, uuid.UUID, int) ([]repository.Message, error) {
	return s.between, nil
}

func (s *stubMessageRepo) MarkConversationRead(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return s.marked, s.markErr
}

type stubNotificationRepo struct {
	insertErr    error
	inserted     []repository.Notification
	recent       []repository.Notification
	recentErr    error
	markAffected int64
	markErr      error
}

func (s *stubNotificationRepo) Insert(_ context.Context, n repository.Notification) (repository.Notification, error) {
	if s.insertErr != nil {
		return repository.Notification{}, s.insertErr
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	s.inserted = append(s.inserted, n)
	return n, nil
}

func (s *stubNotificationRepo) ListRecentByType(context.Context, uuid.UUID, string, int) ([]repository.Notification, error) {
	return s.recent, s.recentErr
}

func (s *stubNotificationRepo) MarkRead(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return s.markAffected, s.markErr
}

type stubBus struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (b *stubBus) Publish(_ context.Context, e realtime.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *stubBus) published() []realtime.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]realtime.Event, len(b.events))
	copy(out, b.events)
	return out
}

type stubCache struct {
	store   map[string][]byte
	getErr  error
	deletes []string
}

func newStubCache() *stubCache {
	return &stubCache{store: map[string][]byte{}}
}

func (c *stubCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (c *stubCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = raw
	return nil
}

func (c *stubCache) Delete(_ context.Context, key string) error {
	delete(c.store, key)
	c.deletes = append(c.deletes, key)
	return nil
}
