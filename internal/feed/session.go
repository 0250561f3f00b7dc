// Package feed owns the live dashboard state of one connected tutor: the
// capped recent-notification list, the unread-message badge, and the
// realtime triggers that keep both fresh. One Session exists per websocket
// connection and is torn down with it, so listeners never outlive the view
// that opened them.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutorhub/internal/domain/matching"
	"tutorhub/internal/realtime"
	"tutorhub/internal/repository"
	"tutorhub/internal/usecase"
)

const (
	pushNotification       = "notification"
	pushUnreadCount        = "unread_count"
	pushRequirementsReload = "requirements_reload"
	pushSnapshot           = "snapshot"
)

type pushEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Sink receives encoded push frames; the ws handler points it at the
// client's send queue.
type Sink func(message []byte)

type Deps struct {
	Bus           *realtime.Bus
	Notifications *usecase.NotificationFeed
	Messages      *usecase.Messages
	Profiles      repository.ProfileRepository
	Logger        *zap.Logger
	RecentLimit   int
}

// Session is the server-side Notification/Badge Feed for one connection.
type Session struct {
	tutorID uuid.UUID
	deps    Deps

	mu       sync.Mutex
	recent   []usecase.NotificationView
	unread   int
	subjects []string

	subs      []*realtime.Subscription
	sink      Sink
	closeOnce sync.Once
}

// Open loads the initial badge state and registers the session's realtime
// subscriptions. The caller must Close the session when the connection ends.
func Open(ctx context.Context, tutorID uuid.UUID, sink Sink, deps Deps) (*Session, error) {
	if tutorID == uuid.Nil {
		return nil, usecase.ErrUnauthorized
	}
	if deps.RecentLimit <= 0 {
		deps.RecentLimit = 5
	}

	s := &Session{tutorID: tutorID, deps: deps, sink: sink}

	recent, err := deps.Notifications.Recent(ctx, tutorID)
	if err == nil {
		s.recent = recent
	}
	if unread, err := deps.Messages.UnreadCount(ctx, tutorID); err == nil {
		s.unread = unread
	}
	s.subjects = s.loadSubjects(ctx)

	if deps.Bus != nil {
		s.subs = []*realtime.Subscription{
			deps.Bus.Subscribe(realtime.Filter{Table: realtime.TableNotifications, Ops: []realtime.Op{realtime.OpInsert}}, s.onNotification),
			deps.Bus.Subscribe(realtime.Filter{Table: realtime.TableMessages}, s.onMessage),
			deps.Bus.Subscribe(realtime.Filter{Table: realtime.TableRequirements, Ops: []realtime.Op{realtime.OpInsert}}, s.onRequirement),
			deps.Bus.Subscribe(realtime.Filter{Table: realtime.TableMatches, Ops: []realtime.Op{realtime.OpInsert}}, s.onMatch),
		}
	}

	return s, nil
}

// Close releases every bus subscription. Idempotent; safe to call from the
// ws reader teardown and the shutdown path both.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		for _, sub := range s.subs {
			sub.Close()
		}
	})
}

// Snapshot returns the current badge state; the ws handler sends it as the
// first frame after the connection opens.
func (s *Session) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return encodePush(pushSnapshot, map[string]any{
		"notifications": snapshotViews(s.recent),
		"unread_count":  s.unread,
	})
}

func (s *Session) loadSubjects(ctx context.Context) []string {
	tp, err := s.deps.Profiles.GetTutorProfile(ctx, s.tutorID)
	if err != nil {
		if !errors.Is(err, repository.ErrTutorProfileNotFound) && s.deps.Logger != nil {
			s.deps.Logger.Warn("feed session: tutor profile load failed", zap.Error(err))
		}
		return nil
	}
	return tp.Subjects
}

// onNotification prepends a notification addressed to this tutor and drops
// the oldest entry past the cap.
func (s *Session) onNotification(e realtime.Event) {
	var p realtime.NotificationPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil || p.UserID != s.tutorID.String() {
		return
	}

	view := s.buildView(p)

	s.mu.Lock()
	s.recent = append([]usecase.NotificationView{view}, s.recent...)
	if len(s.recent) > s.deps.RecentLimit {
		s.recent = s.recent[:s.deps.RecentLimit]
	}
	s.mu.Unlock()

	s.push(pushNotification, snapshotViews([]usecase.NotificationView{view})[0])
}

// onMessage refreshes the unread badge with a fresh count whenever one of
// this tutor's messages changes; counting beats arithmetic under races.
func (s *Session) onMessage(e realtime.Event) {
	var p realtime.MessagePayload
	if err := json.Unmarshal(e.Payload, &p); err != nil || p.ReceiverID != s.tutorID.String() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	unread, err := s.deps.Messages.RefreshUnreadCount(ctx, s.tutorID)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.unread = unread
	s.mu.Unlock()

	s.push(pushUnreadCount, map[string]int{"unread_count": unread})
}

// onRequirement gates the reload push behind the cheap subject pre-check so
// unrelated inserts do not thrash every connected dashboard.
func (s *Session) onRequirement(e realtime.Event) {
	var p realtime.RequirementPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return
	}
	if p.Status != repository.RequirementStatusActive {
		return
	}
	if !matching.SubjectPrecheck(s.subjects, p.Subject) {
		return
	}
	s.push(pushRequirementsReload, map[string]string{"requirement_id": p.ID})
}

// onMatch is the Response Coordinator's reload signal: this tutor's own
// response just committed, so the worklist annotation changed.
func (s *Session) onMatch(e realtime.Event) {
	var p realtime.MatchPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil || p.TutorID != s.tutorID.String() {
		return
	}
	s.push(pushRequirementsReload, map[string]string{"requirement_id": p.RequirementID})
}

// buildView resolves the originating student for a pushed notification,
// degrading to an identity-less view on any failure.
func (s *Session) buildView(p realtime.NotificationPayload) usecase.NotificationView {
	n := repository.Notification{
		Type:    p.Type,
		Title:   p.Title,
		Message: p.Message,
		Data:    p.Data,
	}
	if id, err := uuid.Parse(p.ID); err == nil {
		n.ID = id
	}
	if id, err := uuid.Parse(p.UserID); err == nil {
		n.UserID = id
	}
	if ts, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
		n.CreatedAt = ts
	}

	view := usecase.NotificationView{Notification: n}

	var data struct {
		StudentID string `json:"student_id"`
		SenderID  string `json:"sender_id"`
	}
	if err := json.Unmarshal(p.Data, &data); err != nil {
		return view
	}
	raw := data.StudentID
	if raw == "" {
		raw = data.SenderID
	}
	studentID, err := uuid.Parse(raw)
	if err != nil {
		return view
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	profile, err := s.deps.Profiles.GetByID(ctx, studentID)
	if err != nil {
		return view
	}
	view.Student = &usecase.StudentIdentity{
		ID:       profile.ID,
		FullName: profile.FullName,
		PhotoURL: profile.PhotoURL,
		City:     profile.City,
		Area:     profile.Area,
	}
	return view
}

func (s *Session) push(kind string, data any) {
	if s.sink == nil {
		return
	}
	s.sink(encodePush(kind, data))
}

func encodePush(kind string, data any) []byte {
	b, err := json.Marshal(pushEnvelope{Type: kind, Data: data})
	if err != nil {
		return nil
	}
	return b
}

type viewJSON struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
	Student   *studentJSON    `json:"student,omitempty"`
}

type studentJSON struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	PhotoURL string `json:"photo_url"`
	City     string `json:"city"`
	Area     string `json:"area"`
}

func snapshotViews(views []usecase.NotificationView) []viewJSON {
	out := make([]viewJSON, 0, len(views))
	for _, v := range views {
		j := viewJSON{
			ID:        v.Notification.ID.String(),
			Type:      v.Notification.Type,
			Title:     v.Notification.Title,
			Message:   v.Notification.Message,
			Data:      v.Notification.Data,
			IsRead:    v.Notification.IsRead,
			CreatedAt: v.Notification.CreatedAt,
		}
		if v.Student != nil {
			j.Student = &studentJSON{
				ID:       v.Student.ID.String(),
				FullName: v.Student.FullName,
				PhotoURL: v.Student.PhotoURL,
				City:     v.Student.City,
				Area:     v.Student.Area,
			}
		}
		out = append(out, j)
	}
	return out
}
