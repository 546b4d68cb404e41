package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/qb9r2873g/voice-room/lib/logger/sl"
)

const DefaultRefreshInterval = 5 * time.Second

// Session is the single owned aggregate of one participant's view of a
// meeting: the meeting snapshot, the connected roster and the local
// participant. State changes go through explicit transition methods; no
// ambient globals, no implicit credential storage.
type Session struct {
	fetcher MeetingFetcher
	log     *slog.Logger

	refreshInterval time.Duration

	mu      sync.RWMutex
	meeting *MeetingView
	self    *ParticipantView
	ended   bool

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSession(fetcher MeetingFetcher, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		fetcher:         fetcher,
		log:             log,
		refreshInterval: DefaultRefreshInterval,
	}
}

func (s *Session) SetRefreshInterval(interval time.Duration) {
	if interval > 0 {
		s.refreshInterval = interval
	}
}

// Begin seeds the session with the join result.
func (s *Session) Begin(meeting MeetingView, self ParticipantView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meeting = &meeting
	s.self = &self
	s.ended = false
}

// ApplyMeeting replaces the meeting snapshot with a fresh read. When the
// local participant has dropped off the connected roster the session is
// marked ended.
func (s *Session) ApplyMeeting(meeting MeetingView) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meeting = &meeting
	if s.self == nil {
		return
	}
	for i := range meeting.Participants {
		if meeting.Participants[i].ID == s.self.ID {
			p := meeting.Participants[i]
			s.self = &p
			return
		}
	}
	s.ended = true
}

// MarkEnded records a terminal state discovered out-of-band, such as the
// meeting returning NotFound on refresh.
func (s *Session) MarkEnded() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
}

func (s *Session) Meeting() *MeetingView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.meeting == nil {
		return nil
	}
	m := *s.meeting
	return &m
}

func (s *Session) Self() *ParticipantView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.self == nil {
		return nil
	}
	p := *s.self
	return &p
}

func (s *Session) Ended() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ended
}

// Peers lists the connected remote participants, excluding the local one.
func (s *Session) Peers() []ParticipantView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.meeting == nil {
		return nil
	}
	peers := make([]ParticipantView, 0, len(s.meeting.Participants))
	for _, p := range s.meeting.Participants {
		if s.self != nil && p.ID == s.self.ID {
			continue
		}
		peers = append(peers, p)
	}
	return peers
}

// IsHost reports whether the local participant currently holds the host
// flag.
func (s *Session) IsHost() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.self != nil && s.self.IsHost
}

// StartRefresh launches the read-only refresh loop. An ended meeting is
// discovered at the next tick; staleness is bounded by one interval.
func (s *Session) StartRefresh(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	// The loop owns its completion channel directly; StopRefresh nilling
	// the field must not be able to reach the deferred close.
	go s.refreshLoop(ctx, done)
}

func (s *Session) refreshLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh performs one read of the meeting. Failures are logged and the
// loop carries on; NotFound means the meeting is gone and ends the
// session.
func (s *Session) Refresh(ctx context.Context) {
	meeting := s.Meeting()
	if meeting == nil {
		return
	}

	fresh, err := s.fetcher.FetchMeeting(ctx, meeting.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrMeetingEnded) {
			s.MarkEnded()
			return
		}
		// Transient failure; the next tick retries.
		s.log.Warn("meeting refresh failed", sl.Err(err))
		return
	}
	s.ApplyMeeting(*fresh)
}

// StopRefresh cancels the loop; safe to call repeatedly.
func (s *Session) StopRefresh() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// RemotePeerIDs is a convenience for wiring the orchestrator: the set of
// connected peers to dial after joining.
func (s *Session) RemotePeerIDs() []uuid.UUID {
	peers := s.Peers()
	ids := make([]uuid.UUID, 0, len(peers))
	for _, p := range peers {
		ids = append(ids, p.ID)
	}
	return ids
}
