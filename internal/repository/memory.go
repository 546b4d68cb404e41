package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/domain"
)

// In-memory implementations back local development and tests. All methods
// copy rows on the way in and out so callers never share mutable state
// with the store.

type InMemoryMeetingRepository struct {
	mu       sync.RWMutex
	meetings map[string]*domain.Meeting
}

func NewInMemoryMeetingRepository() *InMemoryMeetingRepository {
	return &InMemoryMeetingRepository{meetings: make(map[string]*domain.Meeting)}
}

func (r *InMemoryMeetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.meetings[meeting.ID]; ok {
		return ErrMeetingCodeExists
	}

	m := *meeting
	r.meetings[meeting.ID] = &m
	return nil
}

func (r *InMemoryMeetingRepository) GetByID(ctx context.Context, id string) (*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	meeting, ok := r.meetings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	m := *meeting
	return &m, nil
}

func (r *InMemoryMeetingRepository) ListPublicActive(ctx context.Context, search string) ([]*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	search = strings.ToLower(search)

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Meeting, 0)
	for _, meeting := range r.meetings {
		if !meeting.IsPublic || meeting.Status != domain.MeetingStatusActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(meeting.Name), search) &&
			!strings.Contains(strings.ToLower(meeting.ID), search) {
			continue
		}
		m := *meeting
		result = append(result, &m)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryMeetingRepository) SetHost(ctx context.Context, meetingID string, hostID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	meeting, ok := r.meetings[meetingID]
	if !ok {
		return domain.ErrNotFound
	}

	id := hostID
	meeting.HostID = &id
	return nil
}

func (r *InMemoryMeetingRepository) End(ctx context.Context, meetingID string, endedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	meeting, ok := r.meetings[meetingID]
	if !ok {
		return domain.ErrNotFound
	}

	at := endedAt.UTC()
	meeting.Status = domain.MeetingStatusEnded
	meeting.EndedAt = &at
	return nil
}

type InMemoryParticipantRepository struct {
	mu           sync.RWMutex
	participants map[uuid.UUID]*domain.Participant
}

func NewInMemoryParticipantRepository() *InMemoryParticipantRepository {
	return &InMemoryParticipantRepository{participants: make(map[uuid.UUID]*domain.Participant)}
}

func (r *InMemoryParticipantRepository) Create(ctx context.Context, participant *domain.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p := *participant
	r.participants[participant.ID] = &p
	return nil
}

func (r *InMemoryParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	participant, ok := r.participants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	p := *participant
	return &p, nil
}

func (r *InMemoryParticipantRepository) Update(ctx context.Context, participant *domain.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.participants[participant.ID]; !ok {
		return domain.ErrNotFound
	}

	p := *participant
	r.participants[participant.ID] = &p
	return nil
}

func (r *InMemoryParticipantRepository) ListConnected(ctx context.Context, meetingID string) ([]*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Participant, 0)
	for _, participant := range r.participants {
		if participant.MeetingID != meetingID || !participant.IsConnected {
			continue
		}
		p := *participant
		result = append(result, &p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].JoinedAt.Before(result[j].JoinedAt)
	})
	return result, nil
}

func (r *InMemoryParticipantRepository) CountConnected(ctx context.Context, meetingID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, participant := range r.participants {
		if participant.MeetingID == meetingID && participant.IsConnected {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryParticipantRepository) DisconnectAll(ctx context.Context, meetingID string, leftAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	at := leftAt.UTC()
	for _, participant := range r.participants {
		if participant.MeetingID != meetingID || !participant.IsConnected {
			continue
		}
		participant.IsConnected = false
		t := at
		participant.LeftAt = &t
	}
	return nil
}

type InMemorySignalRepository struct {
	mu      sync.Mutex
	signals []*domain.Signal
	seq     uint64
	order   map[uuid.UUID]uint64
}

func NewInMemorySignalRepository() *InMemorySignalRepository {
	return &InMemorySignalRepository{order: make(map[uuid.UUID]uint64)}
}

func (r *InMemorySignalRepository) Create(ctx context.Context, signal *domain.Signal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := *signal
	r.seq++
	r.order[s.ID] = r.seq
	r.signals = append(r.signals, &s)
	return nil
}

func (r *InMemorySignalRepository) Drain(ctx context.Context, meetingID string, recipient uuid.UUID) ([]*domain.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Selecting and flagging under one lock is what makes delivery
	// at-most-once per recipient.
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*domain.Signal, 0)
	for _, signal := range r.signals {
		if signal.Processed || signal.MeetingID != meetingID || signal.To != recipient {
			continue
		}
		signal.Processed = true
		s := *signal
		result = append(result, &s)
	}

	sort.Slice(result, func(i, j int) bool {
		return r.order[result[i].ID] < r.order[result[j].ID]
	})
	return result, nil
}
