package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/domain"
)

// ErrMeetingCodeExists signals a code collision on insert; the registry
// retries with a fresh code.
var ErrMeetingCodeExists = errors.New("meeting code already exists")

type MeetingRepository interface {
	Create(ctx context.Context, meeting *domain.Meeting) error
	GetByID(ctx context.Context, id string) (*domain.Meeting, error)
	// ListPublicActive returns active public meetings newest-first. A
	// non-empty search matches name or code case-insensitively.
	ListPublicActive(ctx context.Context, search string) ([]*domain.Meeting, error)
	SetHost(ctx context.Context, meetingID string, hostID uuid.UUID) error
	End(ctx context.Context, meetingID string, endedAt time.Time) error
}

type ParticipantRepository interface {
	Create(ctx context.Context, participant *domain.Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error)
	Update(ctx context.Context, participant *domain.Participant) error
	ListConnected(ctx context.Context, meetingID string) ([]*domain.Participant, error)
	CountConnected(ctx context.Context, meetingID string) (int, error)
	DisconnectAll(ctx context.Context, meetingID string, leftAt time.Time) error
}

type SignalRepository interface {
	Create(ctx context.Context, signal *domain.Signal) error
	// Drain returns every unprocessed signal addressed to recipient within
	// the meeting in creation order, atomically marking exactly the
	// returned set processed. A signal is delivered to at most one caller.
	Drain(ctx context.Context, meetingID string, recipient uuid.UUID) ([]*domain.Signal, error)
}
