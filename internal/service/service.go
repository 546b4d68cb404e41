package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/domain"
)

type CreateMeetingInput struct {
	Name            string
	Password        string
	Owner           domain.OwnerCredentials
	IsPublic        bool
	MaxParticipants int
}

type JoinInput struct {
	MeetingID string
	Nickname  string
	Password  string
	// Owner is an optional claim; when present it must verify or the join
	// fails outright.
	Owner *domain.OwnerCredentials
}

type DepositInput struct {
	MeetingID string
	From      uuid.UUID
	To        uuid.UUID
	Kind      domain.SignalKind
	Payload   []byte
}

type MeetingInteractor interface {
	CreateMeeting(ctx context.Context, in CreateMeetingInput) (*domain.Meeting, error)
	GetActiveMeeting(ctx context.Context, id string) (*domain.Meeting, error)
	ListPublicMeetings(ctx context.Context, search string) ([]*domain.Meeting, error)
	EndMeeting(ctx context.Context, meetingID string, requesterID uuid.UUID) error
	VerifyOwner(ctx context.Context, meetingID string, creds domain.OwnerCredentials) (*domain.Meeting, error)
}

type RosterInteractor interface {
	Join(ctx context.Context, in JoinInput) (*domain.Participant, *domain.Meeting, error)
	SetMuted(ctx context.Context, id uuid.UUID, muted bool) (*domain.Participant, error)
	SetConnected(ctx context.Context, id uuid.UUID, connected bool) (*domain.Participant, error)
	Leave(ctx context.Context, id uuid.UUID) (*domain.Participant, error)
	Reconnect(ctx context.Context, id uuid.UUID) (*domain.Participant, error)
	ListConnected(ctx context.Context, meetingID string) ([]*domain.Participant, error)
}

type SignalInteractor interface {
	Deposit(ctx context.Context, in DepositInput) (uuid.UUID, error)
	Drain(ctx context.Context, meetingID string, recipient uuid.UUID) ([]*domain.Signal, error)
}
