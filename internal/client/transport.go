// Package client is the per-participant consumer of the relay: it polls
// the signaling mailbox, drives one peer state machine per remote
// participant, and keeps a local snapshot of the meeting roster.
package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/domain"
)

// Signal is the client-side view of one relayed message.
type Signal struct {
	ID        uuid.UUID         `json:"id"`
	MeetingID string            `json:"meeting_id"`
	From      uuid.UUID         `json:"from_participant"`
	To        uuid.UUID         `json:"to_participant"`
	Kind      domain.SignalKind `json:"kind"`
	Payload   json.RawMessage   `json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

// MeetingView is the client-side snapshot of a meeting and its connected
// roster.
type MeetingView struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	IsPublic            bool              `json:"is_public"`
	MaxParticipants     int               `json:"max_participants"`
	CurrentParticipants int               `json:"current_participants"`
	HostID              *uuid.UUID        `json:"host_id,omitempty"`
	Status              string            `json:"status"`
	CreatedAt           time.Time         `json:"created_at"`
	Participants        []ParticipantView `json:"participants,omitempty"`
}

type ParticipantView struct {
	ID          uuid.UUID `json:"id"`
	MeetingID   string    `json:"meeting_id"`
	Nickname    string    `json:"nickname"`
	IsHost      bool      `json:"is_host"`
	IsMuted     bool      `json:"is_muted"`
	IsConnected bool      `json:"is_connected"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Signaler is the mailbox as seen from a client session.
type Signaler interface {
	Deposit(ctx context.Context, meetingID string, from, to uuid.UUID, kind domain.SignalKind, payload json.RawMessage) error
	Drain(ctx context.Context, meetingID string, recipient uuid.UUID) ([]Signal, error)
}

// MeetingFetcher re-fetches the meeting and roster for the refresh loop.
type MeetingFetcher interface {
	FetchMeeting(ctx context.Context, meetingID string) (*MeetingView, error)
}
