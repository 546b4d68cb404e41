package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MeetingStatus string

const (
	MeetingStatusActive MeetingStatus = "active"
	MeetingStatusEnded  MeetingStatus = "ended"
)

const (
	MinParticipants     = 2
	MaxParticipants     = 10
	DefaultParticipants = 6

	MeetingCodeLength = 6
)

// Meeting is a password-protected, capacity-bounded audio session
// identified by a short human-typeable code.
type Meeting struct {
	ID              string
	Name            string
	PasswordHash    string
	OwnerTokenHash  string
	OwnerPrincipal  string
	IsPublic        bool
	MaxParticipants int
	HostID          *uuid.UUID
	Status          MeetingStatus
	CreatedAt       time.Time
	EndedAt         *time.Time
}

// NewMeeting constructs an active meeting under the given code. The host
// reference stays empty until the first participant joins. A zero
// maxParticipants selects the default capacity.
func NewMeeting(code, name, passwordHash, ownerTokenHash, ownerPrincipal string, isPublic bool, maxParticipants int) (*Meeting, error) {
	if len(code) != MeetingCodeLength {
		return nil, fmt.Errorf("%w: meeting code must be %d characters", ErrInvalidArgument, MeetingCodeLength)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: meeting name is required", ErrInvalidArgument)
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("%w: password hash is required", ErrInvalidArgument)
	}
	if maxParticipants == 0 {
		maxParticipants = DefaultParticipants
	}
	if maxParticipants < MinParticipants || maxParticipants > MaxParticipants {
		return nil, fmt.Errorf("%w: max participants must be between %d and %d", ErrInvalidArgument, MinParticipants, MaxParticipants)
	}

	return &Meeting{
		ID:              code,
		Name:            name,
		PasswordHash:    passwordHash,
		OwnerTokenHash:  ownerTokenHash,
		OwnerPrincipal:  ownerPrincipal,
		IsPublic:        isPublic,
		MaxParticipants: maxParticipants,
		Status:          MeetingStatusActive,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

func (m *Meeting) IsActive() bool {
	return m != nil && m.Status == MeetingStatusActive
}

// End moves the meeting into its terminal state. Ending an already ended
// meeting reports ErrMeetingEnded; the transition is one-way.
func (m *Meeting) End(at time.Time) error {
	if m.Status == MeetingStatusEnded {
		return ErrMeetingEnded
	}
	at = at.UTC()
	m.Status = MeetingStatusEnded
	m.EndedAt = &at
	return nil
}
