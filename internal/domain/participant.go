package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxNicknameLength = 20

// Participant is one occupant of a meeting. The meeting association is
// fixed at join time and never reassigned.
type Participant struct {
	ID          uuid.UUID
	MeetingID   string
	Nickname    string
	IsHost      bool
	IsMuted     bool
	IsConnected bool
	JoinedAt    time.Time
	LeftAt      *time.Time
}

func NewParticipant(meetingID, nickname string) (*Participant, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname is required", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLength {
		return nil, fmt.Errorf("%w: nickname must be at most %d characters", ErrInvalidArgument, maxNicknameLength)
	}

	return &Participant{
		ID:          uuid.New(),
		MeetingID:   meetingID,
		Nickname:    nickname,
		IsConnected: true,
		JoinedAt:    time.Now().UTC(),
	}, nil
}

// Disconnect marks the participant as left. It reports whether the state
// changed so callers can skip the store write on repeat calls.
func (p *Participant) Disconnect(at time.Time) bool {
	if !p.IsConnected {
		return false
	}
	at = at.UTC()
	p.IsConnected = false
	p.LeftAt = &at
	return true
}

// Rejoin clears the leave timestamp and marks the participant connected.
func (p *Participant) Rejoin() {
	p.IsConnected = true
	p.LeftAt = nil
}
