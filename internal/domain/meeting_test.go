package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeeting(t *testing.T) {
	meeting, err := NewMeeting("ABC123", "Standup", "pw-hash", "token-hash", "principal", true, 4)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", meeting.ID)
	assert.Equal(t, MeetingStatusActive, meeting.Status)
	assert.Equal(t, 4, meeting.MaxParticipants)
	assert.Nil(t, meeting.HostID)
	assert.Nil(t, meeting.EndedAt)
	assert.True(t, meeting.IsActive())
}

func TestNewMeetingValidation(t *testing.T) {
	cases := []struct {
		name     string
		code     string
		title    string
		pwHash   string
		capacity int
	}{
		{name: "short code", code: "ABC", title: "Standup", pwHash: "h", capacity: 4},
		{name: "long code", code: "ABC1234", title: "Standup", pwHash: "h", capacity: 4},
		{name: "blank name", code: "ABC123", title: "  ", pwHash: "h", capacity: 4},
		{name: "no password hash", code: "ABC123", title: "Standup", pwHash: "", capacity: 4},
		{name: "capacity below minimum", code: "ABC123", title: "Standup", pwHash: "h", capacity: 1},
		{name: "capacity above maximum", code: "ABC123", title: "Standup", pwHash: "h", capacity: 11},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMeeting(tc.code, tc.title, tc.pwHash, "th", "p", true, tc.capacity)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestMeetingEndIsOneWay(t *testing.T) {
	meeting, err := NewMeeting("ABC123", "Standup", "h", "th", "p", true, 0)
	require.NoError(t, err)

	at := time.Now()
	require.NoError(t, meeting.End(at))
	assert.Equal(t, MeetingStatusEnded, meeting.Status)
	require.NotNil(t, meeting.EndedAt)
	assert.Equal(t, at.UTC(), *meeting.EndedAt)
	assert.False(t, meeting.IsActive())

	assert.ErrorIs(t, meeting.End(time.Now()), ErrMeetingEnded)
}

func TestNewParticipantTrimsNickname(t *testing.T) {
	p, err := NewParticipant("ABC123", "  Alice  ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Nickname)
	assert.True(t, p.IsConnected)
	assert.False(t, p.IsHost)
	assert.Nil(t, p.LeftAt)
}

func TestNewParticipantValidation(t *testing.T) {
	_, err := NewParticipant("ABC123", "   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewParticipant("ABC123", strings.Repeat("n", 21))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// Multi-byte runes count as single characters.
	_, err = NewParticipant("ABC123", strings.Repeat("ж", 20))
	assert.NoError(t, err)
}

func TestParticipantDisconnectReportsChange(t *testing.T) {
	p, err := NewParticipant("ABC123", "Alice")
	require.NoError(t, err)

	at := time.Now()
	assert.True(t, p.Disconnect(at))
	assert.False(t, p.IsConnected)
	require.NotNil(t, p.LeftAt)

	// Repeating is a no-op and keeps the original timestamp.
	first := *p.LeftAt
	assert.False(t, p.Disconnect(time.Now().Add(time.Hour)))
	assert.Equal(t, first, *p.LeftAt)

	p.Rejoin()
	assert.True(t, p.IsConnected)
	assert.Nil(t, p.LeftAt)
}

func TestNewSignalValidation(t *testing.T) {
	from, to := uuid.New(), uuid.New()
	payload := json.RawMessage(`{"type":"offer"}`)

	signal, err := NewSignal("ABC123", from, to, SignalOffer, payload)
	require.NoError(t, err)
	assert.False(t, signal.Processed)
	assert.NotEqual(t, uuid.Nil, signal.ID)

	_, err = NewSignal("", from, to, SignalOffer, payload)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewSignal("ABC123", uuid.Nil, to, SignalOffer, payload)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewSignal("ABC123", from, from, SignalOffer, payload)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewSignal("ABC123", from, to, SignalKind("renegotiate"), payload)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewSignal("ABC123", from, to, SignalOffer, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSignalKindValid(t *testing.T) {
	assert.True(t, SignalOffer.Valid())
	assert.True(t, SignalAnswer.Valid())
	assert.True(t, SignalICECandidate.Valid())
	assert.False(t, SignalKind("").Valid())
	assert.False(t, SignalKind("OFFER").Valid())
}
