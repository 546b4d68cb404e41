package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu      sync.Mutex
	meeting *MeetingView
	err     error
}

func (f *fakeFetcher) FetchMeeting(context.Context, string) (*MeetingView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m := *f.meeting
	return &m, nil
}

func (f *fakeFetcher) set(meeting *MeetingView, err error) {
	f.mu.Lock()
	f.meeting = meeting
	f.err = err
	f.mu.Unlock()
}

func roomView(participants ...ParticipantView) *MeetingView {
	return &MeetingView{
		ID:                  "ABC123",
		Name:                "Standup",
		MaxParticipants:     6,
		CurrentParticipants: len(participants),
		Status:              "active",
		Participants:        participants,
	}
}

func participantView(nickname string, host bool) ParticipantView {
	return ParticipantView{
		ID:          uuid.New(),
		MeetingID:   "ABC123",
		Nickname:    nickname,
		IsHost:      host,
		IsConnected: true,
	}
}

func TestSessionBeginAndAccessors(t *testing.T) {
	self := participantView("Alice", true)
	meeting := roomView(self)
	s := NewSession(&fakeFetcher{}, testLogger())

	assert.Nil(t, s.Meeting())
	assert.Nil(t, s.Self())

	s.Begin(*meeting, self)

	require.NotNil(t, s.Meeting())
	assert.Equal(t, "ABC123", s.Meeting().ID)
	assert.Equal(t, self.ID, s.Self().ID)
	assert.True(t, s.IsHost())
	assert.False(t, s.Ended())
	assert.Empty(t, s.Peers())
}

func TestSessionPeersExcludeSelf(t *testing.T) {
	self := participantView("Alice", true)
	bob := participantView("Bob", false)
	carol := participantView("Carol", false)

	s := NewSession(&fakeFetcher{}, testLogger())
	s.Begin(*roomView(self, bob, carol), self)

	peers := s.Peers()
	require.Len(t, peers, 2)
	for _, p := range peers {
		assert.NotEqual(t, self.ID, p.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{bob.ID, carol.ID}, s.RemotePeerIDs())
}

func TestSessionRefreshAppliesRoster(t *testing.T) {
	self := participantView("Alice", false)
	fetcher := &fakeFetcher{}
	s := NewSession(fetcher, testLogger())
	s.Begin(*roomView(self), self)

	// A refresh picks up both new peers and the self snapshot; here the
	// roster promoted us to host.
	promoted := self
	promoted.IsHost = true
	bob := participantView("Bob", false)
	fetcher.set(roomView(promoted, bob), nil)

	s.Refresh(context.Background())

	assert.True(t, s.IsHost())
	require.Len(t, s.Peers(), 1)
	assert.Equal(t, bob.ID, s.Peers()[0].ID)
	assert.False(t, s.Ended())
}

func TestSessionRefreshDetectsRemoval(t *testing.T) {
	self := participantView("Alice", false)
	bob := participantView("Bob", true)
	fetcher := &fakeFetcher{}
	s := NewSession(fetcher, testLogger())
	s.Begin(*roomView(self, bob), self)

	// We are no longer on the connected roster: the session ends.
	fetcher.set(roomView(bob), nil)
	s.Refresh(context.Background())

	assert.True(t, s.Ended())
}

func TestSessionRefreshEndsOnNotFound(t *testing.T) {
	self := participantView("Alice", true)
	fetcher := &fakeFetcher{}
	s := NewSession(fetcher, testLogger())
	s.Begin(*roomView(self), self)

	fetcher.set(nil, domain.ErrNotFound)
	s.Refresh(context.Background())

	assert.True(t, s.Ended())
}

func TestSessionRefreshToleratesTransientErrors(t *testing.T) {
	self := participantView("Alice", true)
	fetcher := &fakeFetcher{}
	s := NewSession(fetcher, testLogger())
	s.Begin(*roomView(self), self)

	fetcher.set(nil, errors.New("relay unreachable"))
	s.Refresh(context.Background())

	// A transient failure must not end the session.
	assert.False(t, s.Ended())
	require.NotNil(t, s.Meeting())
}

func TestSessionStopRightAfterStart(t *testing.T) {
	// Stopping before the refresh goroutine is scheduled must neither
	// panic nor block waiting for the loop.
	self := participantView("Alice", true)
	fetcher := &fakeFetcher{meeting: roomView(self)}

	for i := 0; i < 100; i++ {
		s := NewSession(fetcher, testLogger())
		s.Begin(*roomView(self), self)
		s.StartRefresh(context.Background())
		s.StopRefresh()
		s.StopRefresh()
	}
}

func TestSessionRefreshLoopStops(t *testing.T) {
	self := participantView("Alice", true)
	fetcher := &fakeFetcher{meeting: roomView(self)}
	s := NewSession(fetcher, testLogger())
	s.SetRefreshInterval(5 * time.Millisecond)
	s.Begin(*roomView(self), self)

	s.StartRefresh(context.Background())
	time.Sleep(20 * time.Millisecond)
	s.StopRefresh()

	// Stopping twice must not block or panic.
	s.StopRefresh()
}
