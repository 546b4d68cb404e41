package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/auth"
	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/qb9r2873g/voice-room/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rosterFixture struct {
	meetings     *repository.InMemoryMeetingRepository
	participants *repository.InMemoryParticipantRepository
	service      *MeetingService
	roster       *RosterService
}

func newRosterFixture(t *testing.T) *rosterFixture {
	t.Helper()
	meetings := repository.NewInMemoryMeetingRepository()
	participants := repository.NewInMemoryParticipantRepository()
	hasher := plainHasher{}
	authority := auth.NewAuthority(hasher)
	locks := NewMeetingLocks()
	return &rosterFixture{
		meetings:     meetings,
		participants: participants,
		service:      NewMeetingService(meetings, participants, authority, hasher, locks, testLogger()),
		roster:       NewRosterService(meetings, participants, authority, locks, testLogger()),
	}
}

func (f *rosterFixture) createMeeting(t *testing.T, capacity int) *domain.Meeting {
	t.Helper()
	meeting, err := f.service.CreateMeeting(context.Background(), CreateMeetingInput{
		Name:            "Standup",
		Password:        "1234",
		Owner:           ownerCreds(),
		MaxParticipants: capacity,
	})
	require.NoError(t, err)
	return meeting
}

func TestJoinFirstParticipantBecomesHost(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, 3)

	alice, snapshot, err := f.roster.Join(ctx, JoinInput{
		MeetingID: meeting.ID, Nickname: "Alice", Password: "1234",
	})
	require.NoError(t, err)
	assert.True(t, alice.IsHost)
	assert.True(t, alice.IsConnected)
	require.NotNil(t, snapshot.HostID)
	assert.Equal(t, alice.ID, *snapshot.HostID)

	// The host reference is persisted, not only echoed back.
	stored, err := f.meetings.GetByID(ctx, meeting.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.HostID)
	assert.Equal(t, alice.ID, *stored.HostID)

	bob, _, err := f.roster.Join(ctx, JoinInput{
		MeetingID: meeting.ID, Nickname: "Bob", Password: "1234",
	})
	require.NoError(t, err)
	assert.False(t, bob.IsHost)
}

func TestJoinVerifiedOwnerHostsNonEmptyRoom(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, 4)

	_, _, err := f.roster.Join(ctx, JoinInput{
		MeetingID: meeting.ID, Nickname: "Guest", Password: "1234",
	})
	require.NoError(t, err)

	creds := ownerCreds()
	owner, snapshot, err := f.roster.Join(ctx, JoinInput{
		MeetingID: meeting.ID, Nickname: "Owner", Password: "1234", Owner: &creds,
	})
	require.NoError(t, err)
	assert.True(t, owner.IsHost)
	require.NotNil(t, snapshot.HostID)
	assert.Equal(t, owner.ID, *snapshot.HostID)
}

func TestJoinRejectsBadOwnerClaim(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, 4)

	creds := domain.OwnerCredentials{Token: "stolen", Principal: "principal-1"}
	_, _, err := f.roster.Join(ctx, JoinInput{
		MeetingID: meeting.ID, Nickname: "Mallory", Password: "1234", Owner: &creds,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	count, err := f.participants.CountConnected(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestJoinWrongPasswordLeavesNoTrace(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, 3)

	_, _, err := f.roster.Join(ctx, JoinInput{
		MeetingID: meeting.ID, Nickname: "Eve", Password: "wrong",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	count, err := f.participants.CountConnected(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestJoinUnknownMeeting(t *testing.T) {
	f := newRosterFixture(t)

	_, _, err := f.roster.Join(context.Background(), JoinInput{
		MeetingID: "NOSUCH", Nickname: "Alice", Password: "1234",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJoinEndedMeeting(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, 3)

	host, _, err := f.roster.Join(ctx, JoinInput{
		MeetingID: meeting.ID, Nickname: "Alice", Password: "1234",
	})
	require.NoError(t, err)
	require.NoError(t, f.service.EndMeeting(ctx, meeting.ID, host.ID))

	_, _, err = f.roster.Join(ctx, JoinInput{
		MeetingID: meeting.ID, Nickname: "Late", Password: "1234",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJoinValidatesNickname(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, 3)

	for _, nickname := range []string{"", "   ", strings.Repeat("x", 21)} {
		_, _, err := f.roster.Join(ctx, JoinInput{
			MeetingID: meeting.ID, Nickname: nickname, Password: "1234",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, "nickname %q", nickname)
	}
}

func TestJoinFullMeeting(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, 2)

	_, _, err := f.roster.Join(ctx, JoinInput{MeetingID: meeting.ID, Nickname: "Alice", Password: "1234"})
	require.NoError(t, err)
	bob, _, err := f.roster.Join(ctx, JoinInput{MeetingID: meeting.ID, Nickname: "Bob", Password: "1234"})
	require.NoError(t, err)

	_, _, err = f.roster.Join(ctx, JoinInput{MeetingID: meeting.ID, Nickname: "Carol", Password: "1234"})
	assert.ErrorIs(t, err, domain.ErrMeetingFull)

	// A leave frees the slot.
	_, err = f.roster.Leave(ctx, bob.ID)
	require.NoError(t, err)

	carol, _, err := f.roster.Join(ctx, JoinInput{MeetingID: meeting.ID, Nickname: "Carol", Password: "1234"})
	require.NoError(t, err)
	assert.False(t, carol.IsHost)
}

func TestConcurrentJoinsElectExactlyOneHost(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, domain.MaxParticipants)

	const joiners = 8
	results := make([]*domain.Participant, joiners)

	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, _, err := f.roster.Join(ctx, JoinInput{
				MeetingID: meeting.ID, Nickname: "Peer", Password: "1234",
			})
			if err == nil {
				results[i] = p
			}
		}(i)
	}
	wg.Wait()

	hosts := 0
	for _, p := range results {
		require.NotNil(t, p)
		if p.IsHost {
			hosts++
		}
	}
	assert.Equal(t, 1, hosts)
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, 2)

	const joiners = 6
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted, full := 0, 0

	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.roster.Join(ctx, JoinInput{
				MeetingID: meeting.ID, Nickname: "Peer", Password: "1234",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case assert.ErrorIs(t, err, domain.ErrMeetingFull):
				full++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, admitted)
	assert.Equal(t, joiners-2, full)
}

func TestJoinsRacingEndLeaveNoConnectedRows(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()

	// Joins race the host ending the meeting. Whatever the interleaving,
	// an ended meeting must never retain a connected participant: a join
	// either lands before the cascade and is disconnected by it, or
	// observes the ended state and is refused.
	for round := 0; round < 20; round++ {
		meeting := f.createMeeting(t, domain.MaxParticipants)
		host, _, err := f.roster.Join(ctx, JoinInput{
			MeetingID: meeting.ID, Nickname: "Host", Password: "1234",
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := f.roster.Join(ctx, JoinInput{
					MeetingID: meeting.ID, Nickname: "Late", Password: "1234",
				})
				if err != nil {
					assert.ErrorIs(t, err, domain.ErrNotFound)
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.service.EndMeeting(ctx, meeting.ID, host.ID))
		}()
		wg.Wait()

		connected, err := f.participants.CountConnected(ctx, meeting.ID)
		require.NoError(t, err)
		assert.Zero(t, connected, "round %d", round)
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, 3)

	alice, _, err := f.roster.Join(ctx, JoinInput{MeetingID: meeting.ID, Nickname: "Alice", Password: "1234"})
	require.NoError(t, err)

	left, err := f.roster.Leave(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, left.IsConnected)
	require.NotNil(t, left.LeftAt)
	firstLeftAt := *left.LeftAt

	again, err := f.roster.Leave(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, again.IsConnected)
	require.NotNil(t, again.LeftAt)
	assert.Equal(t, firstLeftAt, *again.LeftAt)

	_, err = f.roster.Leave(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconnectClearsDeparture(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, 3)

	alice, _, err := f.roster.Join(ctx, JoinInput{MeetingID: meeting.ID, Nickname: "Alice", Password: "1234"})
	require.NoError(t, err)

	_, err = f.roster.Leave(ctx, alice.ID)
	require.NoError(t, err)

	back, err := f.roster.Reconnect(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, back.IsConnected)
	assert.Nil(t, back.LeftAt)
}

func TestSetMuted(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, 3)

	alice, _, err := f.roster.Join(ctx, JoinInput{MeetingID: meeting.ID, Nickname: "Alice", Password: "1234"})
	require.NoError(t, err)
	assert.False(t, alice.IsMuted)

	muted, err := f.roster.SetMuted(ctx, alice.ID, true)
	require.NoError(t, err)
	assert.True(t, muted.IsMuted)

	unmuted, err := f.roster.SetMuted(ctx, alice.ID, false)
	require.NoError(t, err)
	assert.False(t, unmuted.IsMuted)
}

func TestListConnectedOrderedByJoin(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	meeting := f.createMeeting(t, 4)

	alice, _, err := f.roster.Join(ctx, JoinInput{MeetingID: meeting.ID, Nickname: "Alice", Password: "1234"})
	require.NoError(t, err)
	bob, _, err := f.roster.Join(ctx, JoinInput{MeetingID: meeting.ID, Nickname: "Bob", Password: "1234"})
	require.NoError(t, err)

	_, err = f.roster.Leave(ctx, alice.ID)
	require.NoError(t, err)

	connected, err := f.roster.ListConnected(ctx, meeting.ID)
	require.NoError(t, err)
	require.Len(t, connected, 1)
	assert.Equal(t, bob.ID, connected[0].ID)
}
