package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/auth"
	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/qb9r2873g/voice-room/internal/repository"
	"github.com/qb9r2873g/voice-room/lib/logger/sl"
)

type RosterService struct {
	meetings     repository.MeetingRepository
	participants repository.ParticipantRepository
	authority    *auth.Authority
	log          *slog.Logger

	// locks serializes the capacity check and host election per meeting.
	// Without it two concurrent joins could both observe an empty room and
	// both elect themselves host. EndMeeting takes the same lock.
	locks *MeetingLocks
}

func NewRosterService(
	meetings repository.MeetingRepository,
	participants repository.ParticipantRepository,
	authority *auth.Authority,
	locks *MeetingLocks,
	log *slog.Logger,
) *RosterService {
	if log == nil {
		log = slog.Default()
	}
	if locks == nil {
		locks = NewMeetingLocks()
	}
	return &RosterService{
		meetings:     meetings,
		participants: participants,
		authority:    authority,
		locks:        locks,
		log:          log,
	}
}

// Join authenticates against the meeting, enforces capacity, applies the
// host election rule and inserts the participant. It returns the created
// participant together with the meeting snapshot, host reference included.
func (s *RosterService) Join(ctx context.Context, in JoinInput) (*domain.Participant, *domain.Meeting, error) {
	const op = "service.roster.join"
	log := s.log.With(slog.String("op", op), slog.String("meeting_id", in.MeetingID))

	meeting, err := s.meetings.GetByID(ctx, in.MeetingID)
	if err != nil {
		return nil, nil, err
	}
	if !meeting.IsActive() {
		return nil, nil, domain.ErrNotFound
	}

	if err := s.authority.VerifyRoomPassword(meeting, in.Password); err != nil {
		log.Info("join rejected: bad password")
		return nil, nil, err
	}

	ownerVerified := false
	if in.Owner != nil && !in.Owner.Empty() {
		if err := s.authority.VerifyOwner(meeting, *in.Owner); err != nil {
			log.Info("join rejected: bad owner claim")
			return nil, nil, err
		}
		ownerVerified = true
	}

	lock := s.locks.Get(in.MeetingID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: the meeting may have ended between the
	// credential checks and here.
	meeting, err = s.meetings.GetByID(ctx, in.MeetingID)
	if err != nil {
		return nil, nil, err
	}
	if !meeting.IsActive() {
		return nil, nil, domain.ErrNotFound
	}

	count, err := s.participants.CountConnected(ctx, in.MeetingID)
	if err != nil {
		return nil, nil, err
	}
	if count >= meeting.MaxParticipants {
		return nil, nil, domain.ErrMeetingFull
	}

	participant, err := domain.NewParticipant(in.MeetingID, in.Nickname)
	if err != nil {
		return nil, nil, err
	}
	participant.IsHost = auth.ShouldHost(ownerVerified, count)

	if err := s.participants.Create(ctx, participant); err != nil {
		return nil, nil, err
	}

	if participant.IsHost {
		if err := s.meetings.SetHost(ctx, in.MeetingID, participant.ID); err != nil {
			log.Error("failed to set host reference", sl.Err(err))
			return nil, nil, err
		}
		id := participant.ID
		meeting.HostID = &id
	}

	log.Info("participant joined",
		slog.String("participant_id", participant.ID.String()),
		slog.String("nickname", participant.Nickname),
		slog.Bool("host", participant.IsHost),
		slog.Int("connected_before", count),
	)
	return participant, meeting, nil
}

func (s *RosterService) SetMuted(ctx context.Context, id uuid.UUID, muted bool) (*domain.Participant, error) {
	participant, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	participant.IsMuted = muted
	if err := s.participants.Update(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *RosterService) SetConnected(ctx context.Context, id uuid.UUID, connected bool) (*domain.Participant, error) {
	if connected {
		return s.Reconnect(ctx, id)
	}
	return s.Leave(ctx, id)
}

// Leave is idempotent: disconnecting an already disconnected participant
// returns the terminal state without touching the store.
func (s *RosterService) Leave(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	participant, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !participant.Disconnect(time.Now()) {
		return participant, nil
	}
	if err := s.participants.Update(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *RosterService) Reconnect(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	participant, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	participant.Rejoin()
	if err := s.participants.Update(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *RosterService) ListConnected(ctx context.Context, meetingID string) ([]*domain.Participant, error) {
	return s.participants.ListConnected(ctx, meetingID)
}
