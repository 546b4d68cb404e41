package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/auth"
	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/qb9r2873g/voice-room/internal/repository"
	"github.com/qb9r2873g/voice-room/lib/logger/sl"
	"github.com/qb9r2873g/voice-room/lib/roomcode"
)

// codeAttempts bounds the collision retry loop when generating a meeting
// code.
const codeAttempts = 10

type MeetingService struct {
	meetings     repository.MeetingRepository
	participants repository.ParticipantRepository
	authority    *auth.Authority
	hasher       auth.Hasher
	locks        *MeetingLocks
	log          *slog.Logger
}

func NewMeetingService(
	meetings repository.MeetingRepository,
	participants repository.ParticipantRepository,
	authority *auth.Authority,
	hasher auth.Hasher,
	locks *MeetingLocks,
	log *slog.Logger,
) *MeetingService {
	if log == nil {
		log = slog.Default()
	}
	if locks == nil {
		locks = NewMeetingLocks()
	}
	return &MeetingService{
		meetings:     meetings,
		participants: participants,
		authority:    authority,
		hasher:       hasher,
		locks:        locks,
		log:          log,
	}
}

func (s *MeetingService) CreateMeeting(ctx context.Context, in CreateMeetingInput) (*domain.Meeting, error) {
	const op = "service.meeting.create"
	log := s.log.With(slog.String("op", op))

	if in.Name == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name and password are required", domain.ErrInvalidArgument)
	}
	if in.Owner.Token == "" || in.Owner.Principal == "" {
		return nil, fmt.Errorf("%w: owner credentials are required", domain.ErrInvalidArgument)
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	ownerTokenHash, err := s.hasher.Hash(in.Owner.Token)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		meeting, err := domain.NewMeeting(
			roomcode.New(),
			in.Name,
			passwordHash,
			ownerTokenHash,
			in.Owner.Principal,
			in.IsPublic,
			in.MaxParticipants,
		)
		if err != nil {
			return nil, err
		}

		if err := s.meetings.Create(ctx, meeting); err != nil {
			if errors.Is(err, repository.ErrMeetingCodeExists) {
				log.Debug("meeting code collision, retrying", slog.String("code", meeting.ID))
				continue
			}
			return nil, err
		}

		log.Info("meeting created",
			slog.String("meeting_id", meeting.ID),
			slog.String("name", meeting.Name),
			slog.Bool("public", meeting.IsPublic),
			slog.Int("capacity", meeting.MaxParticipants),
		)
		return meeting, nil
	}

	return nil, domain.ErrCodeExhausted
}

func (s *MeetingService) GetActiveMeeting(ctx context.Context, id string) (*domain.Meeting, error) {
	meeting, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !meeting.IsActive() {
		return nil, domain.ErrNotFound
	}
	return meeting, nil
}

func (s *MeetingService) ListPublicMeetings(ctx context.Context, search string) ([]*domain.Meeting, error) {
	return s.meetings.ListPublicActive(ctx, search)
}

// EndMeeting is a one-way transition that only the current host may
// request. Every connected participant is disconnected in the same pass.
func (s *MeetingService) EndMeeting(ctx context.Context, meetingID string, requesterID uuid.UUID) error {
	const op = "service.meeting.end"
	log := s.log.With(slog.String("op", op), slog.String("meeting_id", meetingID))

	// Same lock as Join: a join racing the end cascade must either land
	// before it (and be disconnected by it) or observe the ended state.
	lock := s.locks.Get(meetingID)
	lock.Lock()
	defer lock.Unlock()

	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return err
	}
	if !meeting.IsActive() {
		return domain.ErrMeetingEnded
	}
	if meeting.HostID == nil || *meeting.HostID != requesterID {
		return fmt.Errorf("%w: only the host may end the meeting", domain.ErrInvalidCredentials)
	}

	now := time.Now().UTC()
	if err := s.meetings.End(ctx, meetingID, now); err != nil {
		return err
	}
	if err := s.participants.DisconnectAll(ctx, meetingID, now); err != nil {
		log.Error("failed to disconnect participants after ending meeting", sl.Err(err))
		return err
	}

	log.Info("meeting ended")
	return nil
}

func (s *MeetingService) VerifyOwner(ctx context.Context, meetingID string, creds domain.OwnerCredentials) (*domain.Meeting, error) {
	if creds.Token == "" || creds.Principal == "" {
		return nil, fmt.Errorf("%w: owner credentials are required", domain.ErrInvalidArgument)
	}

	meeting, err := s.GetActiveMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := s.authority.VerifyOwner(meeting, creds); err != nil {
		return nil, err
	}
	return meeting, nil
}
