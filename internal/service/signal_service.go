package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/qb9r2873g/voice-room/internal/repository"
)

type SignalService struct {
	meetings     repository.MeetingRepository
	participants repository.ParticipantRepository
	signals      repository.SignalRepository
	log          *slog.Logger
}

func NewSignalService(
	meetings repository.MeetingRepository,
	participants repository.ParticipantRepository,
	signals repository.SignalRepository,
	log *slog.Logger,
) *SignalService {
	if log == nil {
		log = slog.Default()
	}
	return &SignalService{
		meetings:     meetings,
		participants: participants,
		signals:      signals,
		log:          log,
	}
}

// Deposit stores an unprocessed relay message. The meeting must be active
// and both endpoints must be participants of it.
func (s *SignalService) Deposit(ctx context.Context, in DepositInput) (uuid.UUID, error) {
	signal, err := domain.NewSignal(in.MeetingID, in.From, in.To, in.Kind, in.Payload)
	if err != nil {
		return uuid.Nil, err
	}

	meeting, err := s.meetings.GetByID(ctx, in.MeetingID)
	if err != nil {
		return uuid.Nil, err
	}
	if !meeting.IsActive() {
		return uuid.Nil, domain.ErrNotFound
	}

	for _, id := range []uuid.UUID{in.From, in.To} {
		participant, err := s.participants.GetByID(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		if participant.MeetingID != in.MeetingID {
			return uuid.Nil, fmt.Errorf("%w: participant %s does not belong to meeting %s", domain.ErrInvalidArgument, id, in.MeetingID)
		}
	}

	if err := s.signals.Create(ctx, signal); err != nil {
		return uuid.Nil, err
	}

	s.log.Debug("signal deposited",
		slog.String("meeting_id", in.MeetingID),
		slog.String("from", in.From.String()),
		slog.String("to", in.To.String()),
		slog.String("kind", string(in.Kind)),
	)
	return signal.ID, nil
}

// Drain hands every pending signal for the recipient to this caller and to
// no one else; a second drain returns empty until new deposits arrive.
func (s *SignalService) Drain(ctx context.Context, meetingID string, recipient uuid.UUID) ([]*domain.Signal, error) {
	if meetingID == "" || recipient == uuid.Nil {
		return nil, fmt.Errorf("%w: meeting id and recipient are required", domain.ErrInvalidArgument)
	}
	return s.signals.Drain(ctx, meetingID, recipient)
}
