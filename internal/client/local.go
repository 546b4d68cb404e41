package client

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/qb9r2873g/voice-room/internal/service"
)

// LocalRelay adapts in-process services to the client interfaces, letting
// relay and client run inside one binary. Tests use it to exercise the
// orchestrator against the real mailbox without an HTTP hop.
type LocalRelay struct {
	Meetings service.MeetingInteractor
	Roster   service.RosterInteractor
	Signals  service.SignalInteractor
}

func (r *LocalRelay) Deposit(ctx context.Context, meetingID string, from, to uuid.UUID, kind domain.SignalKind, payload json.RawMessage) error {
	_, err := r.Signals.Deposit(ctx, service.DepositInput{
		MeetingID: meetingID,
		From:      from,
		To:        to,
		Kind:      kind,
		Payload:   payload,
	})
	return err
}

func (r *LocalRelay) Drain(ctx context.Context, meetingID string, recipient uuid.UUID) ([]Signal, error) {
	signals, err := r.Signals.Drain(ctx, meetingID, recipient)
	if err != nil {
		return nil, err
	}

	result := make([]Signal, 0, len(signals))
	for _, s := range signals {
		result = append(result, Signal{
			ID:        s.ID,
			MeetingID: s.MeetingID,
			From:      s.From,
			To:        s.To,
			Kind:      s.Kind,
			Payload:   s.Payload,
			CreatedAt: s.CreatedAt,
		})
	}
	return result, nil
}

func (r *LocalRelay) FetchMeeting(ctx context.Context, meetingID string) (*MeetingView, error) {
	meeting, err := r.Meetings.GetActiveMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	roster, err := r.Roster.ListConnected(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	view := &MeetingView{
		ID:                  meeting.ID,
		Name:                meeting.Name,
		IsPublic:            meeting.IsPublic,
		MaxParticipants:     meeting.MaxParticipants,
		CurrentParticipants: len(roster),
		HostID:              meeting.HostID,
		Status:              string(meeting.Status),
		CreatedAt:           meeting.CreatedAt,
	}
	for _, p := range roster {
		view.Participants = append(view.Participants, ParticipantView{
			ID:          p.ID,
			MeetingID:   p.MeetingID,
			Nickname:    p.Nickname,
			IsHost:      p.IsHost,
			IsMuted:     p.IsMuted,
			IsConnected: p.IsConnected,
			JoinedAt:    p.JoinedAt,
		})
	}
	return view, nil
}
