package converter

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/domain"
)

type MeetingResponse struct {
	ID                  string                `json:"id"`
	Name                string                `json:"name"`
	IsPublic            bool                  `json:"is_public"`
	MaxParticipants     int                   `json:"max_participants"`
	CurrentParticipants int                   `json:"current_participants"`
	HostID              *uuid.UUID            `json:"host_id,omitempty"`
	Status              domain.MeetingStatus  `json:"status"`
	CreatedAt           time.Time             `json:"created_at"`
	EndedAt             *time.Time            `json:"ended_at,omitempty"`
	Participants        []ParticipantResponse `json:"participants,omitempty"`
}

type ParticipantResponse struct {
	ID          uuid.UUID  `json:"id"`
	MeetingID   string     `json:"meeting_id"`
	Nickname    string     `json:"nickname"`
	IsHost      bool       `json:"is_host"`
	IsMuted     bool       `json:"is_muted"`
	IsConnected bool       `json:"is_connected"`
	JoinedAt    time.Time  `json:"joined_at"`
	LeftAt      *time.Time `json:"left_at,omitempty"`
}

type SignalResponse struct {
	ID        uuid.UUID         `json:"id"`
	MeetingID string            `json:"meeting_id"`
	From      uuid.UUID         `json:"from_participant"`
	To        uuid.UUID         `json:"to_participant"`
	Kind      domain.SignalKind `json:"kind"`
	Payload   json.RawMessage   `json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

func MeetingToApi(m *domain.Meeting, roster []*domain.Participant) *MeetingResponse {
	resp := &MeetingResponse{
		ID:                  m.ID,
		Name:                m.Name,
		IsPublic:            m.IsPublic,
		MaxParticipants:     m.MaxParticipants,
		CurrentParticipants: len(roster),
		HostID:              m.HostID,
		Status:              m.Status,
		CreatedAt:           m.CreatedAt,
		EndedAt:             m.EndedAt,
	}
	for _, p := range roster {
		resp.Participants = append(resp.Participants, *ParticipantToApi(p))
	}
	return resp
}

func ParticipantToApi(p *domain.Participant) *ParticipantResponse {
	return &ParticipantResponse{
		ID:          p.ID,
		MeetingID:   p.MeetingID,
		Nickname:    p.Nickname,
		IsHost:      p.IsHost,
		IsMuted:     p.IsMuted,
		IsConnected: p.IsConnected,
		JoinedAt:    p.JoinedAt,
		LeftAt:      p.LeftAt,
	}
}

func SignalToApi(s *domain.Signal) *SignalResponse {
	return &SignalResponse{
		ID:        s.ID,
		MeetingID: s.MeetingID,
		From:      s.From,
		To:        s.To,
		Kind:      s.Kind,
		Payload:   s.Payload,
		CreatedAt: s.CreatedAt,
	}
}

func SignalsToApi(signals []*domain.Signal) []SignalResponse {
	result := make([]SignalResponse, 0, len(signals))
	for _, s := range signals {
		result = append(result, *SignalToApi(s))
	}
	return result
}
