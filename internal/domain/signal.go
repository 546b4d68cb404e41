package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SignalKind is the closed set of signaling payload types. The kind is
// decided once at creation by the sender and never re-inferred by the relay.
type SignalKind string

const (
	SignalOffer        SignalKind = "offer"
	SignalAnswer       SignalKind = "answer"
	SignalICECandidate SignalKind = "ice-candidate"
)

func (k SignalKind) Valid() bool {
	switch k {
	case SignalOffer, SignalAnswer, SignalICECandidate:
		return true
	}
	return false
}

// Signal is one store-and-forward relay message between two participants.
// Rows are immutable after creation except for the processed flag.
type Signal struct {
	ID        uuid.UUID
	MeetingID string
	From      uuid.UUID
	To        uuid.UUID
	Kind      SignalKind
	Payload   json.RawMessage
	CreatedAt time.Time
	Processed bool
}

func NewSignal(meetingID string, from, to uuid.UUID, kind SignalKind, payload json.RawMessage) (*Signal, error) {
	if meetingID == "" {
		return nil, fmt.Errorf("%w: meeting id is required", ErrInvalidArgument)
	}
	if from == uuid.Nil || to == uuid.Nil {
		return nil, fmt.Errorf("%w: sender and recipient are required", ErrInvalidArgument)
	}
	if from == to {
		return nil, fmt.Errorf("%w: sender and recipient must differ", ErrInvalidArgument)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown signal kind %q", ErrInvalidArgument, kind)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: signal payload is required", ErrInvalidArgument)
	}

	return &Signal{
		ID:        uuid.New(),
		MeetingID: meetingID,
		From:      from,
		To:        to,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}
