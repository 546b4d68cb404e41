package client

import (
	"encoding/json"

	"github.com/qb9r2873g/voice-room/internal/domain"
)

// RemoteMedia is the opaque handle for an inbound media stream. The
// default engine passes a *webrtc.TrackRemote; tests pass whatever they
// like.
type RemoteMedia any

// PeerHandlers carries the callbacks one peer state machine needs from
// the engine. OnSignal fires once per outbound payload with the kind
// decided at creation time; with trickling disabled that is one combined
// payload per connection attempt.
type PeerHandlers struct {
	OnSignal func(kind domain.SignalKind, payload json.RawMessage)
	OnMedia  func(media RemoteMedia)
	OnClose  func()
}

// EnginePeer is one negotiation in flight with a single remote peer.
type EnginePeer interface {
	// Signal feeds an inbound payload into the negotiation.
	Signal(kind domain.SignalKind, payload json.RawMessage) error
	Close() error
}

// PeerEngine is the opaque peer-connection capability: given a local
// audio source it turns inbound payloads into outbound ones and
// eventually surfaces a remote media stream.
type PeerEngine interface {
	NewPeer(initiator bool, handlers PeerHandlers) (EnginePeer, error)
}
