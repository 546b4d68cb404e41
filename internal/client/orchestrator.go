package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/qb9r2873g/voice-room/lib/logger/sl"
)

const DefaultPollInterval = 2 * time.Second

// PeerState tracks one remote peer through the negotiation.
type PeerState int

const (
	PeerNew PeerState = iota
	PeerOffering
	PeerAnswering
	PeerConnected
	PeerClosed
)

func (s PeerState) String() string {
	switch s {
	case PeerNew:
		return "new"
	case PeerOffering:
		return "offering"
	case PeerAnswering:
		return "answering"
	case PeerConnected:
		return "connected"
	case PeerClosed:
		return "closed"
	}
	return "unknown"
}

// Callbacks notify the embedding application. OnMedia is the trigger that
// lets audio rendering begin for a peer; OnPeerClosed fires once when a
// peer goes away.
type Callbacks struct {
	OnMedia      func(peerID uuid.UUID, media RemoteMedia)
	OnPeerClosed func(peerID uuid.UUID)
}

type peerLink struct {
	peer  EnginePeer
	state PeerState
}

// Orchestrator runs the signaling side of one local participant: it polls
// the mailbox on a fixed interval and drives one peer state machine per
// remote participant. Poll failures are logged and retried on the next
// tick; only media acquisition is fatal.
type Orchestrator struct {
	meetingID string
	selfID    uuid.UUID

	signaler Signaler
	engine   PeerEngine
	audio    AudioSource
	cb       Callbacks
	log      *slog.Logger

	pollInterval time.Duration

	mu     sync.Mutex
	peers  map[uuid.UUID]*peerLink
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
}

func NewOrchestrator(
	meetingID string,
	selfID uuid.UUID,
	signaler Signaler,
	engine PeerEngine,
	audio AudioSource,
	cb Callbacks,
	log *slog.Logger,
) (*Orchestrator, error) {
	if log == nil {
		log = slog.Default()
	}

	// Media acquisition failure is fatal: without a local track there is
	// nothing to negotiate.
	if _, err := audio.Track(); err != nil {
		return nil, fmt.Errorf("acquiring local audio: %w", err)
	}

	return &Orchestrator{
		meetingID:    meetingID,
		selfID:       selfID,
		signaler:     signaler,
		engine:       engine,
		audio:        audio,
		cb:           cb,
		log:          log.With(slog.String("meeting_id", meetingID), slog.String("self", selfID.String())),
		pollInterval: DefaultPollInterval,
		peers:        make(map[uuid.UUID]*peerLink),
	}, nil
}

func (o *Orchestrator) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		o.pollInterval = interval
	}
}

// Start launches the mailbox poll loop. Staleness is bounded by one poll
// interval: an ended meeting or a new offer is noticed at the next tick.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || o.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	o.cancel = cancel
	o.done = done

	// The loop owns its completion channel directly; teardown nilling the
	// field must not be able to reach the deferred close.
	go o.pollLoop(ctx, done)
}

func (o *Orchestrator) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Poll(ctx)
		}
	}
}

// Poll drains the mailbox once and dispatches every signal. Exposed so
// tests and callers can step the loop without waiting on the ticker.
func (o *Orchestrator) Poll(ctx context.Context) {
	signals, err := o.signaler.Drain(ctx, o.meetingID, o.selfID)
	if err != nil {
		o.log.Warn("mailbox poll failed, retrying next tick", sl.Err(err))
		return
	}

	for _, signal := range signals {
		o.dispatch(signal)
	}
}

func (o *Orchestrator) dispatch(signal Signal) {
	switch signal.Kind {
	case domain.SignalOffer:
		o.mu.Lock()
		link, ok := o.peers[signal.From]
		if !ok && !o.closed {
			var err error
			link, err = o.createPeerLocked(signal.From, false)
			if err != nil {
				o.mu.Unlock()
				o.log.Error("failed to create answering peer", sl.Err(err))
				return
			}
		}
		o.mu.Unlock()
		if link == nil {
			return
		}
		if err := link.peer.Signal(signal.Kind, signal.Payload); err != nil {
			o.log.Warn("offer rejected by peer engine", sl.Err(err))
		}

	case domain.SignalAnswer, domain.SignalICECandidate:
		o.mu.Lock()
		link, ok := o.peers[signal.From]
		o.mu.Unlock()
		if !ok {
			// No negotiation in flight with this sender; the signal is
			// dropped, not retried.
			o.log.Warn("dropping signal for unknown peer",
				slog.String("kind", string(signal.Kind)),
				slog.String("from", signal.From.String()),
			)
			return
		}
		if err := link.peer.Signal(signal.Kind, signal.Payload); err != nil {
			o.log.Warn("signal rejected by peer engine", sl.Err(err))
		}

	default:
		o.log.Warn("ignoring signal of unknown kind", slog.String("kind", string(signal.Kind)))
	}
}

// ConnectToPeer opens an outbound negotiation towards peerID. The engine
// gathers a complete description and emits a single payload which lands
// in the peer's mailbox.
func (o *Orchestrator) ConnectToPeer(peerID uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("orchestrator is shut down")
	}
	if _, ok := o.peers[peerID]; ok {
		return nil
	}

	_, err := o.createPeerLocked(peerID, true)
	return err
}

func (o *Orchestrator) createPeerLocked(peerID uuid.UUID, initiator bool) (*peerLink, error) {
	link := &peerLink{}
	if initiator {
		link.state = PeerOffering
	} else {
		link.state = PeerAnswering
	}

	handlers := PeerHandlers{
		OnSignal: func(kind domain.SignalKind, payload json.RawMessage) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := o.signaler.Deposit(ctx, o.meetingID, o.selfID, peerID, kind, payload); err != nil {
				o.log.Error("failed to deposit signal", sl.Err(err),
					slog.String("kind", string(kind)),
					slog.String("to", peerID.String()),
				)
			}
		},
		OnMedia: func(media RemoteMedia) {
			o.mu.Lock()
			if l, ok := o.peers[peerID]; ok {
				l.state = PeerConnected
			}
			o.mu.Unlock()
			if o.cb.OnMedia != nil {
				o.cb.OnMedia(peerID, media)
			}
		},
		OnClose: func() {
			o.removePeer(peerID)
		},
	}

	peer, err := o.engine.NewPeer(initiator, handlers)
	if err != nil {
		return nil, err
	}

	link.peer = peer
	o.peers[peerID] = link
	o.log.Info("peer created",
		slog.String("peer", peerID.String()),
		slog.Bool("initiator", initiator),
	)
	return link, nil
}

// removePeer isolates one peer's failure from the rest of the room.
func (o *Orchestrator) removePeer(peerID uuid.UUID) {
	o.mu.Lock()
	link, ok := o.peers[peerID]
	if ok {
		link.state = PeerClosed
		delete(o.peers, peerID)
	}
	o.mu.Unlock()

	if !ok {
		return
	}
	_ = link.peer.Close()
	if o.cb.OnPeerClosed != nil {
		o.cb.OnPeerClosed(peerID)
	}
}

// ToggleAudio flips the local enabled flag and reports the new value. No
// renegotiation happens; room-level mute state lives in the roster.
func (o *Orchestrator) ToggleAudio() bool {
	enabled := !o.audio.Enabled()
	o.audio.SetEnabled(enabled)
	return enabled
}

// PeerStates returns a snapshot of the negotiation states, keyed by
// remote participant.
func (o *Orchestrator) PeerStates() map[uuid.UUID]PeerState {
	o.mu.Lock()
	defer o.mu.Unlock()

	states := make(map[uuid.UUID]PeerState, len(o.peers))
	for id, link := range o.peers {
		states[id] = link.state
	}
	return states
}

// DisconnectAll tears everything down: every peer, the local capture and
// the poll loop. Safe to call repeatedly and from an already torn-down
// state.
func (o *Orchestrator) DisconnectAll() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true

	links := make([]*peerLink, 0, len(o.peers))
	for _, link := range o.peers {
		link.state = PeerClosed
		links = append(links, link)
	}
	o.peers = make(map[uuid.UUID]*peerLink)

	cancel := o.cancel
	done := o.done
	o.cancel = nil
	o.done = nil
	o.mu.Unlock()

	for _, link := range links {
		_ = link.peer.Close()
	}
	_ = o.audio.Close()

	if cancel != nil {
		cancel()
		<-done
	}
}
