package client

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v3"
	"github.com/qb9r2873g/voice-room/internal/domain"
	"github.com/qb9r2873g/voice-room/lib/logger/sl"
)

// PionEngine is the default PeerEngine, built on pion/webrtc with
// trickling disabled: each side waits for complete candidate gathering
// and ships the full session description as a single payload.
type PionEngine struct {
	config webrtc.Configuration
	audio  AudioSource
	log    *slog.Logger
}

func NewPionEngine(stunServers []string, audio AudioSource, log *slog.Logger) *PionEngine {
	if log == nil {
		log = slog.Default()
	}
	config := webrtc.Configuration{}
	if len(stunServers) > 0 {
		config.ICEServers = []webrtc.ICEServer{{URLs: stunServers}}
	}
	return &PionEngine{config: config, audio: audio, log: log}
}

func (e *PionEngine) NewPeer(initiator bool, handlers PeerHandlers) (EnginePeer, error) {
	pc, err := webrtc.NewPeerConnection(e.config)
	if err != nil {
		return nil, fmt.Errorf("creating peer connection: %w", err)
	}

	track, err := e.audio.Track()
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("acquiring local track: %w", err)
	}
	if _, err := pc.AddTrack(track); err != nil {
		pc.Close()
		return nil, fmt.Errorf("adding local track: %w", err)
	}

	peer := &pionPeer{pc: pc, handlers: handlers, log: e.log}

	pc.OnTrack(func(remote *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if handlers.OnMedia != nil {
			handlers.OnMedia(remote)
		}
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		switch state {
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateDisconnected:
			peer.reportClosed()
		}
	})

	if initiator {
		go peer.sendOffer()
	}

	return peer, nil
}

type pionPeer struct {
	pc       *webrtc.PeerConnection
	handlers PeerHandlers
	log      *slog.Logger

	closeOnce sync.Once
}

func (p *pionPeer) sendOffer() {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		p.log.Error("failed to create offer", sl.Err(err))
		p.reportClosed()
		return
	}

	gathered := webrtc.GatheringCompletePromise(p.pc)
	if err := p.pc.SetLocalDescription(offer); err != nil {
		p.log.Error("failed to set local description", sl.Err(err))
		p.reportClosed()
		return
	}
	<-gathered

	p.emitLocalDescription()
}

func (p *pionPeer) sendAnswer() {
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		p.log.Error("failed to create answer", sl.Err(err))
		p.reportClosed()
		return
	}

	gathered := webrtc.GatheringCompletePromise(p.pc)
	if err := p.pc.SetLocalDescription(answer); err != nil {
		p.log.Error("failed to set local description", sl.Err(err))
		p.reportClosed()
		return
	}
	<-gathered

	p.emitLocalDescription()
}

// emitLocalDescription classifies the complete local description by its
// SDP type and hands it to the orchestrator as one combined payload.
func (p *pionPeer) emitLocalDescription() {
	desc := p.pc.LocalDescription()
	if desc == nil {
		return
	}

	payload, err := json.Marshal(desc)
	if err != nil {
		p.log.Error("failed to marshal local description", sl.Err(err))
		return
	}

	var kind domain.SignalKind
	switch desc.Type {
	case webrtc.SDPTypeOffer:
		kind = domain.SignalOffer
	case webrtc.SDPTypeAnswer:
		kind = domain.SignalAnswer
	default:
		kind = domain.SignalICECandidate
	}

	if p.handlers.OnSignal != nil {
		p.handlers.OnSignal(kind, payload)
	}
}

func (p *pionPeer) Signal(kind domain.SignalKind, payload json.RawMessage) error {
	switch kind {
	case domain.SignalOffer:
		var desc webrtc.SessionDescription
		if err := json.Unmarshal(payload, &desc); err != nil {
			return fmt.Errorf("decoding offer: %w", err)
		}
		if err := p.pc.SetRemoteDescription(desc); err != nil {
			return fmt.Errorf("applying offer: %w", err)
		}
		go p.sendAnswer()
		return nil

	case domain.SignalAnswer:
		var desc webrtc.SessionDescription
		if err := json.Unmarshal(payload, &desc); err != nil {
			return fmt.Errorf("decoding answer: %w", err)
		}
		if err := p.pc.SetRemoteDescription(desc); err != nil {
			return fmt.Errorf("applying answer: %w", err)
		}
		return nil

	case domain.SignalICECandidate:
		var candidate webrtc.ICECandidateInit
		if err := json.Unmarshal(payload, &candidate); err != nil {
			return fmt.Errorf("decoding candidate: %w", err)
		}
		if err := p.pc.AddICECandidate(candidate); err != nil {
			return fmt.Errorf("applying candidate: %w", err)
		}
		return nil
	}

	// Unknown kinds are dropped, never fatal.
	p.log.Warn("ignoring signal of unknown kind", slog.String("kind", string(kind)))
	return nil
}

func (p *pionPeer) reportClosed() {
	p.closeOnce.Do(func() {
		if p.handlers.OnClose != nil {
			p.handlers.OnClose()
		}
	})
}

func (p *pionPeer) Close() error {
	return p.pc.Close()
}
