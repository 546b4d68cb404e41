package client

import (
	"sync"

	"github.com/pion/webrtc/v3"
	"github.com/pion/webrtc/v3/pkg/media"
)

// AudioSource is the local capture handle. Enabled is a local flag, not a
// signaling event: flipping it mutes the outbound audio without any
// renegotiation.
type AudioSource interface {
	Track() (webrtc.TrackLocal, error)
	SetEnabled(enabled bool)
	Enabled() bool
	Close() error
}

// SampleAudioSource adapts a sample-fed local track (microphone capture,
// file playback) into an AudioSource. Writers push Opus samples through
// WriteSample; while disabled, samples are dropped on the floor.
type SampleAudioSource struct {
	mu      sync.RWMutex
	track   *webrtc.TrackLocalStaticSample
	enabled bool
	closed  bool
}

func NewSampleAudioSource(id, streamID string) (*SampleAudioSource, error) {
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		id,
		streamID,
	)
	if err != nil {
		return nil, err
	}
	return &SampleAudioSource{track: track, enabled: true}, nil
}

func (s *SampleAudioSource) Track() (webrtc.TrackLocal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, webrtc.ErrConnectionClosed
	}
	return s.track, nil
}

func (s *SampleAudioSource) WriteSample(sample media.Sample) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || !s.enabled {
		return nil
	}
	return s.track.WriteSample(sample)
}

func (s *SampleAudioSource) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

func (s *SampleAudioSource) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

func (s *SampleAudioSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
