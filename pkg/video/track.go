package video

import (
	"sync"

	"github.com/alclab/alvideo/pkg/constants"
	apperrors "github.com/alclab/alvideo/pkg/errors"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v3"
	"github.com/pion/webrtc/v3/pkg/media"
)

// localTrack carries the state shared by audio and video local tracks.
type localTrack struct {
	id      string
	name    string
	codec   string
	rtp     *webrtc.TrackLocalStaticSample
	mu      sync.RWMutex
	enabled bool
}

func newLocalTrack(name, codec string, params webrtc.RTPCodecParameters, kind string) (*localTrack, error) {
	if name == "" {
		name = kind
	}
	rtp, err := webrtc.NewTrackLocalStaticSample(params.RTPCodecCapability, kind, constants.DefaultStreamID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrCodeTrackFailed, err)
	}
	return &localTrack{
		id:      uuid.NewString(),
		name:    name,
		codec:   codec,
		rtp:     rtp,
		enabled: true,
	}, nil
}

// ID returns the track's unique identifier.
func (t *localTrack) ID() string {
	return t.id
}

// Name returns the track's display name.
func (t *localTrack) Name() string {
	return t.name
}

// Codec returns the codec name the track publishes with.
func (t *localTrack) Codec() string {
	return t.codec
}

// IsEnabled reports whether samples written to the track are published.
func (t *localTrack) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// SetEnabled mutes (false) or unmutes (true) the track.
func (t *localTrack) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// WriteSample publishes one media sample. Samples written while the track is
// disabled are silently dropped.
func (t *localTrack) WriteSample(sample media.Sample) error {
	if !t.IsEnabled() {
		return nil
	}
	return t.rtp.WriteSample(sample)
}

// rtpTrack exposes the underlying pion track for the transport.
func (t *localTrack) rtpTrack() *webrtc.TrackLocalStaticSample {
	return t.rtp
}

// LocalAudioTrack is a local audio stream shared in the Room on connect.
type LocalAudioTrack struct {
	*localTrack
}

// NewLocalAudioTrack creates an Opus audio track.
func NewLocalAudioTrack(name string) (*LocalAudioTrack, error) {
	return NewLocalAudioTrackWithCodec(name, constants.DefaultAudioCodec)
}

// NewLocalAudioTrackWithCodec creates an audio track with an explicit codec
// (opus, pcmu, pcma or g722).
func NewLocalAudioTrackWithCodec(name, codec string) (*LocalAudioTrack, error) {
	params, err := audioCodecParameters(codec)
	if err != nil {
		return nil, err
	}
	base, err := newLocalTrack(name, codec, params, "audio")
	if err != nil {
		return nil, err
	}
	return &LocalAudioTrack{localTrack: base}, nil
}

// Kind returns the track's media kind.
func (t *LocalAudioTrack) Kind() webrtc.RTPCodecType {
	return webrtc.RTPCodecTypeAudio
}

// LocalVideoTrack is a local video stream shared in the Room on connect.
type LocalVideoTrack struct {
	*localTrack
}

// NewLocalVideoTrack creates a VP8 video track.
func NewLocalVideoTrack(name string) (*LocalVideoTrack, error) {
	return NewLocalVideoTrackWithCodec(name, constants.DefaultVideoCodec)
}

// NewLocalVideoTrackWithCodec creates a video track with an explicit codec
// (vp8 or h264).
func NewLocalVideoTrackWithCodec(name, codec string) (*LocalVideoTrack, error) {
	params, err := videoCodecParameters(codec)
	if err != nil {
		return nil, err
	}
	base, err := newLocalTrack(name, codec, params, "video")
	if err != nil {
		return nil, err
	}
	return &LocalVideoTrack{localTrack: base}, nil
}

// Kind returns the track's media kind.
func (t *LocalVideoTrack) Kind() webrtc.RTPCodecType {
	return webrtc.RTPCodecTypeVideo
}
