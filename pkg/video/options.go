package video

import (
	"github.com/alclab/alvideo/pkg/dispatch"
	apperrors "github.com/alclab/alvideo/pkg/errors"
	"github.com/google/uuid"
)

// ConnectOptions is the immutable configuration used when connecting to a
// Room. Instances can only be created through NewConnectOptions or
// NewConnectOptionsWith; once returned they never change and are safe for
// concurrent reads.
type ConnectOptions struct {
	accessToken              string
	audioTracks              []*LocalAudioTrack
	videoTracks              []*LocalVideoTrack
	roomName                 string
	iceOptions               *IceOptions
	delegateQueue            *dispatch.Queue
	reconnectAfterForeground bool
	callKitID                uuid.UUID
}

// ConnectOptionsBuilder collects settings inside the one-shot configure
// callback passed to NewConnectOptionsWith. Assigning a field twice keeps the
// last value. Builders must not be shared across goroutines and are discarded
// once the callback returns.
type ConnectOptionsBuilder struct {
	// AudioTracks are the local audio tracks shared in the Room on connect.
	AudioTracks []*LocalAudioTrack
	// VideoTracks are the local video tracks shared in the Room on connect.
	VideoTracks []*LocalVideoTrack
	// RoomName is the Room to join. Leaving it empty creates a new Room.
	RoomName string
	// IceOptions overrides the engine's network-traversal defaults.
	IceOptions *IceOptions
	// DelegateQueue is where RoomDelegate callbacks are delivered. The Room
	// keeps a reference to it for its whole lifetime. A nil queue delivers
	// callbacks synchronously on the engine's event goroutine.
	DelegateQueue *dispatch.Queue
	// ReconnectAfterForeground controls whether a Room that was backgrounded
	// while connected reconnects when the app returns to the foreground
	// within the grace window. Leaving it nil picks the default: true, or
	// false when CallKitID is set (call-managed apps keep sessions alive in
	// the background themselves).
	ReconnectAfterForeground *bool
	// CallKitID is an optional correlation UUID for an external
	// call-management integration, echoed back on the Room.
	CallKitID uuid.UUID

	token string
}

// newConnectOptionsBuilder seeds a builder. Deliberately unexported: builders
// only exist inside the configure callback.
func newConnectOptionsBuilder(token string) *ConnectOptionsBuilder {
	return &ConnectOptionsBuilder{token: token}
}

// freeze captures the builder state into an immutable ConnectOptions.
func (b *ConnectOptionsBuilder) freeze() *ConnectOptions {
	opts := &ConnectOptions{
		accessToken:   b.token,
		audioTracks:   make([]*LocalAudioTrack, len(b.AudioTracks)),
		videoTracks:   make([]*LocalVideoTrack, len(b.VideoTracks)),
		roomName:      b.RoomName,
		iceOptions:    b.IceOptions.clone(),
		delegateQueue: b.DelegateQueue,
		callKitID:     b.CallKitID,
	}
	copy(opts.audioTracks, b.AudioTracks)
	copy(opts.videoTracks, b.VideoTracks)
	if b.ReconnectAfterForeground != nil {
		opts.reconnectAfterForeground = *b.ReconnectAfterForeground
	} else {
		opts.reconnectAfterForeground = b.CallKitID == uuid.Nil
	}
	return opts
}

// NewConnectOptions creates ConnectOptions with every optional setting at its
// default. The token must not be empty.
func NewConnectOptions(token string) (*ConnectOptions, error) {
	return NewConnectOptionsWith(token, nil)
}

// NewConnectOptionsWith creates ConnectOptions, invoking build synchronously
// exactly once with a fresh builder before the state is frozen. A panic in
// build propagates to the caller and no options object is produced.
func NewConnectOptionsWith(token string, build func(*ConnectOptionsBuilder)) (*ConnectOptions, error) {
	if token == "" {
		return nil, apperrors.NewAppError(apperrors.ErrCodeInvalidArgument, "access token must not be empty")
	}
	builder := newConnectOptionsBuilder(token)
	if build != nil {
		build(builder)
	}
	return builder.freeze(), nil
}

// AccessToken returns the credential used to join the Room.
func (o *ConnectOptions) AccessToken() string {
	return o.accessToken
}

// AudioTracks returns a copy of the local audio tracks shared on connect.
func (o *ConnectOptions) AudioTracks() []*LocalAudioTrack {
	out := make([]*LocalAudioTrack, len(o.audioTracks))
	copy(out, o.audioTracks)
	return out
}

// VideoTracks returns a copy of the local video tracks shared on connect.
func (o *ConnectOptions) VideoTracks() []*LocalVideoTrack {
	out := make([]*LocalVideoTrack, len(o.videoTracks))
	copy(out, o.videoTracks)
	return out
}

// RoomName returns the Room to join; empty means a new Room is created.
func (o *ConnectOptions) RoomName() string {
	return o.roomName
}

// IceOptions returns a copy of the custom ICE configuration, or nil when the
// engine defaults apply.
func (o *ConnectOptions) IceOptions() *IceOptions {
	return o.iceOptions.clone()
}

// DelegateQueue returns the queue RoomDelegate callbacks are delivered on,
// or nil for synchronous delivery.
func (o *ConnectOptions) DelegateQueue() *dispatch.Queue {
	return o.delegateQueue
}

// ShouldReconnectAfterForeground reports whether returning to the foreground
// within the grace window reconnects the Room instead of disconnecting it.
func (o *ConnectOptions) ShouldReconnectAfterForeground() bool {
	return o.reconnectAfterForeground
}

// CallKitID returns the call-management correlation UUID, or uuid.Nil when
// unset.
func (o *ConnectOptions) CallKitID() uuid.UUID {
	return o.callKitID
}

// HasCallKitID reports whether a call-management UUID was provided.
func (o *ConnectOptions) HasCallKitID() bool {
	return o.callKitID != uuid.Nil
}

// Equal reports whether two options objects hold the same observable values.
// Tracks and delegate queues compare by identity, everything else by value.
func (o *ConnectOptions) Equal(other *ConnectOptions) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.accessToken != other.accessToken ||
		o.roomName != other.roomName ||
		o.reconnectAfterForeground != other.reconnectAfterForeground ||
		o.callKitID != other.callKitID ||
		o.delegateQueue != other.delegateQueue {
		return false
	}
	if !o.iceOptions.equal(other.iceOptions) {
		return false
	}
	if len(o.audioTracks) != len(other.audioTracks) || len(o.videoTracks) != len(other.videoTracks) {
		return false
	}
	for i, t := range o.audioTracks {
		if t != other.audioTracks[i] {
			return false
		}
	}
	for i, t := range o.videoTracks {
		if t != other.videoTracks[i] {
			return false
		}
	}
	return true
}
