package video

import (
	"sync"

	"github.com/alclab/alvideo/pkg/dispatch"
	apperrors "github.com/alclab/alvideo/pkg/errors"
	"github.com/alclab/alvideo/pkg/logger"
	"github.com/alclab/alvideo/pkg/token"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomState is the lifecycle state of a Room session.
type RoomState string

const (
	RoomStateConnecting   RoomState = "connecting"
	RoomStateConnected    RoomState = "connected"
	RoomStateReconnecting RoomState = "reconnecting"
	RoomStateDisconnected RoomState = "disconnected"
)

// RoomDelegate receives Room lifecycle events. Callbacks are delivered on
// the ConnectOptions delegate queue when one was set, otherwise they run
// synchronously on the engine's calling goroutine.
type RoomDelegate interface {
	OnConnected(room *Room)
	OnDisconnected(room *Room, err error)
	OnReconnecting(room *Room)
	OnReconnected(room *Room)
}

// RoomDelegateFuncs adapts plain functions to RoomDelegate. Nil fields are
// ignored.
type RoomDelegateFuncs struct {
	ConnectedFunc    func(*Room)
	DisconnectedFunc func(*Room, error)
	ReconnectingFunc func(*Room)
	ReconnectedFunc  func(*Room)
}

func (f *RoomDelegateFuncs) OnConnected(room *Room) {
	if f.ConnectedFunc != nil {
		f.ConnectedFunc(room)
	}
}

func (f *RoomDelegateFuncs) OnDisconnected(room *Room, err error) {
	if f.DisconnectedFunc != nil {
		f.DisconnectedFunc(room, err)
	}
}

func (f *RoomDelegateFuncs) OnReconnecting(room *Room) {
	if f.ReconnectingFunc != nil {
		f.ReconnectingFunc(room)
	}
}

func (f *RoomDelegateFuncs) OnReconnected(room *Room) {
	if f.ReconnectedFunc != nil {
		f.ReconnectedFunc(room)
	}
}

// LocalParticipant is the local side of a Room: the identity the access
// token was minted for and the tracks published on connect.
type LocalParticipant struct {
	identity    string
	audioTracks []*LocalAudioTrack
	videoTracks []*LocalVideoTrack
}

// Identity returns the participant identity, or "" when the token carries
// none.
func (p *LocalParticipant) Identity() string {
	return p.identity
}

// AudioTracks returns a copy of the published audio tracks.
func (p *LocalParticipant) AudioTracks() []*LocalAudioTrack {
	out := make([]*LocalAudioTrack, len(p.audioTracks))
	copy(out, p.audioTracks)
	return out
}

// VideoTracks returns a copy of the published video tracks.
func (p *LocalParticipant) VideoTracks() []*LocalVideoTrack {
	out := make([]*LocalVideoTrack, len(p.videoTracks))
	copy(out, p.videoTracks)
	return out
}

// Room is a live session in a multi-participant communication context. Rooms
// are created by Engine.Connect and hold their ConnectOptions (including the
// delegate queue) until disconnected.
type Room struct {
	sid      string
	opts     *ConnectOptions
	delegate RoomDelegate
	engine   *Engine
	local    *LocalParticipant

	mu        sync.RWMutex
	name      string
	state     RoomState
	appState  AppState
	reclaimed bool
	transport *Transport
	signaling *signalingClient
}

func newRoom(engine *Engine, opts *ConnectOptions, delegate RoomDelegate) *Room {
	return &Room{
		sid:      uuid.NewString(),
		opts:     opts,
		delegate: delegate,
		engine:   engine,
		name:     opts.RoomName(),
		state:    RoomStateConnecting,
		appState: AppStateForeground,
		local: &LocalParticipant{
			identity:    token.IdentityFromToken(opts.AccessToken()),
			audioTracks: opts.AudioTracks(),
			videoTracks: opts.VideoTracks(),
		},
	}
}

// SID returns the session identifier assigned to this Room instance.
func (r *Room) SID() string {
	return r.sid
}

// Name returns the Room name. For connects without a RoomName this is the
// name the server assigned.
func (r *Room) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.name
}

// State returns the current lifecycle state.
func (r *Room) State() RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// CallKitID echoes the call-management UUID from the ConnectOptions.
func (r *Room) CallKitID() uuid.UUID {
	return r.opts.CallKitID()
}

// LocalParticipant returns the local side of the session.
func (r *Room) LocalParticipant() *LocalParticipant {
	return r.local
}

// Options returns the immutable configuration this Room was created with.
func (r *Room) Options() *ConnectOptions {
	return r.opts
}

// DelegateQueue returns the queue delegate callbacks are delivered on.
func (r *Room) DelegateQueue() *dispatch.Queue {
	return r.opts.DelegateQueue()
}

// Disconnect leaves the Room and releases its transport.
func (r *Room) Disconnect() {
	r.disconnect(nil)
}

func (r *Room) setState(state RoomState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state
}

// attach installs a freshly negotiated transport and signaling pair.
func (r *Room) attach(sig *signalingClient, transport *Transport, assignedName string) {
	r.mu.Lock()
	r.signaling = sig
	r.transport = transport
	r.mu.Unlock()
	r.attachName(assignedName)
	go r.watchTransport(transport)
}

// attachName records the server-assigned room name for connects that did not
// request one.
func (r *Room) attachName(assignedName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.name == "" {
		r.name = assignedName
	}
}

// teardownTransport quietly drops the current transport, keeping the Room
// state untouched. Used before renegotiating.
func (r *Room) teardownTransport() {
	r.mu.Lock()
	sig := r.signaling
	transport := r.transport
	r.signaling = nil
	r.transport = nil
	r.mu.Unlock()

	if sig != nil {
		sig.sendBye()
		_ = sig.Close()
	}
	if transport != nil {
		_ = transport.Close()
	}
}

func (r *Room) disconnect(err error) {
	r.mu.Lock()
	if r.state == RoomStateDisconnected {
		r.mu.Unlock()
		return
	}
	r.state = RoomStateDisconnected
	sig := r.signaling
	transport := r.transport
	r.signaling = nil
	r.transport = nil
	r.mu.Unlock()

	if sig != nil {
		sig.sendBye()
		_ = sig.Close()
	}
	if transport != nil {
		_ = transport.Close()
	}
	if r.engine != nil {
		r.engine.forget(r)
	}

	if err != nil {
		logger.Info("room disconnected", zap.String("sid", r.sid), zap.Error(err))
	} else {
		logger.Info("room disconnected", zap.String("sid", r.sid))
	}
	r.notify(func(d RoomDelegate) { d.OnDisconnected(r, err) })
}

// watchTransport turns a dropped peer connection into a Room disconnect,
// unless the transport has already been replaced.
func (r *Room) watchTransport(transport *Transport) {
	<-transport.Done()

	r.mu.RLock()
	current := r.transport
	state := r.state
	r.mu.RUnlock()
	if current != transport || state != RoomStateConnected {
		return
	}
	r.disconnect(apperrors.NewAppError(apperrors.ErrCodeConnectionFailed, "peer connection lost"))
}

// notify delivers a delegate callback on the configured queue, or inline
// when no queue was set.
func (r *Room) notify(fn func(RoomDelegate)) {
	d := r.delegate
	if d == nil {
		return
	}
	if q := r.opts.DelegateQueue(); q != nil {
		q.Async(func() { fn(d) })
		return
	}
	fn(d)
}

func (r *Room) markReclaimed(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reclaimed = v
}

func (r *Room) isReclaimed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reclaimed
}
