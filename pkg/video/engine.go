package video

import (
	"context"
	"sync"
	"time"

	"github.com/alclab/alvideo/pkg/config"
	"github.com/alclab/alvideo/pkg/constants"
	apperrors "github.com/alclab/alvideo/pkg/errors"
	"github.com/alclab/alvideo/pkg/logger"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Engine establishes Room sessions from ConnectOptions. One engine serves
// any number of rooms; most applications use the package-level Connect.
type Engine struct {
	cfg    *config.Config
	mu     sync.RWMutex
	rooms  map[string]*Room
	parked *gocache.Cache

	// establishFn performs the signaling/transport handshake; replaceable
	// in tests.
	establishFn func(context.Context, *Room) error
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// Connect joins (or creates) a Room using the default engine.
func Connect(ctx context.Context, opts *ConnectOptions, delegate RoomDelegate) (*Room, error) {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine()
	})
	return defaultEngine.Connect(ctx, opts, delegate)
}

// NewEngine creates an engine using the global SDK configuration.
func NewEngine() *Engine {
	return NewEngineWith(config.Default())
}

// NewEngineWith creates an engine with an explicit configuration.
func NewEngineWith(cfg *config.Config) *Engine {
	grace := constants.DefaultForegroundGrace
	if cfg != nil && cfg.ForegroundGrace > 0 {
		grace = cfg.ForegroundGrace
	}
	e := &Engine{
		cfg:    cfg,
		rooms:  make(map[string]*Room),
		parked: gocache.New(grace, cleanupInterval(grace)),
	}
	e.parked.OnEvicted(func(sid string, value interface{}) {
		room, ok := value.(*Room)
		if !ok || room.isReclaimed() || room.State() == RoomStateDisconnected {
			return
		}
		logger.Info("background grace expired, disconnecting room", zap.String("sid", sid))
		room.disconnect(apperrors.NewAppError(apperrors.ErrCodeRoomDisconnected,
			"background grace period expired"))
	})
	e.establishFn = e.establish
	return e
}

func cleanupInterval(grace time.Duration) time.Duration {
	interval := grace / 2
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// Connect validates the options, performs the session handshake and returns
// a connected Room. The delegate's OnConnected fires after Connect returns
// the same Room instance.
func (e *Engine) Connect(ctx context.Context, opts *ConnectOptions, delegate RoomDelegate) (*Room, error) {
	if opts == nil {
		return nil, apperrors.NewAppError(apperrors.ErrCodeInvalidArgument, "connect options are required")
	}
	if opts.AccessToken() == "" {
		// only reachable by bypassing the factory functions
		return nil, apperrors.NewAppError(apperrors.ErrCodeInvalidArgument, "access token must not be empty")
	}

	room := newRoom(e, opts, delegate)
	logger.Info("connecting to room",
		zap.String("sid", room.sid),
		zap.String("room", opts.RoomName()),
		zap.Int("audioTracks", len(opts.audioTracks)),
		zap.Int("videoTracks", len(opts.videoTracks)),
	)

	if err := e.establishFn(ctx, room); err != nil {
		room.setState(RoomStateDisconnected)
		return nil, err
	}

	room.setState(RoomStateConnected)
	e.mu.Lock()
	e.rooms[room.sid] = room
	e.mu.Unlock()

	room.notify(func(d RoomDelegate) { d.OnConnected(room) })
	return room, nil
}

// Room returns a connected room by session identifier.
func (e *Engine) Room(sid string) (*Room, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	room, ok := e.rooms[sid]
	return room, ok
}

// establish runs the full handshake: signaling dial, track publication,
// offer/answer exchange and the wait for ICE connectivity.
func (e *Engine) establish(ctx context.Context, room *Room) error {
	sig, err := dialSignaling(ctx, e.signalingURL(), room.opts.AccessToken(), room.opts.RoomName())
	if err != nil {
		return err
	}
	assignedName, err := sig.awaitInit()
	if err != nil {
		_ = sig.Close()
		return err
	}

	transport := NewTransport(room.opts.iceOptions)
	abort := func() {
		_ = transport.Close()
		_ = sig.Close()
	}
	if err := transport.Create(); err != nil {
		abort()
		return err
	}

	for _, track := range room.opts.audioTracks {
		if _, err := transport.AddTrack(track.rtpTrack()); err != nil {
			abort()
			return apperrors.WrapError(apperrors.ErrCodeTrackFailed, err)
		}
	}
	for _, track := range room.opts.videoTracks {
		if _, err := transport.AddTrack(track.rtpTrack()); err != nil {
			abort()
			return apperrors.WrapError(apperrors.ErrCodeTrackFailed, err)
		}
	}

	offer, candidates, err := transport.Offer()
	if err != nil {
		abort()
		return err
	}
	if err := sig.sendOffer(offer, candidates); err != nil {
		abort()
		return err
	}
	answer, remoteCandidates, err := sig.awaitAnswer()
	if err != nil {
		abort()
		return err
	}
	if err := transport.HandleAnswer(answer, remoteCandidates); err != nil {
		abort()
		return apperrors.WrapError(apperrors.ErrCodeConnectionFailed, err)
	}
	if err := sig.sendConnected(); err != nil {
		abort()
		return err
	}
	if err := transport.WaitUntilConnected(ctx); err != nil {
		abort()
		return err
	}

	room.attach(sig, transport, assignedName)
	return nil
}

// reestablish drops the room's current transport and negotiates a new one.
func (e *Engine) reestablish(ctx context.Context, room *Room) error {
	room.teardownTransport()
	return e.establishFn(ctx, room)
}

func (e *Engine) signalingURL() string {
	if e.cfg != nil && e.cfg.SignalingURL != "" {
		return e.cfg.SignalingURL
	}
	return config.Default().SignalingURL
}

// park holds a backgrounded room for the grace window.
func (e *Engine) park(room *Room) {
	e.parked.Set(room.sid, room, gocache.DefaultExpiration)
	logger.Debug("room parked for background grace", zap.String("sid", room.sid))
}

// unpark reclaims a parked room, reporting whether it was still inside the
// grace window. Reclaiming never triggers the eviction disconnect.
func (e *Engine) unpark(room *Room) bool {
	if _, ok := e.parked.Get(room.sid); !ok {
		return false
	}
	room.markReclaimed(true)
	e.parked.Delete(room.sid)
	room.markReclaimed(false)
	return true
}

// forget removes a room from the registry once it has disconnected.
func (e *Engine) forget(room *Room) {
	e.mu.Lock()
	delete(e.rooms, room.sid)
	e.mu.Unlock()
	if _, ok := e.parked.Get(room.sid); ok {
		room.markReclaimed(true)
		e.parked.Delete(room.sid)
		room.markReclaimed(false)
	}
}
