package video

import (
	"context"

	apperrors "github.com/alclab/alvideo/pkg/errors"
	"github.com/alclab/alvideo/pkg/logger"
	"go.uber.org/zap"
)

// AppState mirrors the host application's foreground/background state. The
// application is responsible for reporting transitions via Room.SetAppState.
type AppState string

const (
	AppStateForeground AppState = "foreground"
	AppStateBackground AppState = "background"
)

// SetAppState reports an application state transition to the Room.
//
// Backgrounding while the Room is still connecting disconnects immediately.
// Backgrounding a connected Room parks it for the engine's grace window:
// returning to the foreground within the window reconnects when
// ShouldReconnectAfterForeground is set, otherwise disconnects; letting the
// window expire disconnects in any case.
func (r *Room) SetAppState(state AppState) {
	r.mu.Lock()
	prev := r.appState
	r.appState = state
	current := r.state
	r.mu.Unlock()
	if prev == state {
		return
	}
	logger.Debug("application state changed",
		zap.String("sid", r.sid),
		zap.String("from", string(prev)),
		zap.String("to", string(state)),
	)

	switch state {
	case AppStateBackground:
		switch current {
		case RoomStateConnecting, RoomStateReconnecting:
			r.disconnect(apperrors.NewAppError(apperrors.ErrCodeRoomDisconnected,
				"application entered background while connecting"))
		case RoomStateConnected:
			r.engine.park(r)
		}
	case AppStateForeground:
		if r.engine == nil || !r.engine.unpark(r) {
			return
		}
		if r.opts.ShouldReconnectAfterForeground() {
			r.reconnect()
		} else {
			r.disconnect(apperrors.NewAppError(apperrors.ErrCodeRoomDisconnected,
				"foreground reconnect disabled by connect options"))
		}
	}
}

// reconnect renegotiates the session on a fresh transport.
func (r *Room) reconnect() {
	r.setState(RoomStateReconnecting)
	r.notify(func(d RoomDelegate) { d.OnReconnecting(r) })

	if err := r.engine.reestablish(context.Background(), r); err != nil {
		logger.Error("reconnect failed", zap.String("sid", r.sid), zap.Error(err))
		r.disconnect(err)
		return
	}

	r.setState(RoomStateConnected)
	logger.Info("room reconnected", zap.String("sid", r.sid))
	r.notify(func(d RoomDelegate) { d.OnReconnected(r) })
}
