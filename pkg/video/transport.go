package video

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alclab/alvideo/pkg/constants"
	apperrors "github.com/alclab/alvideo/pkg/errors"
	"github.com/alclab/alvideo/pkg/logger"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

// Transport wraps a single peer connection and the ICE candidates it
// gathers. One Transport serves one connection attempt; reconnecting builds
// a fresh one.
type Transport struct {
	ice         *IceOptions
	pc          *webrtc.PeerConnection
	config      webrtc.Configuration
	candidates  []webrtc.ICECandidateInit
	mu          sync.RWMutex
	stopChannel chan struct{}
}

// NewTransport creates a transport configured from the given ICE options
// (nil means engine defaults).
func NewTransport(ice *IceOptions) *Transport {
	return &Transport{
		ice:         ice,
		config:      ice.configuration(),
		stopChannel: make(chan struct{}, 1),
	}
}

// Create builds the underlying peer connection and registers its event
// handlers.
func (t *Transport) Create() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	api := webrtc.NewAPI(webrtc.WithMediaEngine(newMediaEngine()))
	pc, err := api.NewPeerConnection(t.config)
	if err != nil {
		logger.Error("failed to create peer connection", zap.Error(err))
		return apperrors.WrapError(apperrors.ErrCodeConnectionFailed, err)
	}

	t.pc = pc
	t.registerEventHandlers()
	return nil
}

func (t *Transport) registerEventHandlers() {
	t.pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate != nil {
			t.mu.Lock()
			t.candidates = append(t.candidates, candidate.ToJSON())
			t.mu.Unlock()
			logger.Debug("ICE candidate gathered", zap.String("candidate", candidate.ToJSON().Candidate))
		}
	})
	t.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		logger.Debug("connection state changed", zap.String("state", state.String()))

		switch state {
		case webrtc.PeerConnectionStateConnected:
			logger.Info("peer connection established")
		case webrtc.PeerConnectionStateDisconnected,
			webrtc.PeerConnectionStateFailed,
			webrtc.PeerConnectionStateClosed:
			t.mu.RLock()
			stopCh := t.stopChannel
			t.mu.RUnlock()

			if stopCh != nil {
				select {
				case stopCh <- struct{}{}:
				default:
					// channel is full, discard message
				}
			}
		}
	})
}

// Done signals once when the connection drops or closes.
func (t *Transport) Done() <-chan struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stopChannel
}

// GetCandidates returns the ICE candidates gathered so far.
func (t *Transport) GetCandidates() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var candidates []string
	for _, candidate := range t.candidates {
		candidates = append(candidates, candidate.Candidate)
	}
	return candidates
}

// AddICECandidate feeds a remote candidate to the peer connection.
func (t *Transport) AddICECandidate(candidate string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.pc == nil {
		return fmt.Errorf("peer connection is nil")
	}

	return t.pc.AddICECandidate(webrtc.ICECandidateInit{Candidate: candidate})
}

// State returns the connection state.
func (t *Transport) State() webrtc.PeerConnectionState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.pc == nil {
		return webrtc.PeerConnectionStateNew
	}

	return t.pc.ConnectionState()
}

// AddTrack publishes a local track on the peer connection.
func (t *Transport) AddTrack(track webrtc.TrackLocal) (*webrtc.RTPSender, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.pc == nil {
		return nil, fmt.Errorf("peer connection is nil")
	}

	return t.pc.AddTrack(track)
}

// OnTrack registers the remote-track callback.
func (t *Transport) OnTrack(f func(*webrtc.TrackRemote, *webrtc.RTPReceiver)) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.pc != nil {
		t.pc.OnTrack(f)
	}
}

// Offer creates the local offer, waits for ICE gathering to finish and
// returns the offer SDP together with the gathered candidates.
func (t *Transport) Offer() (sdp string, candidates []string, err error) {
	t.mu.RLock()
	pc := t.pc
	t.mu.RUnlock()
	if pc == nil {
		return "", nil, fmt.Errorf("peer connection is nil")
	}

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		logger.Error("failed to create offer", zap.Error(err))
		return "", nil, err
	}
	if err = pc.SetLocalDescription(offer); err != nil {
		logger.Error("failed to set local description", zap.Error(err))
		return "", nil, err
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)
	select {
	case <-time.After(t.ice.gatherTimeout()):
		return "", nil, apperrors.NewAppError(apperrors.ErrCodeConnectionTimeout, "ICE gathering timeout")
	case <-gatherComplete:
	}

	candidates = t.GetCandidates()
	if len(candidates) == 0 {
		return "", nil, fmt.Errorf("no ICE candidates generated")
	}

	local := pc.LocalDescription()
	if local == nil {
		return "", nil, fmt.Errorf("local description is nil")
	}
	return local.SDP, candidates, nil
}

// HandleAnswer applies the remote answer and its candidates.
func (t *Transport) HandleAnswer(sdp string, remoteCandidates []string) error {
	t.mu.RLock()
	pc := t.pc
	t.mu.RUnlock()
	if pc == nil {
		return fmt.Errorf("peer connection is nil")
	}

	answer := webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  sdp,
	}
	if err := pc.SetRemoteDescription(answer); err != nil {
		return fmt.Errorf("failed to set remote description: %w", err)
	}
	for _, candidate := range remoteCandidates {
		if err := t.AddICECandidate(candidate); err != nil {
			logger.Warn("failed to add ICE candidate", zap.Error(err))
		}
	}
	return nil
}

// WaitUntilConnected polls until the peer connection reaches the connected
// state, the retry budget runs out or ctx is cancelled.
func (t *Transport) WaitUntilConnected(ctx context.Context) error {
	for i := 0; i < constants.MaxConnectionRetries; i++ {
		state := t.State()
		if state == webrtc.PeerConnectionStateConnected {
			return nil
		}
		if state == webrtc.PeerConnectionStateFailed || state == webrtc.PeerConnectionStateClosed {
			return apperrors.NewAppErrorf(apperrors.ErrCodeConnectionFailed, "peer connection %s", state)
		}

		if i%constants.ConnectionStateLogInterval == 0 {
			logger.Debug("waiting for connection", zap.String("state", state.String()))
		}

		select {
		case <-ctx.Done():
			return apperrors.WrapError(apperrors.ErrCodeConnectionTimeout, ctx.Err())
		case <-time.After(constants.ConnectionRetryDelay):
		}
	}

	return apperrors.NewAppErrorf(apperrors.ErrCodeConnectionTimeout,
		"connection timeout after %d retries", constants.MaxConnectionRetries)
}

// Close releases the peer connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pc != nil {
		err := t.pc.Close()
		t.pc = nil
		return err
	}
	return nil
}
