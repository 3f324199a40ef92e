package video

import (
	"context"
	"net/http"
	"sync"

	"github.com/alclab/alvideo/pkg/constants"
	apperrors "github.com/alclab/alvideo/pkg/errors"
	"github.com/alclab/alvideo/pkg/logger"
	"github.com/alclab/alvideo/pkg/utils"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SignalMessage is a WebSocket signaling message.
type SignalMessage struct {
	Type      string                 `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// signalingClient speaks the room signaling protocol over a websocket:
// init (server assigns a session and a room), offer, answer, connected, bye.
type signalingClient struct {
	conn      *websocket.Conn
	sessionID string
	writeMu   sync.Mutex
}

// dialSignaling opens the signaling websocket, authenticating with the
// access token and requesting the named room ("" asks for a new one).
func dialSignaling(ctx context.Context, url, token, roomName string) (*signalingClient, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	if roomName != "" {
		header.Set("X-Room-Name", roomName)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return nil, apperrors.WrapError(apperrors.ErrCodeInvalidToken, err)
			case http.StatusNotFound:
				return nil, apperrors.WrapError(apperrors.ErrCodeRoomNotFound, err)
			case http.StatusServiceUnavailable:
				return nil, apperrors.WrapError(apperrors.ErrCodeRoomFull, err)
			}
		}
		return nil, apperrors.WrapError(apperrors.ErrCodeConnectionFailed, err)
	}
	return &signalingClient{conn: conn}, nil
}

// awaitInit reads the init message and returns the room name the server
// placed the session in.
func (s *signalingClient) awaitInit() (string, error) {
	msg, err := s.read()
	if err != nil {
		return "", err
	}
	if msg.Type != constants.MESSAGE_INIT {
		return "", apperrors.NewAppErrorf(apperrors.ErrCodeSignalingFailed, "unexpected message type: %s", msg.Type)
	}
	s.sessionID = msg.SessionID
	room, _ := msg.Data["room"].(string)
	logger.Info("signaling session established",
		zap.String("session", s.sessionID),
		zap.String("room", room),
	)
	return room, nil
}

// sendOffer sends the local offer SDP and candidates.
func (s *signalingClient) sendOffer(sdp string, candidates []string) error {
	return s.write(SignalMessage{
		Type:      constants.MESSAGE_OFFER,
		SessionID: s.sessionID,
		Data: map[string]interface{}{
			"sdp":        sdp,
			"candidates": candidates,
		},
	})
}

// awaitAnswer reads until the remote answer arrives and returns its SDP and
// candidates. A server error message aborts the wait.
func (s *signalingClient) awaitAnswer() (string, []string, error) {
	for {
		msg, err := s.read()
		if err != nil {
			return "", nil, err
		}
		switch msg.Type {
		case constants.MESSAGE_ANSWER:
			sdp, ok := msg.Data["sdp"].(string)
			if !ok || sdp == "" {
				return "", nil, apperrors.NewAppError(apperrors.ErrCodeSignalingFailed, "answer is missing SDP")
			}
			return sdp, utils.ExtractStrings(msg.Data["candidates"]), nil
		case constants.MESSAGE_ERROR:
			reason, _ := msg.Data["reason"].(string)
			return "", nil, apperrors.NewAppErrorf(apperrors.ErrCodeSignalingFailed, "server rejected offer: %s", reason)
		default:
			logger.Debug("ignoring signaling message while waiting for answer", zap.String("type", msg.Type))
		}
	}
}

// sendConnected acknowledges that the peer connection is up.
func (s *signalingClient) sendConnected() error {
	return s.write(SignalMessage{
		Type:      constants.MESSAGE_CONNECTED,
		SessionID: s.sessionID,
	})
}

// sendBye announces an orderly disconnect. Failures are ignored; the server
// notices the socket closing either way.
func (s *signalingClient) sendBye() {
	_ = s.write(SignalMessage{
		Type:      constants.MESSAGE_BYE,
		SessionID: s.sessionID,
	})
}

func (s *signalingClient) read() (SignalMessage, error) {
	var msg SignalMessage
	if err := s.conn.ReadJSON(&msg); err != nil {
		return SignalMessage{}, apperrors.WrapError(apperrors.ErrCodeSignalingFailed, err)
	}
	return msg, nil
}

func (s *signalingClient) write(msg SignalMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		return apperrors.WrapError(apperrors.ErrCodeSignalingFailed, err)
	}
	return nil
}

// Close closes the underlying websocket.
func (s *signalingClient) Close() error {
	return s.conn.Close()
}
