package video

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alclab/alvideo/pkg/constants"
	apperrors "github.com/alclab/alvideo/pkg/errors"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// signalingTestServer upgrades one connection and runs handler on it.
func signalingTestServer(t *testing.T, handler func(*websocket.Conn, *http.Request)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn, r)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialSignaling(t *testing.T) {
	var gotAuth, gotRoom string
	url := signalingTestServer(t, func(conn *websocket.Conn, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRoom = r.Header.Get("X-Room-Name")
		_ = conn.WriteJSON(SignalMessage{
			Type:      constants.MESSAGE_INIT,
			SessionID: "sess-1",
			Data:      map[string]interface{}{"room": "lobby"},
		})
	})

	sig, err := dialSignaling(context.Background(), url, "tok-123", "lobby")
	require.NoError(t, err)
	defer sig.Close()

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "lobby", gotRoom)

	room, err := sig.awaitInit()
	require.NoError(t, err)
	assert.Equal(t, "lobby", room)
	assert.Equal(t, "sess-1", sig.sessionID)
}

func TestDialSignaling_Rejections(t *testing.T) {
	cases := []struct {
		status int
		code   apperrors.ErrorCode
	}{
		{http.StatusUnauthorized, apperrors.ErrCodeInvalidToken},
		{http.StatusForbidden, apperrors.ErrCodeInvalidToken},
		{http.StatusNotFound, apperrors.ErrCodeRoomNotFound},
		{http.StatusServiceUnavailable, apperrors.ErrCodeRoomFull},
		{http.StatusInternalServerError, apperrors.ErrCodeConnectionFailed},
	}
	for _, tc := range cases {
		status := tc.status
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(status), status)
		}))
		url := "ws" + strings.TrimPrefix(srv.URL, "http")

		_, err := dialSignaling(context.Background(), url, "tok-123", "")
		require.Error(t, err, status)
		assert.True(t, apperrors.HasCode(err, tc.code), "status %d maps to %s", status, tc.code)
		srv.Close()
	}
}

func TestDialSignaling_Unreachable(t *testing.T) {
	_, err := dialSignaling(context.Background(), "ws://127.0.0.1:1/signal", "tok-123", "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConnectionFailed))
}

func TestSignaling_AwaitInit_UnexpectedMessage(t *testing.T) {
	url := signalingTestServer(t, func(conn *websocket.Conn, _ *http.Request) {
		_ = conn.WriteJSON(SignalMessage{Type: constants.MESSAGE_BYE})
	})

	sig, err := dialSignaling(context.Background(), url, "tok-123", "")
	require.NoError(t, err)
	defer sig.Close()

	_, err = sig.awaitInit()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSignalingFailed))
}

func TestSignaling_OfferAnswer(t *testing.T) {
	url := signalingTestServer(t, func(conn *websocket.Conn, _ *http.Request) {
		var offer SignalMessage
		if err := conn.ReadJSON(&offer); err != nil {
			return
		}
		if offer.Type != constants.MESSAGE_OFFER {
			return
		}
		// an unrelated message first; the client skips it
		_ = conn.WriteJSON(SignalMessage{Type: "keepalive"})
		_ = conn.WriteJSON(SignalMessage{
			Type: constants.MESSAGE_ANSWER,
			Data: map[string]interface{}{
				"sdp":        "v=0\r\nanswer",
				"candidates": []interface{}{"candidate:1", "candidate:2"},
			},
		})
		var connected SignalMessage
		_ = conn.ReadJSON(&connected)
	})

	sig, err := dialSignaling(context.Background(), url, "tok-123", "")
	require.NoError(t, err)
	defer sig.Close()

	require.NoError(t, sig.sendOffer("v=0\r\noffer", []string{"candidate:local"}))

	sdp, candidates, err := sig.awaitAnswer()
	require.NoError(t, err)
	assert.Equal(t, "v=0\r\nanswer", sdp)
	assert.Equal(t, []string{"candidate:1", "candidate:2"}, candidates)

	assert.NoError(t, sig.sendConnected())
}

func TestSignaling_AwaitAnswer_ServerError(t *testing.T) {
	url := signalingTestServer(t, func(conn *websocket.Conn, _ *http.Request) {
		_ = conn.WriteJSON(SignalMessage{
			Type: constants.MESSAGE_ERROR,
			Data: map[string]interface{}{"reason": "codec mismatch"},
		})
	})

	sig, err := dialSignaling(context.Background(), url, "tok-123", "")
	require.NoError(t, err)
	defer sig.Close()

	_, _, err = sig.awaitAnswer()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSignalingFailed))
	assert.Contains(t, err.Error(), "codec mismatch")
}

func TestSignaling_AwaitAnswer_MissingSDP(t *testing.T) {
	url := signalingTestServer(t, func(conn *websocket.Conn, _ *http.Request) {
		_ = conn.WriteJSON(SignalMessage{
			Type: constants.MESSAGE_ANSWER,
			Data: map[string]interface{}{"candidates": []interface{}{}},
		})
	})

	sig, err := dialSignaling(context.Background(), url, "tok-123", "")
	require.NoError(t, err)
	defer sig.Close()

	_, _, err = sig.awaitAnswer()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSignalingFailed))
}

func TestSignaling_SendByeIgnoresErrors(t *testing.T) {
	url := signalingTestServer(t, func(conn *websocket.Conn, _ *http.Request) {})

	sig, err := dialSignaling(context.Background(), url, "tok-123", "")
	require.NoError(t, err)

	require.NoError(t, sig.Close())
	assert.NotPanics(t, func() { sig.sendBye() })
}
