package video

import (
	"testing"
	"time"

	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransport(t *testing.T) {
	ice := &IceOptions{
		Servers: []IceServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
	}

	transport := NewTransport(ice)
	require.NotNil(t, transport)
	assert.Equal(t, ice.Servers[0].URLs, transport.config.ICEServers[0].URLs)
	assert.Empty(t, transport.candidates)
	assert.Nil(t, transport.pc)
}

func TestTransport_Create(t *testing.T) {
	transport := NewTransport(nil)
	err := transport.Create()
	require.NoError(t, err)
	defer transport.Close()

	assert.NotNil(t, transport.pc)
}

func TestTransport_State(t *testing.T) {
	transport := NewTransport(nil)
	assert.Equal(t, webrtc.PeerConnectionStateNew, transport.State())

	err := transport.Create()
	require.NoError(t, err)
	defer transport.Close()

	assert.Equal(t, webrtc.PeerConnectionStateNew, transport.State())
}

func TestTransport_GetCandidates(t *testing.T) {
	transport := NewTransport(nil)
	assert.Empty(t, transport.GetCandidates())

	transport.candidates = []webrtc.ICECandidateInit{
		{Candidate: "candidate:1 1 UDP 2130706431 192.168.1.1 54400 typ host"},
		{Candidate: "candidate:2 1 UDP 2130706431 192.168.1.2 54401 typ host"},
	}

	candidates := transport.GetCandidates()
	require.Len(t, candidates, 2)
	assert.Equal(t, "candidate:1 1 UDP 2130706431 192.168.1.1 54400 typ host", candidates[0])
}

func TestTransport_AddICECandidate(t *testing.T) {
	transport := NewTransport(nil)

	err := transport.AddICECandidate("candidate:1 1 UDP 2130706431 192.168.1.1 54400 typ host")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "peer connection is nil")

	err = transport.Create()
	require.NoError(t, err)
	defer transport.Close()

	assert.NotPanics(t, func() {
		_ = transport.AddICECandidate("candidate:1 1 UDP 2130706431 192.168.1.1 54400 typ host")
	})
}

func TestTransport_AddTrack(t *testing.T) {
	transport := NewTransport(nil)

	_, err := transport.AddTrack(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "peer connection is nil")

	err = transport.Create()
	require.NoError(t, err)
	defer transport.Close()

	track, err := NewLocalAudioTrack("mic")
	require.NoError(t, err)

	sender, err := transport.AddTrack(track.rtpTrack())
	require.NoError(t, err)
	assert.NotNil(t, sender)
}

func TestTransport_OfferRequiresPeerConnection(t *testing.T) {
	transport := NewTransport(nil)
	_, _, err := transport.Offer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "peer connection is nil")
}

func TestTransport_HandleAnswerRequiresPeerConnection(t *testing.T) {
	transport := NewTransport(nil)
	err := transport.HandleAnswer("v=0\r\n", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "peer connection is nil")
}

func TestTransport_Close(t *testing.T) {
	transport := NewTransport(nil)

	err := transport.Close()
	assert.NoError(t, err)

	err = transport.Create()
	require.NoError(t, err)

	err = transport.Close()
	assert.NoError(t, err)
	assert.Nil(t, transport.pc)

	err = transport.Close()
	assert.NoError(t, err)
}

func TestTransport_ConcurrentAccess(t *testing.T) {
	transport := NewTransport(nil)
	err := transport.Create()
	require.NoError(t, err)
	defer transport.Close()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()
			for j := 0; j < 100; j++ {
				transport.State()
				transport.GetCandidates()
			}
		}()
	}

	for i := 0; i < 10; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for concurrent access test")
		}
	}
}

func BenchmarkNewTransport(b *testing.B) {
	ice := &IceOptions{
		Servers: []IceServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
	}
	for i := 0; i < b.N; i++ {
		NewTransport(ice)
	}
}
