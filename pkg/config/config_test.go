package config

import (
	"testing"
	"time"

	"github.com/alclab/alvideo/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	require.NoError(t, Load())
	require.NotNil(t, GlobalConfig)

	assert.NotEmpty(t, GlobalConfig.SignalingURL)
	assert.Equal(t, constants.DefaultStunServers, GlobalConfig.StunServers)
	assert.Equal(t, constants.DefaultICETimeout, GlobalConfig.ICEGatherTimeout)
	assert.Equal(t, constants.DefaultForegroundGrace, GlobalConfig.ForegroundGrace)
	assert.Equal(t, "info", GlobalConfig.Log.Level)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SIGNALING_URL", "wss://video.example.com/signal")
	t.Setenv("STUN_SERVERS", "stun:a.example.com:3478, stun:b.example.com:3478,")
	t.Setenv("FOREGROUND_GRACE", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	require.NoError(t, Load())

	assert.Equal(t, "wss://video.example.com/signal", GlobalConfig.SignalingURL)
	assert.Equal(t, []string{"stun:a.example.com:3478", "stun:b.example.com:3478"}, GlobalConfig.StunServers)
	assert.Equal(t, 30*time.Second, GlobalConfig.ForegroundGrace)
	assert.Equal(t, "debug", GlobalConfig.Log.Level)
}

func TestDefault_LazyLoad(t *testing.T) {
	GlobalConfig = nil
	cfg := Default()
	require.NotNil(t, cfg)
	assert.Same(t, cfg, Default())
}

func TestSplitServers(t *testing.T) {
	assert.Equal(t, constants.DefaultStunServers, splitServers(""))
	assert.Equal(t, []string{"stun:a"}, splitServers("stun:a"))
	assert.Equal(t, []string{"stun:a", "stun:b"}, splitServers(" stun:a ,, stun:b "))
}
