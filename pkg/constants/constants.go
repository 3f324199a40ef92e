package constants

import (
	"time"
)

const (
	DefaultICETimeout = 10 * time.Second
	DefaultStreamID   = "alvideo"
	DefaultAudioCodec = "opus"
	DefaultVideoCodec = "vp8"
)

// DefaultStunServers are used when no custom ICE configuration is supplied.
var DefaultStunServers = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
}

const (
	CodecPCMU = "pcmu"
	CodecPCMA = "pcma"
	CodecG722 = "g722"
	CodecOPUS = "opus"
	CodecVP8  = "vp8"
	CodecH264 = "h264"
)

const (
	MESSAGE_INIT      = "init"
	MESSAGE_OFFER     = "offer"
	MESSAGE_ANSWER    = "answer"
	MESSAGE_CONNECTED = "connected"
	MESSAGE_BYE       = "bye"
	MESSAGE_ERROR     = "error"
)

const (
	ConnectionStateLogInterval = 10
	MaxConnectionRetries       = 100
	ConnectionRetryDelay       = 50 * time.Millisecond
)

// DefaultForegroundGrace is how long a connected room may stay in the
// background before the engine forces a disconnect instead of reconnecting.
const DefaultForegroundGrace = 15 * time.Second
