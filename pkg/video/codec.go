package video

import (
	"strings"

	"github.com/alclab/alvideo/pkg/constants"
	apperrors "github.com/alclab/alvideo/pkg/errors"
	"github.com/pion/webrtc/v3"
)

// audioCodecParameters maps a codec name to its RTP parameters.
func audioCodecParameters(codec string) (webrtc.RTPCodecParameters, error) {
	switch strings.ToLower(codec) {
	case constants.CodecPCMU:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypePCMU, ClockRate: 8000},
			PayloadType:        0,
		}, nil
	case constants.CodecPCMA:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypePCMA, ClockRate: 8000},
			PayloadType:        8,
		}, nil
	case constants.CodecG722:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeG722, ClockRate: 8000},
			PayloadType:        9,
		}, nil
	case constants.CodecOPUS:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
			PayloadType:        111,
		}, nil
	default:
		return webrtc.RTPCodecParameters{}, apperrors.NewAppErrorf(apperrors.ErrCodeMediaNotSupported, "unsupported audio codec %q", codec)
	}
}

func videoCodecParameters(codec string) (webrtc.RTPCodecParameters, error) {
	switch strings.ToLower(codec) {
	case constants.CodecVP8:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000},
			PayloadType:        96,
		}, nil
	case constants.CodecH264:
		return webrtc.RTPCodecParameters{
			RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeH264, ClockRate: 90000},
			PayloadType:        102,
		}, nil
	default:
		return webrtc.RTPCodecParameters{}, apperrors.NewAppErrorf(apperrors.ErrCodeMediaNotSupported, "unsupported video codec %q", codec)
	}
}

// newMediaEngine registers every codec the SDK can publish or receive.
func newMediaEngine() *webrtc.MediaEngine {
	m := &webrtc.MediaEngine{}

	for _, codec := range []string{constants.CodecOPUS, constants.CodecG722, constants.CodecPCMU, constants.CodecPCMA} {
		params, _ := audioCodecParameters(codec)
		m.RegisterCodec(params, webrtc.RTPCodecTypeAudio)
	}
	m.RegisterCodec(webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: "audio/telephone-event", ClockRate: 8000},
		PayloadType:        101,
	}, webrtc.RTPCodecTypeAudio)

	for _, codec := range []string{constants.CodecVP8, constants.CodecH264} {
		params, _ := videoCodecParameters(codec)
		m.RegisterCodec(params, webrtc.RTPCodecTypeVideo)
	}
	return m
}
