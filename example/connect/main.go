// Command connect joins a room and publishes a microphone audio track, driving
// the full connect lifecycle: options, delegate callbacks, foreground and
// background transitions, disconnect.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alclab/alvideo/pkg/config"
	"github.com/alclab/alvideo/pkg/dispatch"
	"github.com/alclab/alvideo/pkg/logger"
	"github.com/alclab/alvideo/pkg/token"
	"github.com/alclab/alvideo/pkg/utils"
	"github.com/alclab/alvideo/pkg/video"
	"go.uber.org/zap"
)

func accessToken() (string, error) {
	if tok := utils.GetEnv("ALVIDEO_TOKEN"); tok != "" {
		return tok, nil
	}
	// mint a local token when an API key pair is configured instead
	return token.New(utils.GetEnv("ALVIDEO_API_KEY"), utils.GetEnv("ALVIDEO_API_SECRET")).
		SetIdentity(utils.GetStringOrDefault("ALVIDEO_IDENTITY", "example-client")).
		SetGrant(&token.RoomGrant{Room: utils.GetEnv("ALVIDEO_ROOM"), Join: true}).
		SetTTL(time.Hour).
		JWT()
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("[Connect] Failed to load config: %v", err)
	}
	logger.Init(&config.GlobalConfig.Log, config.GlobalConfig.Mode)
	defer logger.Sync()

	tok, err := accessToken()
	if err != nil {
		log.Fatalf("[Connect] Failed to obtain access token: %v", err)
	}

	mic, err := video.NewLocalAudioTrack("microphone")
	if err != nil {
		log.Fatalf("[Connect] Failed to create audio track: %v", err)
	}

	queue := dispatch.NewQueue("delegate")
	defer queue.Close()

	opts, err := video.NewConnectOptionsWith(tok, func(b *video.ConnectOptionsBuilder) {
		b.RoomName = utils.GetEnv("ALVIDEO_ROOM")
		b.AudioTracks = []*video.LocalAudioTrack{mic}
		b.DelegateQueue = queue
	})
	if err != nil {
		log.Fatalf("[Connect] Invalid connect options: %v", err)
	}

	done := make(chan struct{})
	delegate := &video.RoomDelegateFuncs{
		ConnectedFunc: func(room *video.Room) {
			logger.Info("[Connect] Connected",
				zap.String("room", room.Name()),
				zap.String("sid", room.SID()),
				zap.String("identity", room.LocalParticipant().Identity()))
		},
		DisconnectedFunc: func(room *video.Room, err error) {
			if err != nil {
				logger.Warn("[Connect] Disconnected", zap.Error(err))
			} else {
				logger.Info("[Connect] Disconnected")
			}
			close(done)
		},
		ReconnectingFunc: func(room *video.Room) {
			logger.Info("[Connect] Reconnecting...")
		},
		ReconnectedFunc: func(room *video.Room) {
			logger.Info("[Connect] Reconnected", zap.String("room", room.Name()))
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	room, err := video.Connect(ctx, opts, delegate)
	cancel()
	if err != nil {
		log.Fatalf("[Connect] Failed to connect: %v", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	logger.Info("[Connect] Running, press Ctrl+C to leave the room")
	select {
	case <-interrupt:
		room.Disconnect()
		<-done
	case <-done:
	}
}
