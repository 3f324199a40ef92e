package config

import (
	"log"
	"strings"
	"time"

	"github.com/alclab/alvideo/pkg/constants"
	"github.com/alclab/alvideo/pkg/logger"
	"github.com/alclab/alvideo/pkg/utils"
)

var GlobalConfig *Config

// Config holds SDK-wide defaults. Per-connection settings always come from
// ConnectOptions; these values only fill the gaps.
type Config struct {
	SignalingURL     string           // websocket signaling endpoint
	Log              logger.LogConfig // log configuration
	Mode             string           `env:"MODE"`
	StunServers      []string         // default STUN servers
	ICEGatherTimeout time.Duration    // ICE gathering timeout
	ForegroundGrace  time.Duration    // background survival window
}

// Load reads the environment (optionally via a .env file) into GlobalConfig.
// Every field has a default so loading never fails on a missing file.
func Load() error {
	mode := utils.GetStringOrDefault("MODE", "development")
	if err := utils.LoadEnv(mode); err != nil {
		log.Printf("Note: .env file not found or failed to load: %v (using default values)", err)
	}
	GlobalConfig = &Config{
		SignalingURL: utils.GetStringOrDefault("SIGNALING_URL", "wss://rooms.alclab.net/signal"),
		Log: logger.LogConfig{
			Level:      utils.GetStringOrDefault("LOG_LEVEL", "info"),
			Filename:   utils.GetStringOrDefault("LOG_FILENAME", "./logs/alvideo.log"),
			MaxSize:    utils.GetIntOrDefault("LOG_MAX_SIZE", 100),
			MaxAge:     utils.GetIntOrDefault("LOG_MAX_AGE", 30),
			MaxBackups: utils.GetIntOrDefault("LOG_MAX_BACKUPS", 5),
			Daily:      utils.GetBoolOrDefault("LOG_DAILY", true),
		},
		Mode:             mode,
		StunServers:      splitServers(utils.GetStringOrDefault("STUN_SERVERS", "")),
		ICEGatherTimeout: utils.GetDurationOrDefault("ICE_GATHER_TIMEOUT", constants.DefaultICETimeout),
		ForegroundGrace:  utils.GetDurationOrDefault("FOREGROUND_GRACE", constants.DefaultForegroundGrace),
	}
	return nil
}

// Default returns GlobalConfig, loading it on first use.
func Default() *Config {
	if GlobalConfig == nil {
		_ = Load()
	}
	return GlobalConfig
}

func splitServers(raw string) []string {
	if raw == "" {
		return append([]string(nil), constants.DefaultStunServers...)
	}
	var servers []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}
