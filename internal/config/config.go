// Package config loads runtime settings from the environment, falling back
// to the built-in defaults the relay was designed around.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable of the relay server. The rate-limit, cooldown,
// and size settings shape the behavior of the session core; the rest is
// deployment surface.
type Config struct {
	Env       string
	Addr      string
	DataFile  string
	CORSAllow []string

	HeartbeatInterval time.Duration

	RoomCapacity int
	RoomCap      int
	HistoryLimit int

	NameMax     int
	RoomIDMax   int
	RoomNameMax int
	MessageMax  int
	AvatarMax   int
	KeyMax      int

	RateWindow    time.Duration
	RateBurst     int
	NudgeCooldown time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Env:       "dev",
		Addr:      ":8080",
		DataFile:  "data/db.json",
		CORSAllow: []string{"*"},

		HeartbeatInterval: 30 * time.Second,

		RoomCapacity: 16,
		RoomCap:      12,
		HistoryLimit: 200,

		NameMax:     16,
		RoomIDMax:   32,
		RoomNameMax: 24,
		MessageMax:  300,
		AvatarMax:   120000,
		KeyMax:      64,

		RateWindow:    10 * time.Second,
		RateBurst:     5,
		NudgeCooldown: 10 * time.Second,
	}
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first, best-effort.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.Addr = getEnv("DS_ADDR", cfg.Addr)
	cfg.DataFile = getEnv("DS_DATA_FILE", cfg.DataFile)
	if allow := getEnv("DS_CORS_ALLOW", ""); allow != "" {
		cfg.CORSAllow = splitCSV(allow)
	}
	cfg.HeartbeatInterval = getEnvDuration("DS_HEARTBEAT_INTERVAL", cfg.HeartbeatInterval)
	cfg.RoomCapacity = getEnvInt("DS_ROOM_CAPACITY", cfg.RoomCapacity)
	cfg.RoomCap = getEnvInt("DS_ROOM_CAP", cfg.RoomCap)
	cfg.HistoryLimit = getEnvInt("DS_HISTORY_LIMIT", cfg.HistoryLimit)
	cfg.MessageMax = getEnvInt("DS_MESSAGE_MAX", cfg.MessageMax)
	cfg.RateWindow = getEnvDuration("DS_RATE_WINDOW", cfg.RateWindow)
	cfg.RateBurst = getEnvInt("DS_RATE_BURST", cfg.RateBurst)
	cfg.NudgeCooldown = getEnvDuration("DS_NUDGE_COOLDOWN", cfg.NudgeCooldown)
	return cfg
}

// getEnv returns the env var or a default.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt parses a positive int env var with a fallback.
func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// getEnvDuration parses a duration env var ("5s", "1m") with a fallback.
func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// splitCSV trims and filters a comma-separated list.
func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
