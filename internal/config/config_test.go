package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.RateBurst != 5 || cfg.RateWindow != 10*time.Second {
		t.Fatalf("rate limit = %d per %s", cfg.RateBurst, cfg.RateWindow)
	}
	if cfg.NudgeCooldown != 10*time.Second {
		t.Fatalf("NudgeCooldown = %s", cfg.NudgeCooldown)
	}
	if cfg.RoomCap != 12 || cfg.RoomCapacity != 16 {
		t.Fatalf("room caps = %d/%d", cfg.RoomCap, cfg.RoomCapacity)
	}
	if cfg.MessageMax != 300 || cfg.NameMax != 16 || cfg.HistoryLimit != 200 {
		t.Fatalf("size caps = %d/%d/%d", cfg.MessageMax, cfg.NameMax, cfg.HistoryLimit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DS_ADDR", ":9999")
	t.Setenv("DS_MESSAGE_MAX", "500")
	t.Setenv("DS_RATE_WINDOW", "30s")
	t.Setenv("DS_CORS_ALLOW", "http://a.local, http://b.local")

	cfg := Load()
	if cfg.Addr != ":9999" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.MessageMax != 500 {
		t.Fatalf("MessageMax = %d", cfg.MessageMax)
	}
	if cfg.RateWindow != 30*time.Second {
		t.Fatalf("RateWindow = %s", cfg.RateWindow)
	}
	if len(cfg.CORSAllow) != 2 || cfg.CORSAllow[1] != "http://b.local" {
		t.Fatalf("CORSAllow = %v", cfg.CORSAllow)
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("DS_MESSAGE_MAX", "not-a-number")
	t.Setenv("DS_RATE_BURST", "-3")
	t.Setenv("DS_HEARTBEAT_INTERVAL", "soon")

	cfg := Load()
	if cfg.MessageMax != 300 || cfg.RateBurst != 5 || cfg.HeartbeatInterval != 30*time.Second {
		t.Fatalf("invalid env leaked into config: %+v", cfg)
	}
}
