package config

import (
	"strings"
	"testing"
	"time"
)

// deliveryEnv sets every credential a delivery-enabled config needs, so
// individual tests can knock out one piece at a time.
func deliveryEnv(t *testing.T) {
	t.Helper()
	t.Setenv(KeyLineURL, "https://api.line.me/v2/bot/message/push")
	t.Setenv(KeyGroupID, "C1234")
	t.Setenv(KeyLineAPIKey, "token")
	t.Setenv(KeyCloudinaryCloudName, "demo")
	t.Setenv(KeyCloudinaryAPIKey, "key")
	t.Setenv(KeyCloudinaryAPISecret, "secret")
}

func TestBuild_DefaultsApplied(t *testing.T) {
	deliveryEnv(t)
	cfg, err := build(NewFlagSource(), []string{"703"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Cycle.IntervalMinutes != DefaultUpdateIntervalMinutes {
		t.Errorf("interval=%d", cfg.Cycle.IntervalMinutes)
	}
	if cfg.Window.MaxSamples != DefaultWindowMaxSamples {
		t.Errorf("maxSamples=%d", cfg.Window.MaxSamples)
	}
	if cfg.GraphDir != DefaultGraphDir {
		t.Errorf("graphDir=%q", cfg.GraphDir)
	}
	if !cfg.Line.Enabled {
		t.Error("delivery should default to enabled")
	}
	if got := cfg.StationURL("703"); got != "wss://telerid.rid.go.th/ws/station/703/" {
		t.Errorf("stationURL=%q", got)
	}
	if cfg.Cycle.Interval() != 2*time.Minute {
		t.Errorf("interval duration=%v", cfg.Cycle.Interval())
	}
	if cfg.Network.MaxBackoff() != 60*time.Second {
		t.Errorf("max backoff=%v", cfg.Network.MaxBackoff())
	}
}

func TestBuild_EnvOverrides(t *testing.T) {
	deliveryEnv(t)
	t.Setenv(KeyUpdateIntervalMinutes, "10")
	t.Setenv(KeyWindowMaxSamples, "50")
	t.Setenv(KeyStationURLTemplate, "ws://localhost:9000/station/%s")

	cfg, err := build(NewFlagSource(), []string{"703", "704"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Cycle.IntervalMinutes != 10 || cfg.Window.MaxSamples != 50 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if got := cfg.StationURL("704"); got != "ws://localhost:9000/station/704" {
		t.Errorf("stationURL=%q", got)
	}
	if len(cfg.Stations) != 2 {
		t.Errorf("stations=%v", cfg.Stations)
	}
}

func TestBuild_DisabledDeliveryNeedsNoCredentials(t *testing.T) {
	flags := NewFlagSource()
	flags.Set(KeySendToLine, false)
	cfg, err := build(flags, []string{"703"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Line.Enabled {
		t.Error("delivery should be disabled")
	}
}

func TestBuild_ValidationFailures(t *testing.T) {
	cases := []struct {
		name     string
		stations []string
		setup    func(t *testing.T, flags *FlagSource)
		wantSub  string
	}{
		{
			name:     "no stations",
			stations: nil,
			setup:    func(t *testing.T, flags *FlagSource) { flags.Set(KeySendToLine, false) },
			wantSub:  "station",
		},
		{
			name:     "blank station",
			stations: []string{"  "},
			setup:    func(t *testing.T, flags *FlagSource) { flags.Set(KeySendToLine, false) },
			wantSub:  "blank",
		},
		{
			name:     "missing line credentials",
			stations: []string{"703"},
			setup:    func(t *testing.T, flags *FlagSource) {},
			wantSub:  KeyLineURL,
		},
		{
			name:     "missing cloudinary credentials",
			stations: []string{"703"},
			setup: func(t *testing.T, flags *FlagSource) {
				t.Setenv(KeyLineURL, "https://line")
				t.Setenv(KeyGroupID, "g")
				t.Setenv(KeyLineAPIKey, "k")
			},
			wantSub: "CLOUDINARY",
		},
		{
			name:     "bad interval",
			stations: []string{"703"},
			setup: func(t *testing.T, flags *FlagSource) {
				flags.Set(KeySendToLine, false)
				flags.Set(KeyUpdateIntervalMinutes, 0)
			},
			wantSub: KeyUpdateIntervalMinutes,
		},
		{
			name:     "template without placeholder",
			stations: []string{"703"},
			setup: func(t *testing.T, flags *FlagSource) {
				flags.Set(KeySendToLine, false)
				flags.Set(KeyStationURLTemplate, "wss://fixed/url")
			},
			wantSub: KeyStationURLTemplate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flags := NewFlagSource()
			tc.setup(t, flags)
			_, err := build(flags, tc.stations)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}
