package config

import (
	"flag"
	"os"
	"testing"
)

func TestParseCLIFlags(t *testing.T) {
	// Save original command line args
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	t.Run("stations only", func(t *testing.T) {
		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

		os.Args = []string{"test", "703", "704"}
		flagSource, stations, showHelp := parseCLIFlags()

		if showHelp {
			t.Error("expected showHelp to be false")
		}
		if len(stations) != 2 || stations[0] != "703" || stations[1] != "704" {
			t.Errorf("stations=%v", stations)
		}
		if _, found := flagSource.GetInt(KeyUpdateIntervalMinutes); found {
			t.Error("unset flag must not appear in flag source")
		}
	})

	t.Run("with values", func(t *testing.T) {
		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

		os.Args = []string{"test", "--interval-minutes=15", "--send-to-line=false", "--graph-dir=out", "703"}
		flagSource, stations, showHelp := parseCLIFlags()

		if showHelp {
			t.Error("expected showHelp to be false")
		}
		if v, found := flagSource.GetInt(KeyUpdateIntervalMinutes); !found || v != 15 {
			t.Errorf("interval: got %d (found=%v)", v, found)
		}
		if v, found := flagSource.GetBool(KeySendToLine); !found || v != false {
			t.Errorf("send-to-line: got %v (found=%v)", v, found)
		}
		if v, found := flagSource.GetString(KeyGraphDir); !found || v != "out" {
			t.Errorf("graph-dir: got %q (found=%v)", v, found)
		}
		if len(stations) != 1 || stations[0] != "703" {
			t.Errorf("stations=%v", stations)
		}
	})

	t.Run("help", func(t *testing.T) {
		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

		os.Args = []string{"test", "--help"}
		_, _, showHelp := parseCLIFlags()
		if !showHelp {
			t.Error("expected showHelp to be true")
		}
	})
}

func TestPrintUsage(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("printUsage panicked: %v", r)
		}
	}()
	printUsage()
}
