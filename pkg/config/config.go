package config

import (
	"fmt"
	"time"
)

type Config struct {
	Stations           []string
	StationURLTemplate string
	Line               LineConfig
	Cloudinary         CloudinaryConfig
	Cycle              CycleConfig
	Window             WindowConfig
	Network            NetworkConfig
	GraphDir           string
	MetricsAddr        string
}

type LineConfig struct {
	Enabled bool
	URL     string
	GroupID string
	APIKey  string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type CycleConfig struct {
	IntervalMinutes int
	MaxCycles       int
	GraceSeconds    int
}

type WindowConfig struct {
	MaxSamples int
}

type NetworkConfig struct {
	InitialBackoffSeconds   int
	MaxBackoffSeconds       int
	HandshakeTimeoutSeconds int
	ReadTimeoutSeconds      int
}

// Load loads configuration from CLI flags and environment variables.
// CLI flags take precedence over environment variables; positional
// arguments are the station codes to monitor.
func Load() (*Config, error) {
	flagSource, stations, showHelp := parseCLIFlags()

	if showHelp {
		printUsage()
		return nil, nil // Return nil to indicate help was shown
	}

	return build(flagSource, stations)
}

// build assembles and validates a Config from a flag source plus the
// environment. Split out of Load so tests can drive it without touching
// the global flag state.
func build(flagSource *FlagSource, stations []string) (*Config, error) {
	resolver := NewConfigResolver(flagSource, &EnvSource{})

	cfg := &Config{
		Stations:           stations,
		StationURLTemplate: resolver.ResolveString(KeyStationURLTemplate, DefaultStationURLTemplate),
		Line: LineConfig{
			Enabled: resolver.ResolveBool(KeySendToLine, DefaultSendToLine),
			URL:     resolver.ResolveString(KeyLineURL, ""),
			GroupID: resolver.ResolveString(KeyGroupID, ""),
			APIKey:  resolver.ResolveString(KeyLineAPIKey, ""),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: resolver.ResolveString(KeyCloudinaryCloudName, ""),
			APIKey:    resolver.ResolveString(KeyCloudinaryAPIKey, ""),
			APISecret: resolver.ResolveString(KeyCloudinaryAPISecret, ""),
		},
		Cycle: CycleConfig{
			IntervalMinutes: resolver.ResolveInt(KeyUpdateIntervalMinutes, DefaultUpdateIntervalMinutes),
			MaxCycles:       resolver.ResolveInt(KeyMaxCycles, DefaultMaxCycles),
			GraceSeconds:    resolver.ResolveInt(KeyShutdownGraceSeconds, DefaultShutdownGraceSeconds),
		},
		Window: WindowConfig{
			MaxSamples: resolver.ResolveInt(KeyWindowMaxSamples, DefaultWindowMaxSamples),
		},
		Network: NetworkConfig{
			InitialBackoffSeconds:   resolver.ResolveInt(KeyNetworkInitialBackoffSeconds, DefaultNetworkInitialBackoffSeconds),
			MaxBackoffSeconds:       resolver.ResolveInt(KeyNetworkMaxBackoffSeconds, DefaultNetworkMaxBackoffSeconds),
			HandshakeTimeoutSeconds: resolver.ResolveInt(KeyNetworkHandshakeTimeoutSeconds, DefaultNetworkHandshakeTimeoutSeconds),
			ReadTimeoutSeconds:      resolver.ResolveInt(KeyNetworkReadTimeoutSeconds, DefaultNetworkReadTimeoutSeconds),
		},
		GraphDir:    resolver.ResolveString(KeyGraphDir, DefaultGraphDir),
		MetricsAddr: resolver.ResolveString(KeyMetricsAddr, ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// StationURL derives the websocket address for a station code.
func (c *Config) StationURL(code string) string {
	return fmt.Sprintf(c.StationURLTemplate, code)
}

func (c *CycleConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

func (c *CycleConfig) Grace() time.Duration {
	return time.Duration(c.GraceSeconds) * time.Second
}

func (n *NetworkConfig) InitialBackoff() time.Duration {
	return time.Duration(n.InitialBackoffSeconds) * time.Second
}

func (n *NetworkConfig) MaxBackoff() time.Duration {
	return time.Duration(n.MaxBackoffSeconds) * time.Second
}

func (n *NetworkConfig) HandshakeTimeout() time.Duration {
	return time.Duration(n.HandshakeTimeoutSeconds) * time.Second
}

func (n *NetworkConfig) ReadTimeout() time.Duration {
	return time.Duration(n.ReadTimeoutSeconds) * time.Second
}
