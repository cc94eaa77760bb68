package config

import (
	"fmt"
	"strings"
)

func (c *Config) validate() error {
	if len(c.Stations) == 0 {
		return fmt.Errorf("at least one station code is required")
	}
	for _, code := range c.Stations {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("station code must not be blank")
		}
	}
	if !strings.Contains(c.StationURLTemplate, "%s") {
		return fmt.Errorf("%s must contain a %%s placeholder for the station code", KeyStationURLTemplate)
	}
	if c.Cycle.IntervalMinutes < 1 {
		return fmt.Errorf("%s must be at least 1", KeyUpdateIntervalMinutes)
	}
	if c.Cycle.MaxCycles < 0 {
		return fmt.Errorf("%s must not be negative", KeyMaxCycles)
	}
	if c.Window.MaxSamples < 1 {
		return fmt.Errorf("%s must be at least 1", KeyWindowMaxSamples)
	}
	if c.Network.InitialBackoffSeconds < 1 || c.Network.MaxBackoffSeconds < c.Network.InitialBackoffSeconds {
		return fmt.Errorf("backoff bounds invalid: initial=%d max=%d", c.Network.InitialBackoffSeconds, c.Network.MaxBackoffSeconds)
	}

	// Delivery credentials are only required when delivery is enabled;
	// running dark for observability/testing needs none of them.
	if c.Line.Enabled {
		if c.Line.URL == "" {
			return fmt.Errorf("%s is required when %s is enabled", KeyLineURL, KeySendToLine)
		}
		if c.Line.GroupID == "" {
			return fmt.Errorf("%s is required when %s is enabled", KeyGroupID, KeySendToLine)
		}
		if c.Line.APIKey == "" {
			return fmt.Errorf("%s is required when %s is enabled", KeyLineAPIKey, KeySendToLine)
		}
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required when %s is enabled", KeySendToLine)
		}
	}
	return nil
}
