package config

import (
	"flag"
	"fmt"
)

// parseCLIFlags parses command-line flags and returns a FlagSource, the
// positional station codes, and whether help was requested.
func parseCLIFlags() (*FlagSource, []string, bool) {
	flagSource := NewFlagSource()

	// Define CLI flags
	sendToLine := flag.Bool(FlagSendToLine, DefaultSendToLine, HelpSendToLine)
	intervalMinutes := flag.Int(FlagUpdateIntervalMinutes, 0, HelpUpdateIntervalMinutes)
	maxCycles := flag.Int(FlagMaxCycles, 0, HelpMaxCycles)
	graceSeconds := flag.Int(FlagShutdownGraceSeconds, 0, HelpShutdownGraceSeconds)
	windowMaxSamples := flag.Int(FlagWindowMaxSamples, 0, HelpWindowMaxSamples)
	stationURLTemplate := flag.String(FlagStationURLTemplate, "", HelpStationURLTemplate)
	initialBackoffSeconds := flag.Int(FlagInitialBackoffSeconds, 0, HelpInitialBackoffSeconds)
	maxBackoffSeconds := flag.Int(FlagMaxBackoffSeconds, 0, HelpMaxBackoffSeconds)
	handshakeTimeoutSeconds := flag.Int(FlagHandshakeTimeoutSeconds, 0, HelpHandshakeTimeoutSeconds)
	readTimeoutSeconds := flag.Int(FlagReadTimeoutSeconds, 0, HelpReadTimeoutSeconds)
	graphDir := flag.String(FlagGraphDir, "", HelpGraphDir)
	metricsAddr := flag.String(FlagMetricsAddr, "", HelpMetricsAddr)
	help := flag.Bool(FlagHelp, false, HelpShowHelp)

	flag.Parse()

	if *help {
		return flagSource, nil, true
	}

	// Only flags the user actually set participate in resolution, so a
	// default here never shadows an environment variable.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case FlagSendToLine:
			flagSource.Set(KeySendToLine, *sendToLine)
		case FlagUpdateIntervalMinutes:
			flagSource.Set(KeyUpdateIntervalMinutes, *intervalMinutes)
		case FlagMaxCycles:
			flagSource.Set(KeyMaxCycles, *maxCycles)
		case FlagShutdownGraceSeconds:
			flagSource.Set(KeyShutdownGraceSeconds, *graceSeconds)
		case FlagWindowMaxSamples:
			flagSource.Set(KeyWindowMaxSamples, *windowMaxSamples)
		case FlagStationURLTemplate:
			flagSource.Set(KeyStationURLTemplate, *stationURLTemplate)
		case FlagInitialBackoffSeconds:
			flagSource.Set(KeyNetworkInitialBackoffSeconds, *initialBackoffSeconds)
		case FlagMaxBackoffSeconds:
			flagSource.Set(KeyNetworkMaxBackoffSeconds, *maxBackoffSeconds)
		case FlagHandshakeTimeoutSeconds:
			flagSource.Set(KeyNetworkHandshakeTimeoutSeconds, *handshakeTimeoutSeconds)
		case FlagReadTimeoutSeconds:
			flagSource.Set(KeyNetworkReadTimeoutSeconds, *readTimeoutSeconds)
		case FlagGraphDir:
			flagSource.Set(KeyGraphDir, *graphDir)
		case FlagMetricsAddr:
			flagSource.Set(KeyMetricsAddr, *metricsAddr)
		}
	})

	return flagSource, flag.Args(), false
}

// printUsage prints the usage message
func printUsage() {
	fmt.Printf("%s - %s\n", AppName, AppDescription)
	fmt.Println()
	fmt.Printf("%s\n", HelpUsage)
	fmt.Printf("  %s\n", UsageFormat)
	fmt.Println()
	fmt.Printf("%s\n", HelpOptions)
	fmt.Printf("  --%s bool                 %s (default: %t)\n", FlagSendToLine, HelpSendToLine, DefaultSendToLine)
	fmt.Printf("  --%s int             %s (default: %d)\n", FlagUpdateIntervalMinutes, HelpUpdateIntervalMinutes, DefaultUpdateIntervalMinutes)
	fmt.Printf("  --%s int                   %s (default: %d)\n", FlagMaxCycles, HelpMaxCycles, DefaultMaxCycles)
	fmt.Printf("  --%s int      %s (default: %d)\n", FlagShutdownGraceSeconds, HelpShutdownGraceSeconds, DefaultShutdownGraceSeconds)
	fmt.Printf("  --%s int          %s (default: %d)\n", FlagWindowMaxSamples, HelpWindowMaxSamples, DefaultWindowMaxSamples)
	fmt.Printf("  --%s string       %s\n", FlagStationURLTemplate, HelpStationURLTemplate)
	fmt.Printf("  --%s int %s (default: %d)\n", FlagInitialBackoffSeconds, HelpInitialBackoffSeconds, DefaultNetworkInitialBackoffSeconds)
	fmt.Printf("  --%s int     %s (default: %d)\n", FlagMaxBackoffSeconds, HelpMaxBackoffSeconds, DefaultNetworkMaxBackoffSeconds)
	fmt.Printf("  --%s int %s (default: %d)\n", FlagHandshakeTimeoutSeconds, HelpHandshakeTimeoutSeconds, DefaultNetworkHandshakeTimeoutSeconds)
	fmt.Printf("  --%s int      %s (default: %d)\n", FlagReadTimeoutSeconds, HelpReadTimeoutSeconds, DefaultNetworkReadTimeoutSeconds)
	fmt.Printf("  --%s string                 %s (default: %s)\n", FlagGraphDir, HelpGraphDir, DefaultGraphDir)
	fmt.Printf("  --%s string              %s\n", FlagMetricsAddr, HelpMetricsAddr)
	fmt.Printf("  --%s                          %s\n", FlagHelp, HelpShowHelp)
	fmt.Println()
	fmt.Printf("%s\n", HelpEnvironmentVars)
	fmt.Printf("  %-36s %s\n", KeySendToLine, HelpSendToLine)
	fmt.Printf("  %-36s %s\n", KeyLineURL, "LINE Messaging API push endpoint")
	fmt.Printf("  %-36s %s\n", KeyGroupID, "LINE group or user ID to deliver to")
	fmt.Printf("  %-36s %s\n", KeyLineAPIKey, "LINE channel access token")
	fmt.Printf("  %-36s %s\n", KeyCloudinaryCloudName, "Cloudinary cloud name")
	fmt.Printf("  %-36s %s\n", KeyCloudinaryAPIKey, "Cloudinary API key")
	fmt.Printf("  %-36s %s\n", KeyCloudinaryAPISecret, "Cloudinary API secret")
	fmt.Printf("  %-36s %s\n", KeyUpdateIntervalMinutes, HelpUpdateIntervalMinutes)
	fmt.Printf("  %-36s %s\n", KeyMaxCycles, HelpMaxCycles)
	fmt.Printf("  %-36s %s\n", KeyShutdownGraceSeconds, HelpShutdownGraceSeconds)
	fmt.Printf("  %-36s %s\n", KeyWindowMaxSamples, HelpWindowMaxSamples)
	fmt.Printf("  %-36s %s\n", KeyStationURLTemplate, HelpStationURLTemplate)
	fmt.Printf("  %-36s %s\n", KeyNetworkInitialBackoffSeconds, HelpInitialBackoffSeconds)
	fmt.Printf("  %-36s %s\n", KeyNetworkMaxBackoffSeconds, HelpMaxBackoffSeconds)
	fmt.Printf("  %-36s %s\n", KeyNetworkHandshakeTimeoutSeconds, HelpHandshakeTimeoutSeconds)
	fmt.Printf("  %-36s %s\n", KeyNetworkReadTimeoutSeconds, HelpReadTimeoutSeconds)
	fmt.Printf("  %-36s %s\n", KeyGraphDir, HelpGraphDir)
	fmt.Printf("  %-36s %s\n", KeyMetricsAddr, HelpMetricsAddr)
	fmt.Println()
	fmt.Printf("%s\n", HelpNote)
}
