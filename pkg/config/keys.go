package config

// Configuration key constants
// These constants centralize all environment variable and configuration key
// names to eliminate magic strings.

const (
	// Delivery configuration keys
	KeySendToLine          = "SEND_TO_LINE"
	KeyLineURL             = "LINE_URL"
	KeyGroupID             = "GROUP_ID"
	KeyLineAPIKey          = "LINE_API_KEY"
	KeyCloudinaryCloudName = "CLOUDINARY_CLOUD_NAME"
	KeyCloudinaryAPIKey    = "CLOUDINARY_API_KEY"
	KeyCloudinaryAPISecret = "CLOUDINARY_API_SECRET"

	// Cycle configuration keys
	KeyUpdateIntervalMinutes = "UPDATE_INTERVAL_MINUTES"
	KeyMaxCycles             = "MAX_CYCLES"
	KeyShutdownGraceSeconds  = "SHUTDOWN_GRACE_SECONDS"

	// Window configuration keys
	KeyWindowMaxSamples = "WINDOW_MAX_SAMPLES"

	// Network configuration keys
	KeyStationURLTemplate             = "STATION_URL_TEMPLATE"
	KeyNetworkInitialBackoffSeconds   = "NETWORK_INITIAL_BACKOFF_SECONDS"
	KeyNetworkMaxBackoffSeconds       = "NETWORK_MAX_BACKOFF_SECONDS"
	KeyNetworkHandshakeTimeoutSeconds = "NETWORK_HANDSHAKE_TIMEOUT_SECONDS"
	KeyNetworkReadTimeoutSeconds      = "NETWORK_READ_TIMEOUT_SECONDS"

	// Output configuration keys
	KeyGraphDir    = "GRAPH_DIR"
	KeyMetricsAddr = "METRICS_ADDR"
)

// Default values for configuration
const (
	DefaultStationURLTemplate = "wss://telerid.rid.go.th/ws/station/%s/"

	// Cycle defaults
	DefaultUpdateIntervalMinutes = 2
	DefaultMaxCycles             = 0 // run until shutdown
	DefaultShutdownGraceSeconds  = 10

	// Window defaults
	DefaultWindowMaxSamples = 288

	// Network defaults
	DefaultNetworkInitialBackoffSeconds   = 1
	DefaultNetworkMaxBackoffSeconds       = 60
	DefaultNetworkHandshakeTimeoutSeconds = 10
	DefaultNetworkReadTimeoutSeconds      = 90

	// Output defaults
	DefaultGraphDir = "graphs"

	DefaultSendToLine = true
)

// CLI flag name constants
const (
	FlagSendToLine              = "send-to-line"
	FlagUpdateIntervalMinutes   = "interval-minutes"
	FlagMaxCycles               = "max-cycles"
	FlagShutdownGraceSeconds    = "shutdown-grace-seconds"
	FlagWindowMaxSamples        = "window-max-samples"
	FlagStationURLTemplate      = "station-url-template"
	FlagInitialBackoffSeconds   = "network-initial-backoff-seconds"
	FlagMaxBackoffSeconds       = "network-max-backoff-seconds"
	FlagHandshakeTimeoutSeconds = "network-handshake-timeout-seconds"
	FlagReadTimeoutSeconds      = "network-read-timeout-seconds"
	FlagGraphDir                = "graph-dir"
	FlagMetricsAddr             = "metrics-addr"
	FlagHelp                    = "help"
)

// Help message constants
const (
	AppName        = "riverwatch"
	AppDescription = "Monitor water station feeds, chart them, and push updates to LINE"
	UsageFormat    = "riverwatch [OPTIONS] STATION..."

	HelpSendToLine              = "Enable LINE notification delivery"
	HelpUpdateIntervalMinutes   = "Minutes between render/deliver cycles"
	HelpMaxCycles               = "Stop each station after N cycles (0 = run forever)"
	HelpShutdownGraceSeconds    = "Seconds to wait for in-flight cycles on shutdown"
	HelpWindowMaxSamples        = "Max samples retained per station window"
	HelpStationURLTemplate      = "Websocket URL template, %s is the station code"
	HelpInitialBackoffSeconds   = "Initial reconnect backoff in seconds"
	HelpMaxBackoffSeconds       = "Max reconnect backoff in seconds"
	HelpHandshakeTimeoutSeconds = "Websocket handshake timeout in seconds"
	HelpReadTimeoutSeconds      = "Seconds without a frame before the read is abandoned"
	HelpGraphDir                = "Directory for rendered chart images"
	HelpMetricsAddr             = "Prometheus /metrics listen address (empty disables)"
	HelpShowHelp                = "Show this help message"

	HelpOptions         = "Options:"
	HelpEnvironmentVars = "Environment Variables:"
	HelpUsage           = "Usage:"
	HelpNote            = "Note: CLI options override environment variables; positional arguments are station codes"
)
