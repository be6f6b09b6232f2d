package config

// Application constants
const (
	AppName    = "kintaicli"
	AppVersion = "1.0.0"

	// Defaults shared by Default and the binaries' flag values
	DefaultDataDir          = "data"
	DefaultReportsDir       = "data/reports"
	DefaultLogsDir          = "logs"
	DefaultLogFile          = "logs/app.log"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultTimezone         = "Asia/Tokyo"
	DefaultMaxUploadBytes   = 10 << 20
	DefaultBatchConcurrency = 4
	DefaultRateLimit        = 5
	DefaultBurstSize        = 10

	// MetricsEndpoint serves the Prometheus scrape
	MetricsEndpoint = "/metrics"
)
