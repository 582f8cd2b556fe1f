package types

type RunMode string

const (
	// ModeLocal runs the API server and the temporal worker in one process
	ModeLocal RunMode = "local"
	// ModeAPI runs just the operator / cron API server
	ModeAPI RunMode = "api"
	// ModeTemporalWorker runs just the temporal worker executing the batch jobs
	ModeTemporalWorker RunMode = "temporal_worker"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
