package config

// SchedulerConfig holds the tunables of the resource-loading scheduler.
type SchedulerConfig struct {
	MaxConcurrentPerOrigin  int     `mapstructure:"max_concurrent_per_origin"`
	MediumPriorityThreshold float64 `mapstructure:"medium_priority_threshold"`
}

// Config holds the application configuration.
type Config struct {
	ListenAddress       string          `mapstructure:"listen_address"`
	FetchTimeoutSeconds int             `mapstructure:"fetch_timeout_seconds"`
	Scheduler           SchedulerConfig `mapstructure:"scheduler"`
}
