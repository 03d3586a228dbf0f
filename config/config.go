package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"loader/logging"
)

// The global, read-only config variable.
var (
	cfg  *Config
	v    *viper.Viper
	once sync.Once
)

// LoadConfig reads the config file, parses it, and initializes the global cfg
// variable. It ensures that the configuration is set only once. An empty
// configFile runs on defaults alone.
func LoadConfig(configFile string) (*Config, error) {
	var err error
	once.Do(func() {
		var configuration *Config
		v, configuration, err = load(configFile)
		if err != nil {
			return
		}
		cfg = configuration
	})

	if err != nil {
		return nil, err
	}

	if cfg == nil {
		return nil, errors.New("configuration was not set")
	}

	return cfg, nil
}

func load(configFile string) (*viper.Viper, *Config, error) {
	vp := viper.New()

	vp.SetDefault("listen_address", "127.0.0.1:8080")
	vp.SetDefault("fetch_timeout_seconds", 30)
	vp.SetDefault("scheduler.max_concurrent_per_origin", 6)
	vp.SetDefault("scheduler.medium_priority_threshold", 500)

	if configFile != "" {
		vp.SetConfigFile(configFile)
		vp.SetConfigType("yaml")

		if err := vp.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var configuration Config
	if err := vp.Unmarshal(&configuration); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validation
	if configuration.Scheduler.MaxConcurrentPerOrigin <= 0 {
		return nil, nil, errors.New("scheduler.max_concurrent_per_origin must be positive")
	}
	if configuration.Scheduler.MediumPriorityThreshold <= 0 {
		return nil, nil, errors.New("scheduler.medium_priority_threshold must be positive")
	}
	if configuration.FetchTimeoutSeconds <= 0 {
		return nil, nil, errors.New("fetch_timeout_seconds must be positive")
	}

	return vp, &configuration, nil
}

// GetConfig returns the loaded configuration.
// It panics if the configuration has not been set.
func GetConfig() *Config {
	if cfg == nil {
		panic("Config has not been set! Call LoadConfig first.")
	}
	return cfg
}

// Watch re-reads the config file whenever it changes on disk and hands the
// parsed result to onChange. Invalid edits are logged and skipped.
func Watch(onChange func(Config)) {
	if v == nil || v.ConfigFileUsed() == "" {
		return
	}
	log := logging.GetLogger()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Config
		if err := v.Unmarshal(&updated); err != nil {
			log.Warnf("Ignoring config change from %s: %v", e.Name, err)
			return
		}
		if updated.Scheduler.MaxConcurrentPerOrigin <= 0 || updated.Scheduler.MediumPriorityThreshold <= 0 {
			log.Warnf("Ignoring config change from %s: scheduler values must be positive", e.Name)
			return
		}
		log.Infof("Config reloaded from %s", e.Name)
		onChange(updated)
	})
	v.WatchConfig()
}
