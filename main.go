package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"loader/config"
	"loader/handler"
	"loader/logging"
	"loader/metrics"
	"loader/scheduler"
	"loader/transport"
	"loader/visibility"
)

const version = "1.0.0"

func main() {
	config.ParseArgs()
	if config.CliArgs.Version {
		fmt.Println(version)
		return
	}

	level := logrus.InfoLevel
	if config.CliArgs.Debug {
		level = logrus.DebugLevel
	}
	logging.InitLogger(level)
	log := logging.GetLogger()

	cfg, err := config.LoadConfig(config.CliArgs.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	collector := metrics.NewCollector()
	fetcher := transport.NewHTTPFetcher(time.Duration(cfg.FetchTimeoutSeconds) * time.Second)

	// The application wires exactly one scheduler instance.
	sched := scheduler.New(scheduler.Config{
		MaxConcurrentPerOrigin:  cfg.Scheduler.MaxConcurrentPerOrigin,
		MediumPriorityThreshold: cfg.Scheduler.MediumPriorityThreshold,
	}, fetcher, collector)

	stop := make(chan struct{})
	defer close(stop)
	go sched.MonitorLoad(time.Second, stop)

	// Viewport observers feed this; it promotes bands as listings scroll in.
	reclassifier := visibility.NewReclassifier(sched, 256)
	defer reclassifier.Close()

	// Config file edits apply to subsequent admission decisions.
	config.Watch(func(updated config.Config) {
		sched.UpdateConfig(scheduler.ConfigUpdate{
			MaxConcurrentPerOrigin:  &updated.Scheduler.MaxConcurrentPerOrigin,
			MediumPriorityThreshold: &updated.Scheduler.MediumPriorityThreshold,
		})
	})

	srv := handler.New(sched, collector)
	log.Infof("Starting diagnostics server on %s", cfg.ListenAddress)
	if err := srv.Start(cfg.ListenAddress); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
