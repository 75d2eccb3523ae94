package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/treelights/internal/channel"
	"github.com/zjrosen/treelights/internal/config"
	"github.com/zjrosen/treelights/internal/journal"
	"github.com/zjrosen/treelights/internal/log"
	"github.com/zjrosen/treelights/internal/mqttsink"
	"github.com/zjrosen/treelights/internal/pubsub"
	"github.com/zjrosen/treelights/internal/toggler"
	"github.com/zjrosen/treelights/internal/tracing"
	"github.com/zjrosen/treelights/internal/watcher"
)

// tracingConfig maps the tracing section of the config file.
func tracingConfig(c config.TracingConfig) tracing.Config {
	tc := tracing.DefaultConfig()
	tc.Enabled = c.Enabled
	if c.Exporter != "" {
		tc.Exporter = c.Exporter
	}
	tc.FilePath = c.FilePath
	if c.OTLPEndpoint != "" {
		tc.OTLPEndpoint = c.OTLPEndpoint
	}
	if c.SampleRate > 0 {
		tc.SampleRate = c.SampleRate
	}
	return tc
}

func setupTracing(c config.Config) (*tracing.Provider, error) {
	p, err := tracing.NewProvider(tracingConfig(c.Tracing))
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	return p, nil
}

func shutdownTracing(p *tracing.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatTrace, "Shutting down tracing", err)
	}
}

// startJournal records every event of this run when the journal is enabled.
// The returned stop waits for pending writes and closes the database.
func startJournal(ctx context.Context, c config.Config, events *pubsub.Broker[channel.Event], start toggler.Mode) (func(), error) {
	if !c.Journal.Enabled {
		return func() {}, nil
	}
	db, err := journal.NewDB(c.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	session, err := db.StartSession(ctx, start.String(), c.Cycle, time.Now())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("starting journal session: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := events.Subscribe(ctx)
	rec := journal.NewRecorder(session)
	done := make(chan struct{})
	go func() {
		defer close(done)
		rec.Run(ctx, sub)
	}()
	log.Info(log.CatJournal, "Journal session started", "session", session.ID(), "path", db.Path())

	return func() {
		cancel()
		<-done
		written, failed := rec.Counts()
		log.Info(log.CatJournal, "Journal session ended", "session", session.ID(), "written", written, "failed", failed)
		if err := db.Close(); err != nil {
			log.ErrorErr(log.CatJournal, "Closing journal", err)
		}
	}, nil
}

// startMQTT mirrors the light state to MQTT when enabled. A broker that
// cannot be reached is logged and skipped; the lights work without it.
func startMQTT(ctx context.Context, c config.Config, events *pubsub.Broker[channel.Event]) func() {
	if !c.MQTT.Enabled {
		return func() {}
	}
	client := mqttsink.NewClient(mqttsink.Options{
		Broker:   c.MQTT.Broker,
		ClientID: c.MQTT.ClientID,
		Username: c.MQTT.Username,
		Password: c.MQTT.Password,
		Timeout:  mqttsink.DefaultTimeout,
	})
	sink := mqttsink.New(client, c.MQTT.TopicPrefix)
	if err := sink.Connect(); err != nil {
		log.ErrorErr(log.CatMQTT, "MQTT disabled for this run", err, "broker", c.MQTT.Broker)
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := events.Subscribe(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		sink.Run(ctx, sub)
	}()
	return func() {
		cancel()
		<-done
	}
}

// startWatcher publishes config file changes when watching is enabled.
// It returns a nil broker otherwise.
func startWatcher(c config.Config, path string) (*pubsub.Broker[string], func()) {
	if !c.WatchConfig || path == "" {
		return nil, func() {}
	}
	reloads := pubsub.NewBroker[string]()
	wcfg := watcher.DefaultConfig(path)
	wcfg.Publisher = reloads
	w, err := watcher.New(wcfg)
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Config watching disabled", err)
		reloads.Close()
		return nil, func() {}
	}
	if _, err := w.Start(); err != nil {
		log.ErrorErr(log.CatWatcher, "Config watching disabled", err)
		_ = w.Stop()
		reloads.Close()
		return nil, func() {}
	}
	return reloads, func() {
		_ = w.Stop()
		reloads.Close()
	}
}
