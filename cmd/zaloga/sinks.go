package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/erazemk/zaloga/internal/config"
	"github.com/erazemk/zaloga/internal/events"
)

// buildSink assembles the configured event sinks. The returned closer releases
// broker connections.
func buildSink(ctx context.Context, cfg config.Config, logger *slog.Logger) (events.Sink, func() error, error) {
	var (
		sinks   events.Multi
		closers []io.Closer
	)
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		return errors.Join(errs...)
	}

	for _, name := range cfg.Events.Sinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, events.NewLogSink(logger))

		case config.SinkRedis:
			client, err := events.ConnectRedis(cfg.Redis.URL)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = client.Ping(pingCtx).Err()
			cancel()
			if err != nil {
				client.Close()
				closeAll()
				return nil, nil, fmt.Errorf("connecting to redis: %w", err)
			}
			sink := events.NewRedisSink(client, cfg.Redis.Prefix)
			sinks = append(sinks, sink)
			closers = append(closers, sink)

		case config.SinkKafka:
			topics, err := cfg.KafkaTopics()
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			sink, err := events.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic, topics)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			sinks = append(sinks, sink)
			closers = append(closers, sink)
		}
	}

	switch len(sinks) {
	case 0:
		return events.Discard{}, closeAll, nil
	case 1:
		return sinks[0], closeAll, nil
	}
	return sinks, closeAll, nil
}
