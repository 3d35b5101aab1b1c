// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package eventprocessor

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/models"
)

// Bus publishes change events and hands out consumers for them.
type Bus struct {
	cfg        Config
	publisher  message.Publisher
	subscriber message.Subscriber
	breaker    *gobreaker.CircuitBreaker[interface{}]
	wmLogger   watermill.LoggerAdapter
	logger     zerolog.Logger
	closers    []func() error

	mu     sync.RWMutex
	closed bool
}

// NewChannelBus creates an in-process bus backed by Watermill's gochannel pub/sub.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewChannelBus(cfg Config, logger zerolog.Logger) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event bus config: %w", err)
	}
	logger = logger.With().Str("component", "event-bus").Str("backend", "gochannel").Logger()
	wmLogger := logging.NewWatermillAdapter(logger)

	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, wmLogger)

	return newBus(cfg, pubSub, pubSub, wmLogger, logger, pubSub.Close), nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newBus(
	cfg Config,
	pub message.Publisher,
	sub message.Subscriber,
	wmLogger watermill.LoggerAdapter,
	logger zerolog.Logger,
	closers ...func() error,
) *Bus {
	return &Bus{
		cfg:        cfg,
		publisher:  pub,
		subscriber: sub,
		breaker:    NewCircuitBreaker(cfg.Breaker, logger),
		wmLogger:   wmLogger,
		logger:     logger,
		closers:    closers,
	}
}

// Publish encodes ev and publishes it on the topic for its kind.
func (b *Bus) Publish(ctx context.Context, ev models.ChangeEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	data, err := Marshal(ev)
	if err != nil {
		return err
	}

	msg := message.NewMessage(ev.ID, data)
	msg.Metadata.Set("kind", string(ev.Kind))
	msg.SetContext(ctx)

	topic := TopicFor(ev.Kind)
	_, err = b.breaker.Execute(func() (interface{}, error) {
		return nil, b.publisher.Publish(topic, msg)
	})
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", ev.Kind, topic, err)
	}

	metrics.RecordEventPublished(string(ev.Kind))
	b.logger.Debug().
		Str("event_id", ev.ID).
		Str("kind", string(ev.Kind)).
		Str("topic", topic).
		Msg("Change event published")
	return nil
}

// BreakerState reports the publish circuit breaker state.
func (b *Bus) BreakerState() string {
	return b.breaker.State().String()
}

// Close shuts down the publisher and subscriber. Running consumers stop
// once their subscriptions close.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var firstErr error
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
