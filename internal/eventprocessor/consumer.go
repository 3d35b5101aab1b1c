// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/models"
)

// Handler processes one change event.
type Handler func(ctx context.Context, ev models.ChangeEvent) error

// Consumer runs a Watermill router that feeds change events to a Handler.
// A Consumer runs once; create a new one to resubscribe.
type Consumer struct {
	name   string
	router *message.Router
}

// NewConsumer subscribes handler to topics. Messages that fail to decode
// are acknowledged and counted; handler errors are retried with backoff and
// then dropped.
func (b *Bus) NewConsumer(name string, topics []string, handler Handler) (*Consumer, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("consumer %s: no topics", name)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: b.cfg.CloseTimeout}, b.wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	logger := b.logger.With().Str("consumer", name).Logger()
	retry := middleware.Retry{
		MaxRetries:      b.cfg.RetryMaxRetries,
		InitialInterval: b.cfg.RetryInitialInterval,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
		Logger:          b.wmLogger,
	}
	h := retry.Middleware(middleware.Recoverer(decodeAndHandle(handler, logger)))

	for _, topic := range topics {
		topic := topic
		router.AddConsumerHandler(name+"."+topic, topic, b.subscriber, func(msg *message.Message) error {
			if _, err := h(msg); err != nil {
				logger.Warn().Err(err).
					Str("topic", topic).
					Str("message_uuid", msg.UUID).
					Msg("Change event dropped after retries")
			}
			return nil
		})
	}

	return &Consumer{name: name, router: router}, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func decodeAndHandle(handler Handler, logger zerolog.Logger) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ev, err := Unmarshal(msg.Payload)
		if err != nil {
			metrics.RecordEventDecodeFailed()
			logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Undecodable change event skipped")
			return nil, nil
		}
		metrics.RecordEventReceived(string(ev.Kind))
		return nil, handler(msg.Context(), ev)
	}
}

// Run blocks until ctx is canceled or the subscriptions close.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.router.Run(ctx); err != nil {
		return fmt.Errorf("consumer %s: %w", c.name, err)
	}
	return nil
}

// Running is closed once every subscription is live.
func (c *Consumer) Running() <-chan struct{} {
	return c.router.Running()
}

// Close stops the consumer and waits for in-flight handlers.
func (c *Consumer) Close() error {
	return c.router.Close()
}
