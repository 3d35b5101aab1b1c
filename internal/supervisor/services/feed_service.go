// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/eventprocessor"
	"github.com/tomtom215/platewise/internal/models"
)

// ChangeSubscriber creates consumers on the change-event bus.
// Satisfied by *eventprocessor.Bus.
type ChangeSubscriber interface {
	NewConsumer(name string, topics []string, handler eventprocessor.Handler) (*eventprocessor.Consumer, error)
}

// FeedRouter receives change events and evicts idle feeds.
// Satisfied by *recommend.Hub.
type FeedRouter interface {
	HandleChange(ev models.ChangeEvent) int
	Prune(idle time.Duration) int
}

// FeedServiceConfig holds configuration for the feed service.
type FeedServiceConfig struct {
	// PruneInterval is how often idle feeds are evicted. Zero disables pruning.
	PruneInterval time.Duration

	// IdleTTL is how long a feed without listeners survives.
	IdleTTL time.Duration
}

// ChangeTopics lists every topic the feed service consumes.
func ChangeTopics() []string {
	return []string{eventprocessor.TopicPreferences, eventprocessor.TopicCatalog}
}

// FeedService routes bus change events into recommendation feeds and prunes
// idle feeds on a timer. Each Serve subscribes afresh, so a restart after a
// bus failure resubscribes.
type FeedService struct {
	bus    ChangeSubscriber
	feeds  FeedRouter
	config FeedServiceConfig
	logger zerolog.Logger
	name   string
}

// NewFeedService creates a new feed service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFeedService(bus ChangeSubscriber, feeds FeedRouter, cfg FeedServiceConfig, logger zerolog.Logger) *FeedService {
	return &FeedService{
		bus:    bus,
		feeds:  feeds,
		config: cfg,
		logger: logger.With().Str("service", "feeds").Logger(),
		name:   "feed-service",
	}
}

// Serve implements suture.Service.
func (s *FeedService) Serve(ctx context.Context) error {
	consumer, err := s.bus.NewConsumer(s.name, ChangeTopics(), s.handle)
	if err != nil {
		return fmt.Errorf("subscribe to change events: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Run(runCtx)
	}()

	s.logger.Info().
		Dur("prune_interval", s.config.PruneInterval).
		Dur("idle_ttl", s.config.IdleTTL).
		Msg("feed service running")

	var tick <-chan time.Time
	if s.config.PruneInterval > 0 {
		ticker := time.NewTicker(s.config.PruneInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			cancel()
			<-consumerErr
			s.logger.Info().Msg("feed service shutting down")
			return ctx.Err()

		case err := <-consumerErr:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err == nil {
				err = errors.New("consumer stopped")
			}
			return fmt.Errorf("change consumer: %w", err)

		case <-tick:
			if n := s.feeds.Prune(s.config.IdleTTL); n > 0 {
				s.logger.Debug().Int("pruned", n).Msg("idle feeds evicted")
			}
		}
	}
}

func (s *FeedService) handle(_ context.Context, ev models.ChangeEvent) error {
	s.feeds.HandleChange(ev)
	return nil
}

// String returns the service name for logging.
func (s *FeedService) String() string {
	return s.name
}
