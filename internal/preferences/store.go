// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package preferences

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/models"
)

const keyPrefix = "prefs:"

// versionPrefix keys the per-user version counter. It survives Delete so a
// later Save never reuses a version.
const versionPrefix = "prefsver:"

// maxConflictRetries bounds retries of a Save that lost a transaction race.
const maxConflictRetries = 3

var (
	// ErrNotFound is returned when deleting preferences that do not exist.
	ErrNotFound = errors.New("preferences not found")

	// ErrMissingUserID is returned when saving preferences without a user.
	ErrMissingUserID = errors.New("preferences require a user id")
)

// ChangeNotifier announces preference changes. *eventprocessor.Bus satisfies it.
type ChangeNotifier interface {
	Publish(ctx context.Context, ev models.ChangeEvent) error
}

// Config configures the store.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in memory. Intended for tests and demos.
	InMemory bool
}

// Store is a BadgerDB-backed preferences store.
type Store struct {
	db       *badger.DB
	notifier ChangeNotifier
	logger   zerolog.Logger
	now      func() time.Time
}

// Open opens (or creates) the store. notifier may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, notifier ChangeNotifier, logger zerolog.Logger) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("preferences path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil // Suppress BadgerDB internal logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for preferences: %w", err)
	}
	return New(db, notifier, logger), nil
}

// New wraps an already open database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(db *badger.DB, notifier ChangeNotifier, logger zerolog.Logger) *Store {
	return &Store{
		db:       db,
		notifier: notifier,
		logger:   logger.With().Str("component", "preferences").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func key(userID string) []byte {
	return []byte(keyPrefix + userID)
}

func versionKey(userID string) []byte {
	return []byte(versionPrefix + userID)
}

// lastVersion returns the highest version ever issued for the user.
func lastVersion(txn *badger.Txn, userID string) (uint64, error) {
	item, err := txn.Get(versionKey(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var v uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt version counter for %s", userID)
		}
		v = binary.BigEndian.Uint64(val)
		return nil
	})
	return v, err
}

// GetPreferences returns the user's preferences, or nil when none are stored.
func (s *Store) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var prefs *models.Preferences
	err := s.db.View(func(txn *badger.Txn) error {
		p, err := load(txn, userID)
		prefs = p
		return err
	})
	metrics.RecordPreferenceStoreOp("get", err)
	if err != nil {
		return nil, fmt.Errorf("get preferences for %s: %w", userID, err)
	}
	return prefs, nil
}

func load(txn *badger.Txn, userID string) (*models.Preferences, error) {
	item, err := txn.Get(key(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p models.Preferences
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &p)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal preferences: %w", err)
	}
	return &p, nil
}

// Save normalizes and stores prefs, replacing any previous record. The stored
// copy carries the next Version and a fresh UpdatedAt and is returned.
func (s *Store) Save(ctx context.Context, prefs *models.Preferences) (*models.Preferences, error) {
	if prefs == nil || prefs.UserID == "" {
		return nil, ErrMissingUserID
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var saved *models.Preferences
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		saved, err = s.save(prefs)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	metrics.RecordPreferenceStoreOp("save", err)
	if err != nil {
		return nil, fmt.Errorf("save preferences for %s: %w", prefs.UserID, err)
	}

	s.notify(ctx, prefs.UserID)
	return saved.Clone(), nil
}

func (s *Store) save(prefs *models.Preferences) (*models.Preferences, error) {
	next := prefs.Normalized()
	next.UserID = prefs.UserID

	err := s.db.Update(func(txn *badger.Txn) error {
		prev, err := load(txn, prefs.UserID)
		if err != nil {
			return err
		}
		last, err := lastVersion(txn, prefs.UserID)
		if err != nil {
			return err
		}
		if prev != nil && prev.Version > last {
			last = prev.Version
		}
		next.Version = last + 1
		next.UpdatedAt = s.now()

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal preferences: %w", err)
		}
		if err := txn.Set(key(prefs.UserID), data); err != nil {
			return err
		}
		return txn.Set(versionKey(prefs.UserID), binary.BigEndian.AppendUint64(nil, next.Version))
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Delete removes the user's preferences. The version counter is kept.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key(userID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key(userID))
	})
	metrics.RecordPreferenceStoreOp("delete", err)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete preferences for %s: %w", userID, err)
	}

	s.notify(ctx, userID)
	return nil
}

// Count returns the number of users with stored preferences.
func (s *Store) Count(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("preferences store is closed")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// notify publishes a preference change. The write has already committed, so
// a failure is logged and not returned.
func (s *Store) notify(ctx context.Context, userID string) {
	if s.notifier == nil {
		return
	}
	ev := models.NewChangeEvent(models.ChangePreferences, "", userID)
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to publish preference change")
	}
}
