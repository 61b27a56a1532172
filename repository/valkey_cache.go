package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"

	domainCache "github.com/govtwool/govtwool-backend/domains/cache"
	"github.com/govtwool/govtwool-backend/infrastructure/valkey"
)

// ValkeyCacheStore shares router entries between API replicas. Values are
// stored as JSON, so entries read back carry Payload and a nil Value.
// Keys outlive their TTL by staleRetention so a stale copy can still be
// served while the provider is failing.
type ValkeyCacheStore struct {
	client         *valkey.Client
	prefix         string
	staleRetention time.Duration
}

func NewValkeyCacheStore(client *valkey.Client, staleRetention time.Duration) *ValkeyCacheStore {
	return &ValkeyCacheStore{
		client:         client,
		prefix:         client.Key("cache") + ":",
		staleRetention: staleRetention,
	}
}

func (s *ValkeyCacheStore) fullKey(key string) string {
	return s.prefix + key
}

func (s *ValkeyCacheStore) inner() valkeylib.Client {
	return s.client.Inner()
}

func (s *ValkeyCacheStore) Get(ctx context.Context, key string) (*domainCache.Entry, error) {
	cmd := s.inner().B().Get().Key(s.fullKey(key)).Build()
	data, err := s.inner().Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	var entry domainCache.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &entry, nil
}

func (s *ValkeyCacheStore) Set(ctx context.Context, key string, entry *domainCache.Entry) error {
	stored := *entry
	if stored.Payload == nil {
		payload, err := json.Marshal(entry.Value)
		if err != nil {
			return fmt.Errorf("failed to marshal cache value: %w", err)
		}
		stored.Payload = payload
	}
	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	var cmd valkeylib.Completed
	if entry.TTL > 0 {
		cmd = s.inner().B().Set().Key(s.fullKey(key)).Value(string(data)).Ex(entry.TTL + s.staleRetention).Build()
	} else {
		cmd = s.inner().B().Set().Key(s.fullKey(key)).Value(string(data)).Build()
	}
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}
	return nil
}

func (s *ValkeyCacheStore) Delete(ctx context.Context, key string) error {
	cmd := s.inner().B().Del().Key(s.fullKey(key)).Build()
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (s *ValkeyCacheStore) Len(ctx context.Context) (int, error) {
	keys, err := s.scan(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *ValkeyCacheStore) Purge(ctx context.Context) error {
	keys, err := s.scan(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	cmd := s.inner().B().Del().Key(keys...).Build()
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

func (s *ValkeyCacheStore) scan(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		cmd := s.inner().B().Scan().Cursor(cursor).Match(s.prefix + "*").Count(100).Build()
		result, err := s.inner().Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to scan cache: %w", err)
		}
		keys = append(keys, result.Elements...)
		cursor = result.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}
