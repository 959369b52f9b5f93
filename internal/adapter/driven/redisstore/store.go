// Package redisstore implements the credential store port on Redis, for
// operators who share one panel session across several machines.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ericfisherdev/panelctl/internal/adapter/driven/secretbox"
	"github.com/ericfisherdev/panelctl/internal/domain/model"
	"github.com/ericfisherdev/panelctl/internal/domain/port/driven"
)

const keyPrefix = "panelctl:credential:"

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore keeps each credential in a hash {value, updated_at} under
// "panelctl:credential:<key>". Values are sealed with the same box as the
// SQLite backend.
type CredentialStore struct {
	client redis.UniversalClient
	box    *secretbox.Box
	now    func() time.Time
}

// NewClient returns a go-redis client for redisURL (redis://host:port/db) after
// a ping with a short timeout.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// New wraps client as a CredentialStore.
func New(client redis.UniversalClient, box *secretbox.Box) *CredentialStore {
	return &CredentialStore{client: client, box: box, now: time.Now}
}

// Set stores or replaces the credential for key.
func (s *CredentialStore) Set(ctx context.Context, key, plaintext string) error {
	sealed, err := s.box.Seal(plaintext)
	if err != nil {
		return err
	}

	err = s.client.HSet(ctx, keyPrefix+key,
		"value", sealed,
		"updated_at", s.now().UTC().Format(time.RFC3339),
	).Err()
	if err != nil {
		return fmt.Errorf("set credential %q: %w", key, err)
	}
	return nil
}

// Get returns the plaintext credential for key, or "" when absent.
func (s *CredentialStore) Get(ctx context.Context, key string) (string, error) {
	if !s.box.Enabled() {
		return "", driven.ErrEncryptionKeyNotSet
	}

	sealed, err := s.client.HGet(ctx, keyPrefix+key, "value").Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get credential %q: %w", key, err)
	}

	plaintext, err := s.box.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("decrypt credential %q: %w", key, err)
	}
	return plaintext, nil
}

// List returns every stored credential ordered by key.
func (s *CredentialStore) List(ctx context.Context) ([]model.Credential, error) {
	if !s.box.Enabled() {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	var keys []string
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan credentials: %w", err)
	}
	sort.Strings(keys)

	creds := make([]model.Credential, 0, len(keys))
	for _, k := range keys {
		fields, err := s.client.HGetAll(ctx, k).Result()
		if err != nil {
			return nil, fmt.Errorf("read credential %q: %w", k, err)
		}
		name := strings.TrimPrefix(k, keyPrefix)

		value, err := s.box.Open(fields["value"])
		if err != nil {
			return nil, fmt.Errorf("decrypt credential %q: %w", name, err)
		}
		updatedAt, err := time.Parse(time.RFC3339, fields["updated_at"])
		if err != nil {
			return nil, fmt.Errorf("parse updated_at for credential %q: %w", name, err)
		}

		creds = append(creds, model.Credential{Key: name, Value: value, UpdatedAt: updatedAt})
	}
	return creds, nil
}

// Delete removes the credential for key.
func (s *CredentialStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete credential %q: %w", key, err)
	}
	return nil
}
