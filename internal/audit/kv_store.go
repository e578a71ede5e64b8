// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nats-io/nats.go"
)

// KVBucket is the subset of the NATS KeyValue surface the store needs.
// Satisfied by nats.KeyValue.
type KVBucket interface {
	Put(key string, value []byte) (uint64, error)
	Get(key string) (nats.KeyValueEntry, error)
	Keys(opts ...nats.WatchOpt) ([]string, error)
}

// ensure KVStore implements Store at compile time.
var _ Store = (*KVStore)(nil)

// KVStore implements Store backed by a NATS KeyValue bucket.
type KVStore struct {
	kv     KVBucket
	logger *slog.Logger
}

// NewKVStore creates a new KVStore.
func NewKVStore(
	logger *slog.Logger,
	kv KVBucket,
) *KVStore {
	return &KVStore{
		kv:     kv,
		logger: logger,
	}
}

// Save persists an audit record to the KV bucket.
func (s *KVStore) Save(
	_ context.Context,
	rec Record,
) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	if _, err := s.kv.Put(rec.ID, data); err != nil {
		return fmt.Errorf("put audit record: %w", err)
	}

	return nil
}

// Get retrieves a single audit record by ID.
func (s *KVStore) Get(
	_ context.Context,
	id string,
) (*Record, error) {
	kve, err := s.kv.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get audit record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(kve.Value(), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal audit record: %w", err)
	}

	return &rec, nil
}

// List retrieves audit records with pagination.
func (s *KVStore) List(
	_ context.Context,
	limit int,
	offset int,
) ([]Record, int, error) {
	keys, err := s.kv.Keys()
	if err != nil {
		// nats.ErrNoKeysFound means the bucket is empty
		if errors.Is(err, nats.ErrNoKeysFound) {
			return []Record{}, 0, nil
		}
		return nil, 0, fmt.Errorf("list audit keys: %w", err)
	}

	total := len(keys)

	// Sort descending, newest first. UUIDv7 keys sort naturally by time.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	// Apply pagination
	if offset >= total {
		return []Record{}, total, nil
	}

	end := offset + limit
	if end > total {
		end = total
	}

	pageKeys := keys[offset:end]

	records := make([]Record, 0, len(pageKeys))
	for _, key := range pageKeys {
		kve, err := s.kv.Get(key)
		if err != nil {
			s.logger.Warn(
				"failed to get audit record",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}

		var rec Record
		if err := json.Unmarshal(kve.Value(), &rec); err != nil {
			s.logger.Warn(
				"failed to unmarshal audit record",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}

		records = append(records, rec)
	}

	return records, total, nil
}
