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

package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/authgate-io/authgate/internal/config"
)

// Defaults applied when the audit bucket config leaves fields unset.
const (
	defaultAuditBucket  = "audit"
	defaultAuditSubject = "authgate.audit"
)

// NATSURL builds the client connection URL from config.
func NATSURL(
	conn config.NATSConnection,
) string {
	return fmt.Sprintf("nats://%s:%d", conn.Host, conn.Port)
}

// NATSOptions maps the connection config to client options.
func NATSOptions(
	conn config.NATSConnection,
) ([]nats.Option, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}

	if conn.ClientName != "" {
		opts = append(opts, nats.Name(conn.ClientName))
	}

	switch conn.Auth.Type {
	case "", "none":
	case "user_pass":
		opts = append(opts, nats.UserInfo(conn.Auth.Username, conn.Auth.Password))
	case "nkey":
		opt, err := nats.NkeyOptionFromSeed(conn.Auth.NKeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading nkey seed: %w", err)
		}
		opts = append(opts, opt)
	default:
		return nil, fmt.Errorf("unsupported nats auth type: %q", conn.Auth.Type)
	}

	return opts, nil
}

// ConnectNATS establishes a client connection to the configured NATS server.
func ConnectNATS(
	logger *slog.Logger,
	conn config.NATSConnection,
) (*nats.Conn, error) {
	opts, err := NATSOptions(conn)
	if err != nil {
		return nil, err
	}

	url := NATSURL(conn)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}

	logger.Info(
		"connected to nats",
		slog.String("url", url),
	)

	return nc, nil
}

// AuditBucketConfig maps the audit storage config to a KV bucket config.
func AuditBucketConfig(
	cfg config.NATSAudit,
) (*nats.KeyValueConfig, error) {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = defaultAuditBucket
	}

	var ttl time.Duration
	if cfg.TTL != "" {
		parsed, err := time.ParseDuration(cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("parsing audit bucket ttl: %w", err)
		}
		ttl = parsed
	}

	var storage nats.StorageType
	switch cfg.Storage {
	case "", "file":
		storage = nats.FileStorage
	case "memory":
		storage = nats.MemoryStorage
	default:
		return nil, fmt.Errorf("unsupported audit bucket storage: %q", cfg.Storage)
	}

	replicas := cfg.Replicas
	if replicas == 0 {
		replicas = 1
	}

	return &nats.KeyValueConfig{
		Bucket:   bucket,
		TTL:      ttl,
		MaxBytes: cfg.MaxBytes,
		Storage:  storage,
		Replicas: replicas,
	}, nil
}

// AuditSubject returns the ship subject, falling back to the default.
func AuditSubject(
	cfg config.NATSAudit,
) string {
	if cfg.Subject != "" {
		return cfg.Subject
	}
	return defaultAuditSubject
}

// EnsureAuditBucket opens the audit records KV bucket, creating it with the
// configured retention settings when absent.
func EnsureAuditBucket(
	nc *nats.Conn,
	cfg config.NATSAudit,
) (nats.KeyValue, error) {
	kvCfg, err := AuditBucketConfig(cfg)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("getting jetstream context: %w", err)
	}

	kv, err := js.KeyValue(kvCfg.Bucket)
	if err != nil {
		if !errors.Is(err, nats.ErrBucketNotFound) {
			return nil, fmt.Errorf("opening audit bucket: %w", err)
		}
		kv, err = js.CreateKeyValue(kvCfg)
		if err != nil {
			return nil, fmt.Errorf("creating audit bucket: %w", err)
		}
	}

	return kv, nil
}
