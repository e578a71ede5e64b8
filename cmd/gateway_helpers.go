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

package cmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/authgate-io/authgate/internal/audit"
	"github.com/authgate-io/authgate/internal/authtoken"
	"github.com/authgate-io/authgate/internal/cli"
	"github.com/authgate-io/authgate/internal/config"
	"github.com/authgate-io/authgate/internal/ratelimit"
	"github.com/authgate-io/authgate/internal/route"
)

// buildRouteTable registers the configured route policies.
func buildRouteTable(
	log *slog.Logger,
	routes []config.Route,
) *route.Table {
	table := route.NewTable()

	for _, r := range routes {
		kind := authtoken.AuthKind(r.AuthKind)
		if kind == "" {
			kind = authtoken.AuthKindNormal
		}

		policy := route.Policy{
			Name:             r.Name,
			Description:      r.Description,
			RequiredUserType: authtoken.UserType(r.RequiredUserType),
			AuthKind:         kind,
			AuditLevel:       audit.ParseLevel(r.AuditLevel),
		}

		if r.RateLimit != nil {
			c := r.RateLimit.LimitFor(r.URI)
			policy.RateLimit = &c
		}

		if err := table.Register(r.URI, r.Method, policy); err != nil {
			logFatal("failed to register route", err, "uri", r.URI, "method", r.Method)
		}

		log.Debug(
			"registered route",
			slog.String("uri", r.URI),
			slog.String("method", r.Method),
			slog.String("audit_level", policy.AuditLevel.String()),
		)
	}

	return table
}

// buildResolver wires the process-wide default rule, when one is configured.
func buildResolver(
	cfg config.RateLimit,
) *ratelimit.Resolver {
	if cfg.Default.Requests == 0 {
		return ratelimit.NewResolver(nil)
	}

	c := cfg.Default.LimitFor(ratelimit.WildcardURL)
	return ratelimit.NewResolver(&c)
}

// globalLimits maps the configured global rules onto limiter configs.
func globalLimits(
	rules []config.Rule,
) []ratelimit.Config {
	if len(rules) == 0 {
		return nil
	}

	configs := make([]ratelimit.Config, 0, len(rules))
	for _, r := range rules {
		configs = append(configs, r.Limit())
	}
	return configs
}

// buildLimiter picks the limiting strategy from config. The returned cleanup
// releases strategy resources and may be nil.
func buildLimiter(
	log *slog.Logger,
	cfg config.Gateway,
	redisCfg config.Redis,
) (ratelimit.Limiter, func()) {
	switch cfg.RateLimit.Strategy {
	case "none":
		return ratelimit.NewNoop(), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Username: redisCfg.Username,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		log.Info(
			"using redis rate limiting",
			slog.String("addr", redisCfg.Addr),
		)
		return ratelimit.NewRedis(log, client), func() { _ = client.Close() }

	default:
		var opts []ratelimit.LocalOption
		local := cfg.RateLimit.Local
		if local.MaxEntries > 0 {
			opts = append(opts, ratelimit.WithMaxEntries(local.MaxEntries))
		}
		if d := parseDuration(local.IdleTTL); d > 0 {
			opts = append(opts, ratelimit.WithIdleTTL(d))
		}
		if d := parseDuration(local.CleanupEvery); d > 0 {
			opts = append(opts, ratelimit.WithCleanupEvery(d))
		}

		limiter := ratelimit.NewLocal(opts...)

		janitorCtx, cancel := context.WithCancel(context.Background())
		limiter.StartJanitor(janitorCtx)

		return limiter, cancel
	}
}

// parseDuration parses a config duration, treating empty or malformed
// strings as unset. Validation already rejected malformed values.
func parseDuration(
	s string,
) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// auditBundle holds the audit persistence resources a running gateway owns.
type auditBundle struct {
	nc         *nats.Conn
	dispatcher *audit.Dispatcher
}

// close releases the bundle's connection.
func (b *auditBundle) close() {
	if b.nc != nil && !b.nc.IsClosed() {
		b.nc.Close()
	}
}

// setupAuditDispatcher connects the audit storage backends and starts
// nothing; the caller owns the dispatcher lifecycle. When no NATS host is
// configured the dispatcher runs with persistence and shipping disabled.
func setupAuditDispatcher(
	log *slog.Logger,
	cfg config.Config,
	opts ...audit.DispatcherOption,
) *auditBundle {
	auditCfg := cfg.Gateway.Audit
	if auditCfg.Workers > 0 {
		opts = append(opts, audit.WithWorkers(auditCfg.Workers))
	}
	if auditCfg.QueueDepth > 0 {
		opts = append(opts, audit.WithQueueDepth(auditCfg.QueueDepth))
	}

	if cfg.NATS.Connection.Host == "" {
		log.Warn("nats is not configured, audit records will not be retained")
		return &auditBundle{
			dispatcher: audit.NewDispatcher(log, nil, nil, opts...),
		}
	}

	nc, err := cli.ConnectNATS(log, cfg.NATS.Connection)
	if err != nil {
		logFatal("failed to connect to nats", err)
	}

	kv, err := cli.EnsureAuditBucket(nc, cfg.NATS.Audit)
	if err != nil {
		logFatal("failed to open audit bucket", err)
	}

	store := audit.NewKVStore(log, kv)
	shipper := audit.NewNATSShipper(nc, cli.AuditSubject(cfg.NATS.Audit))

	return &auditBundle{
		nc:         nc,
		dispatcher: audit.NewDispatcher(log, store, shipper, opts...),
	}
}

// appIdentity resolves the AppInfo and AppHost stamped into audit records.
func appIdentity(
	cfg config.Gateway,
) (string, string) {
	appInfo := cfg.Audit.AppInfo
	if appInfo == "" {
		appInfo = "authgate"
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	return appInfo, host
}
