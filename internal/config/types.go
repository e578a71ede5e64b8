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

package config

// Config represents the root structure of the YAML configuration file.
// This struct is used to unmarshal configuration data from Viper.
type Config struct {
	Gateway Gateway `mapstructure:"gateway" mask:"struct"`
	NATS    NATS    `mapstructure:"nats"`
	Redis   Redis   `mapstructure:"redis"   mask:"struct"`
	// Debug enable or disable debug option set from CLI.
	Debug bool `mapstructure:"debug"`
}

// Gateway configuration settings.
type Gateway struct {
	Server    Server    `mapstructure:"server"              mask:"struct"`
	Protected Protected `mapstructure:"protected,omitempty"`
	RateLimit RateLimit `mapstructure:"rate_limit,omitempty"`
	Audit     Audit     `mapstructure:"audit,omitempty"`
	// Routes are the per-route authorization policies, loaded once at
	// startup.
	Routes []Route `mapstructure:"routes"`
}

// Server configuration settings.
type Server struct {
	// Port the server will bind to.
	Port int `mapstructure:"port"`
	// Security contains security-related configuration for the server,
	// such as CORS and the token signing key.
	Security ServerSecurity `mapstructure:"security" mask:"struct"`
}

// ServerSecurity represents security-related settings for the server.
type ServerSecurity struct {
	// CORS Cross-Origin Resource Sharing (CORS) settings for the server.
	CORS CORS `mapstructure:"cors"`
	// SigningKey is the key used for validating bearer tokens.
	SigningKey string `mapstructure:"signing_key" validate:"required" mask:"password"`
	// TokenHeader is the request header carrying the bearer token.
	// Defaults to "Authorization" when empty.
	TokenHeader string `mapstructure:"token_header"`
}

// CORS represents the CORS (Cross-Origin Resource Sharing) settings.
type CORS struct {
	// List of origins allowed to access the server (e.g., "foo").
	AllowOrigins []string `mapstructure:"allow_origins,omitempty"`
}

// Protected configures IP protection for sensitive path prefixes.
type Protected struct {
	// PathPrefixes lists URI prefixes that require an allow-listed
	// caller IP.
	PathPrefixes []string `mapstructure:"path_prefixes"`
	// AllowList holds IP patterns: single address, CIDR, trailing
	// wildcard (IPv4), or explicit start-end range.
	AllowList []string `mapstructure:"allow_list"`
}

// RateLimit configuration settings.
type RateLimit struct {
	// Strategy selects the limiter implementation: "none", "local", or
	// "redis".
	Strategy string `mapstructure:"strategy" validate:"omitempty,oneof=none local redis"`
	// Default is the process-wide fallback applied when neither token
	// nor route declares a limit. Zero requests disables the fallback.
	Default Rule `mapstructure:"default,omitempty"`
	// Global entries are merged under every verified token's own list.
	Global []Rule `mapstructure:"global"`
	// Local tunes the in-process limiter cache.
	Local LocalCache `mapstructure:"local,omitempty"`
}

// Rule is a single rate limit declaration.
type Rule struct {
	// URL the rule applies to, "*" for all routes.
	URL string `mapstructure:"url"`
	// Target is the identity dimension the limit key derives from.
	Target string `mapstructure:"target" validate:"omitempty,oneof=NONE IP USER MCH SAAS USER_URI MCH_URI SAAS_URI"`
	// Requests admitted per window.
	Requests int `mapstructure:"requests"`
	// Seconds is the window length.
	Seconds int `mapstructure:"seconds"`
}

// LocalCache tunes the in-process limiter's bucket cache.
type LocalCache struct {
	// MaxEntries caps tracked keys before LRU eviction.
	MaxEntries int `mapstructure:"max_entries"`
	// IdleTTL evicts keys unseen for this duration. e.g. "30m"
	IdleTTL string `mapstructure:"idle_ttl"`
	// CleanupEvery is the janitor sweep interval. e.g. "2m"
	CleanupEvery string `mapstructure:"cleanup_every"`
}

// Audit configuration settings.
type Audit struct {
	// Workers is the background dispatcher pool size.
	Workers int `mapstructure:"workers"`
	// QueueDepth bounds the dispatch queue.
	QueueDepth int `mapstructure:"queue_depth"`
	// AppInfo identifies this deployment in audit records.
	AppInfo string `mapstructure:"app_info"`
}

// Route is a per-route authorization policy declaration.
type Route struct {
	// URI the route path as registered with the routing layer.
	URI string `mapstructure:"uri"    validate:"required"`
	// Method the HTTP method.
	Method string `mapstructure:"method" validate:"required"`
	// Name is the human-readable API name, carried into audit records.
	Name string `mapstructure:"name"`
	// Description documents the route for operators.
	Description string `mapstructure:"description"`
	// RequiredUserType is the minimum caller tier (0 machine .. 3 admin).
	RequiredUserType int `mapstructure:"required_user_type" validate:"gte=0,lte=3"`
	// AuthKind "SUDO" requires an elevated session.
	AuthKind string `mapstructure:"auth_kind" validate:"omitempty,oneof=NORMAL SUDO"`
	// AuditLevel selects capture behavior.
	AuditLevel string `mapstructure:"audit_level" validate:"omitempty,oneof=NONE REQUEST RESPONSE ALL CRIT"`
	// RateLimit is the route's static limit declaration.
	RateLimit *Rule `mapstructure:"rate_limit,omitempty"`
}

// NATS configuration settings.
type NATS struct {
	Connection NATSConnection `mapstructure:"connection,omitempty"`
	Audit      NATSAudit      `mapstructure:"audit,omitempty"`
}

// NATSConnection is a reusable NATS connection configuration block.
type NATSConnection struct {
	// Host the NATS server hostname.
	Host string `mapstructure:"host"`
	// Port the NATS server port.
	Port int `mapstructure:"port"`
	// ClientName the NATS client name for identification.
	ClientName string `mapstructure:"client_name"`
	// Auth holds client-side authentication configuration.
	Auth NATSAuth `mapstructure:"auth,omitempty"`
}

// NATSAuth holds client-side authentication settings for connecting to NATS.
type NATSAuth struct {
	// Type is the auth method: "none", "user_pass", or "nkey".
	Type string `mapstructure:"type"`
	// Username for user_pass auth.
	Username string `mapstructure:"username"`
	// Password for user_pass auth.
	Password string `mapstructure:"password"  mask:"password"`
	// NKeyFile path to the NKey seed file for nkey auth.
	NKeyFile string `mapstructure:"nkey_file"`
}

// NATSAudit configuration for the audit log KV bucket and ship subject.
type NATSAudit struct {
	// Bucket is the KV bucket name for persisted audit records.
	Bucket   string `mapstructure:"bucket"`
	TTL      string `mapstructure:"ttl"` // e.g. "720h" (30 days)
	MaxBytes int64  `mapstructure:"max_bytes"`
	Storage  string `mapstructure:"storage"` // "file" or "memory"
	Replicas int    `mapstructure:"replicas"`
	// Subject audit records are shipped on for the log sink.
	Subject string `mapstructure:"subject"`
}

// Redis configuration settings for the distributed rate limiter.
type Redis struct {
	// Addr the redis server address, e.g. "localhost:6379".
	Addr string `mapstructure:"addr"`
	// Username for redis AUTH.
	Username string `mapstructure:"username"`
	// Password for redis AUTH.
	Password string `mapstructure:"password" mask:"password"`
	// DB selects the redis logical database.
	DB int `mapstructure:"db"`
}
