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

package gateway

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/authgate-io/authgate/internal/authtoken"
	"github.com/authgate-io/authgate/internal/ipmatch"
	"github.com/authgate-io/authgate/internal/permission"
	"github.com/authgate-io/authgate/internal/ratelimit"
	"github.com/authgate-io/authgate/internal/route"
)

// Context key constants for carrying request-scoped authorization state.
const (
	ContextKeyToken  = "gateway.token"
	ContextKeyPolicy = "gateway.policy"
)

// errorResponse is the JSON body for pipeline rejections.
type errorResponse struct {
	Error string `json:"error"`
}

// Pipeline is the ordered authorization chain: IP protection, token
// resolution, route policy lookup, permission check, rate limiting, and
// audit capture. The chain is composed once at startup; each stage may
// short-circuit with a terminal status.
type Pipeline struct {
	logger    *slog.Logger
	authority authtoken.Authority
	table     *route.Table
	catalog   permission.Catalog

	tokenHeader       string
	protectedPrefixes []string
	allowList         ipmatch.Ranges
	exemptPrefixes    []string

	resolver *ratelimit.Resolver
	limiter  ratelimit.Limiter

	auditor *Auditor

	requests prometheus.Counter
	rejected *prometheus.CounterVec
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithProtectedPaths enables IP protection for the given URI prefixes,
// admitting only callers matching the allow list.
func WithProtectedPaths(
	prefixes []string,
	allowList ipmatch.Ranges,
) PipelineOption {
	return func(p *Pipeline) {
		p.protectedPrefixes = prefixes
		p.allowList = allowList
	}
}

// WithRateLimiting wires the resolver and the limiting strategy.
func WithRateLimiting(
	resolver *ratelimit.Resolver,
	limiter ratelimit.Limiter,
) PipelineOption {
	return func(p *Pipeline) {
		p.resolver = resolver
		p.limiter = limiter
	}
}

// WithAuditor wires audit capture.
func WithAuditor(a *Auditor) PipelineOption {
	return func(p *Pipeline) { p.auditor = a }
}

// WithTokenHeader overrides the header the bearer token is read from.
func WithTokenHeader(h string) PipelineOption {
	return func(p *Pipeline) { p.tokenHeader = h }
}

// WithExemptPaths overrides the path prefixes that bypass the pipeline
// entirely, such as health and metrics endpoints.
func WithExemptPaths(prefixes []string) PipelineOption {
	return func(p *Pipeline) { p.exemptPrefixes = prefixes }
}

// WithPipelineRegisterer registers the pipeline's counters with reg.
func WithPipelineRegisterer(reg prometheus.Registerer) PipelineOption {
	return func(p *Pipeline) {
		reg.MustRegister(p.requests, p.rejected)
	}
}

// NewPipeline creates a new Pipeline.
func NewPipeline(
	logger *slog.Logger,
	authority authtoken.Authority,
	table *route.Table,
	catalog permission.Catalog,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		logger:      logger,
		authority:   authority,
		table:       table,
		catalog:     catalog,
		tokenHeader: echo.HeaderAuthorization,
		limiter:     ratelimit.NewNoop(),
		exemptPrefixes: []string{
			"/health",
			"/metrics",
		},
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authgate_gateway_requests_total",
			Help: "Requests entering the authorization pipeline.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_gateway_rejections_total",
			Help: "Requests rejected by the pipeline, by reason.",
		}, []string{"reason"}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Middlewares returns the chain in its required order. Callers register the
// result with echo.Use verbatim.
func (p *Pipeline) Middlewares() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		p.IPProtect(),
		p.ResolveToken(),
		p.Authorize(),
		p.RateLimit(),
		p.AuditCapture(),
	}
}

func (p *Pipeline) exempt(path string) bool {
	for _, prefix := range p.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (p *Pipeline) reject(
	c echo.Context,
	status int,
	reason string,
	msg string,
) error {
	p.rejected.WithLabelValues(reason).Inc()
	return c.JSON(status, errorResponse{Error: msg})
}

// IPProtect rejects callers whose IP is outside the allow list when the
// request path falls under a protected prefix. Runs before any other work.
func (p *Pipeline) IPProtect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if p.exempt(path) {
				return next(c)
			}

			p.requests.Inc()

			for _, prefix := range p.protectedPrefixes {
				if !strings.HasPrefix(path, prefix) {
					continue
				}
				if p.allowList.MatchesString(c.RealIP()) {
					break
				}

				p.logger.Warn(
					"blocked caller outside allow list",
					slog.String("ip", c.RealIP()),
					slog.String("path", path),
				)
				return p.reject(
					c,
					http.StatusForbidden,
					"ip_blocked",
					"caller address not permitted",
				)
			}

			return next(c)
		}
	}
}

// ResolveToken extracts the bearer token and asks the authority to resolve
// it. Authority failures are terminal: the pipeline fails closed.
func (p *Pipeline) ResolveToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if p.exempt(c.Request().URL.Path) {
				return next(c)
			}

			raw := c.Request().Header.Get(p.tokenHeader)
			raw = strings.TrimPrefix(raw, "Bearer ")

			token, err := p.authority.Resolve(c.Request().Context(), raw)
			if err != nil {
				return p.reject(
					c,
					authtoken.Status(err),
					"token",
					err.Error(),
				)
			}

			c.Set(ContextKeyToken, token)

			return next(c)
		}
	}
}

// Authorize looks up the route's policy and executes the catalog's verdict.
// Unregistered routes pass through untouched; a 404 is the routing layer's
// business, not an authorization concern.
func (p *Pipeline) Authorize() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			policy, ok := p.table.Lookup(req.URL.Path, req.Method)
			if !ok {
				return next(c)
			}

			c.Set(ContextKeyPolicy, policy)

			permCode := permission.Code(req.URL.Path, req.Method)
			err := p.catalog.Check(
				req.Context(),
				tokenFrom(c),
				policy,
				permCode,
			)
			if err != nil {
				return p.reject(
					c,
					permission.Status(err),
					"permission",
					err.Error(),
				)
			}

			return next(c)
		}
	}
}

// RateLimit resolves the applicable limit for the caller and route, then
// consults the limiter. Denials carry a Retry-After hint when the limiter
// can provide one.
func (p *Pipeline) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if p.resolver == nil {
				return next(c)
			}

			policy, ok := policyFrom(c)
			if !ok {
				return next(c)
			}

			token := tokenFrom(c)
			if token == nil {
				return next(c)
			}

			caller := ratelimit.Caller{
				IP:     c.RealIP(),
				UserID: token.UserID,
				SaasID: token.SaasID,
				MchID:  token.MchID,
			}

			info, resolved := p.resolver.Resolve(
				token.RateLimits,
				policy.RateLimit,
				caller,
				c.Request().URL.Path,
			)
			if !resolved {
				return next(c)
			}

			decision := p.limiter.TryAcquire(
				c.Request().Context(),
				info.Key,
				info.Requests,
				info.Seconds,
				1,
			)
			if !decision.Allowed() {
				if decision.RetryAfter > 0 {
					secs := int(math.Ceil(decision.RetryAfter.Seconds()))
					if secs < 1 {
						secs = 1
					}
					c.Response().Header().Set(
						"Retry-After", strconv.Itoa(secs),
					)
				}
				return p.reject(
					c,
					http.StatusTooManyRequests,
					"rate_limited",
					fmt.Sprintf("rate limit exceeded for %s", info.Target),
				)
			}

			return next(c)
		}
	}
}

// AuditCapture decides the capture plan for the route, wraps bodies as
// needed, and finalizes the record on every exit path, panics included.
func (p *Pipeline) AuditCapture() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if p.auditor == nil {
				return next(c)
			}

			policy, ok := policyFrom(c)
			if !ok {
				return next(c)
			}

			token := tokenFrom(c)
			if token == nil {
				return next(c)
			}

			return p.auditor.Capture(c, policy, token, next)
		}
	}
}

func tokenFrom(c echo.Context) *authtoken.AuthToken {
	token, _ := c.Get(ContextKeyToken).(*authtoken.AuthToken)
	return token
}

func policyFrom(c echo.Context) (route.Policy, bool) {
	policy, ok := c.Get(ContextKeyPolicy).(route.Policy)
	return policy, ok
}
