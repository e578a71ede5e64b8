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

import (
	"errors"
	"fmt"

	"github.com/authgate-io/authgate/internal/ipmatch"
	"github.com/authgate-io/authgate/internal/ratelimit"
	"github.com/authgate-io/authgate/internal/validation"
)

// Validate checks the unmarshaled configuration. Malformed IP patterns and
// rate limit rules are rejected here, at load time, rather than surfacing
// per-request.
func Validate(
	cfg *Config,
) error {
	if msg, ok := validation.Struct(cfg); !ok {
		return errors.New(msg)
	}

	if _, err := ipmatch.Build(cfg.Gateway.Protected.AllowList); err != nil {
		return fmt.Errorf("gateway.protected.allow_list: %w", err)
	}

	if cfg.Gateway.RateLimit.Default.Requests != 0 {
		if !cfg.Gateway.RateLimit.Default.LimitFor(ratelimit.WildcardURL).Valid() {
			return fmt.Errorf(
				"gateway.rate_limit.default: invalid rule %+v",
				cfg.Gateway.RateLimit.Default,
			)
		}
	}

	for i, rule := range cfg.Gateway.RateLimit.Global {
		if !rule.Limit().Valid() {
			return fmt.Errorf(
				"gateway.rate_limit.global[%d]: invalid rule %+v", i, rule,
			)
		}
	}

	for _, r := range cfg.Gateway.Routes {
		if r.RateLimit != nil && !r.RateLimit.LimitFor(r.URI).Valid() {
			return fmt.Errorf(
				"gateway.routes: invalid rate limit for %s %s",
				r.Method, r.URI,
			)
		}
	}

	return nil
}

// Limit converts a Rule to its runtime rate limit form.
func (r Rule) Limit() ratelimit.Config {
	return ratelimit.Config{
		URL:      r.URL,
		Target:   ratelimit.Target(r.Target),
		Requests: r.Requests,
		Seconds:  r.Seconds,
	}
}

// LimitFor converts a Rule, defaulting its URL to url when the rule omits
// one. Route-scoped rules inherit their route's URI this way.
func (r Rule) LimitFor(
	url string,
) ratelimit.Config {
	lim := r.Limit()
	if lim.URL == "" {
		lim.URL = url
	}
	return lim
}
