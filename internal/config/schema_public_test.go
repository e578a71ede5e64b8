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

package config_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/authgate-io/authgate/internal/config"
	"github.com/authgate-io/authgate/internal/ratelimit"
)

type ConfigPublicTestSuite struct {
	suite.Suite
}

func TestConfigPublicTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigPublicTestSuite))
}

func validConfig() config.Config {
	return config.Config{
		Gateway: config.Gateway{
			Server: config.Server{
				Port: 8080,
				Security: config.ServerSecurity{
					SigningKey: "test-signing-key",
				},
			},
			Protected: config.Protected{
				PathPrefixes: []string{"/admin"},
				AllowList:    []string{"10.0.0.0/8", "192.168.1.*"},
			},
			RateLimit: config.RateLimit{
				Strategy: "local",
				Default: config.Rule{
					Target:   "IP",
					Requests: 100,
					Seconds:  60,
				},
			},
			Routes: []config.Route{
				{
					URI:              "/api/v1/orders",
					Method:           "POST",
					Name:             "create order",
					RequiredUserType: 1,
					AuthKind:         "NORMAL",
					AuditLevel:       "ALL",
					RateLimit: &config.Rule{
						Target:   "USER_URI",
						Requests: 10,
						Seconds:  60,
					},
				},
			},
		},
	}
}

func (suite *ConfigPublicTestSuite) TestValidate() {
	tests := []struct {
		name        string
		mutate      func(*config.Config)
		expectError bool
		errContains string
	}{
		{
			name:        "when config valid",
			mutate:      func(_ *config.Config) {},
			expectError: false,
		},
		{
			name: "when signing key missing",
			mutate: func(c *config.Config) {
				c.Gateway.Server.Security.SigningKey = ""
			},
			expectError: true,
			errContains: "SigningKey",
		},
		{
			name: "when strategy unknown",
			mutate: func(c *config.Config) {
				c.Gateway.RateLimit.Strategy = "memcached"
			},
			expectError: true,
			errContains: "Strategy",
		},
		{
			name: "when allow list pattern malformed",
			mutate: func(c *config.Config) {
				c.Gateway.Protected.AllowList = []string{"10.*.0.1"}
			},
			expectError: true,
			errContains: "allow_list",
		},
		{
			name: "when default rule window zero",
			mutate: func(c *config.Config) {
				c.Gateway.RateLimit.Default.Seconds = 0
			},
			expectError: true,
			errContains: "rate_limit.default",
		},
		{
			name: "when route method missing",
			mutate: func(c *config.Config) {
				c.Gateway.Routes[0].Method = ""
			},
			expectError: true,
			errContains: "Method",
		},
		{
			name: "when route audit level unknown",
			mutate: func(c *config.Config) {
				c.Gateway.Routes[0].AuditLevel = "VERBOSE"
			},
			expectError: true,
			errContains: "AuditLevel",
		},
		{
			name: "when route rate limit invalid",
			mutate: func(c *config.Config) {
				c.Gateway.Routes[0].RateLimit.Requests = -1
			},
			expectError: true,
			errContains: "invalid rate limit",
		},
		{
			name: "when global rule target unknown",
			mutate: func(c *config.Config) {
				c.Gateway.RateLimit.Global = []config.Rule{
					{URL: "*", Target: "USERZ", Requests: 5, Seconds: 1},
				}
			},
			expectError: true,
			errContains: "Target",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := config.Validate(&cfg)

			if tc.expectError {
				suite.Require().Error(err)
				if tc.errContains != "" {
					suite.Contains(err.Error(), tc.errContains)
				}
			} else {
				suite.NoError(err)
			}
		})
	}
}

func (suite *ConfigPublicTestSuite) TestRuleLimitFor() {
	rule := config.Rule{Target: "USER", Requests: 10, Seconds: 60}

	lim := rule.LimitFor("/api/v1/orders")

	suite.Equal("/api/v1/orders", lim.URL)
	suite.Equal(ratelimit.TargetUser, lim.Target)
	suite.True(lim.Valid())

	rule.URL = "*"
	suite.Equal("*", rule.LimitFor("/api/v1/orders").URL)
}
