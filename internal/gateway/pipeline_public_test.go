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

package gateway_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/authgate-io/authgate/internal/audit"
	"github.com/authgate-io/authgate/internal/authtoken"
	"github.com/authgate-io/authgate/internal/gateway"
	"github.com/authgate-io/authgate/internal/ipmatch"
	"github.com/authgate-io/authgate/internal/permission"
	"github.com/authgate-io/authgate/internal/ratelimit"
	"github.com/authgate-io/authgate/internal/route"
)

const testSigningKey = "test-signing-key-for-pipeline"

type PipelinePublicTestSuite struct {
	suite.Suite

	logger       *slog.Logger
	tokenManager *authtoken.Token
	table        *route.Table
}

func TestPipelinePublicTestSuite(t *testing.T) {
	suite.Run(t, new(PipelinePublicTestSuite))
}

func (suite *PipelinePublicTestSuite) SetupTest() {
	suite.logger = slog.Default()
	suite.tokenManager = authtoken.New(suite.logger)

	suite.table = route.NewTable()
	suite.Require().NoError(suite.table.Register(
		"/api/v1/orders", "POST", route.Policy{
			Name:             "create order",
			RequiredUserType: authtoken.UserTypeUser,
			AuditLevel:       audit.LevelAll,
		},
	))
	suite.Require().NoError(suite.table.Register(
		"/admin/settings", "PUT", route.Policy{
			Name:             "update settings",
			RequiredUserType: authtoken.UserTypeAdmin,
			AuthKind:         authtoken.AuthKindSudo,
			AuditLevel:       audit.LevelCrit,
		},
	))

	suite.Require().NoError(suite.table.Register(
		"/api/v1/reports", "GET", route.Policy{
			Name:             "read reports",
			RequiredUserType: authtoken.UserTypeUser,
			RateLimit: &ratelimit.Config{
				URL:      "/api/v1/reports",
				Target:   ratelimit.TargetUser,
				Requests: 2,
				Seconds:  60,
			},
		},
	))
}

func (suite *PipelinePublicTestSuite) generateToken(
	claims authtoken.CustomClaims,
) string {
	token, err := suite.tokenManager.Generate(
		testSigningKey, claims, time.Hour,
	)
	suite.Require().NoError(err)

	return token
}

// newEcho builds an Echo instance running the pipeline chain plus a trivial
// downstream handler for every registered path.
func (suite *PipelinePublicTestSuite) newEcho(
	p *gateway.Pipeline,
) *echo.Echo {
	e := echo.New()
	e.Use(p.Middlewares()...)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}
	e.POST("/api/v1/orders", handler)
	e.PUT("/admin/settings", handler)
	e.GET("/api/v1/reports", handler)
	e.GET("/public/status", handler)
	e.GET("/metrics", handler)

	return e
}

func (suite *PipelinePublicTestSuite) newPipeline(
	opts ...gateway.PipelineOption,
) *gateway.Pipeline {
	authority := authtoken.NewJWTAuthority(suite.logger, testSigningKey)

	return gateway.NewPipeline(
		suite.logger,
		authority,
		suite.table,
		permission.NewStaticCatalog(),
		opts...,
	)
}

func (suite *PipelinePublicTestSuite) doRequest(
	e *echo.Echo,
	method string,
	path string,
	headers map[string]string,
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(`{"k":"v"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func (suite *PipelinePublicTestSuite) bearerFor(
	userType authtoken.UserType,
	kind authtoken.AuthKind,
) map[string]string {
	token := suite.generateToken(authtoken.CustomClaims{
		UserID:   "u-1",
		SaasID:   "saas-1",
		UserType: userType,
		AuthKind: kind,
	})

	return map[string]string{
		echo.HeaderAuthorization: "Bearer " + token,
	}
}

func (suite *PipelinePublicTestSuite) TestIPProtect() {
	ranges, err := ipmatch.Build([]string{"10.0.0.0/8"})
	suite.Require().NoError(err)

	p := suite.newPipeline(
		gateway.WithProtectedPaths([]string{"/admin"}, ranges),
	)
	e := suite.newEcho(p)

	tests := []struct {
		name     string
		path     string
		method   string
		callerIP string
		headers  map[string]string
		wantCode int
	}{
		{
			name:     "when protected path and caller allowed",
			path:     "/admin/settings",
			method:   http.MethodPut,
			callerIP: "10.1.2.3",
			headers:  suite.bearerFor(authtoken.UserTypeAdmin, authtoken.AuthKindSudo),
			wantCode: http.StatusOK,
		},
		{
			name:     "when protected path and caller blocked",
			path:     "/admin/settings",
			method:   http.MethodPut,
			callerIP: "192.168.1.5",
			headers:  suite.bearerFor(authtoken.UserTypeAdmin, authtoken.AuthKindSudo),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "when unprotected path any caller passes",
			path:     "/api/v1/orders",
			method:   http.MethodPost,
			callerIP: "192.168.1.5",
			headers:  suite.bearerFor(authtoken.UserTypeUser, authtoken.AuthKindNormal),
			wantCode: http.StatusOK,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			headers := map[string]string{"X-Real-IP": tc.callerIP}
			for k, v := range tc.headers {
				headers[k] = v
			}

			rec := suite.doRequest(e, tc.method, tc.path, headers)

			suite.Equal(tc.wantCode, rec.Code)
		})
	}
}

func (suite *PipelinePublicTestSuite) TestResolveToken() {
	p := suite.newPipeline()
	e := suite.newEcho(p)

	expired := func() string {
		token, err := suite.tokenManager.Generate(
			testSigningKey,
			authtoken.CustomClaims{UserID: "u-1", UserType: authtoken.UserTypeUser},
			-time.Minute,
		)
		suite.Require().NoError(err)
		return token
	}()

	tests := []struct {
		name     string
		headers  map[string]string
		wantCode int
	}{
		{
			name:     "when token valid",
			headers:  suite.bearerFor(authtoken.UserTypeUser, authtoken.AuthKindNormal),
			wantCode: http.StatusOK,
		},
		{
			name:     "when token missing",
			headers:  map[string]string{},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "when token malformed",
			headers: map[string]string{
				echo.HeaderAuthorization: "Bearer not-a-token",
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "when token expired",
			headers: map[string]string{
				echo.HeaderAuthorization: "Bearer " + expired,
			},
			wantCode: authtoken.StatusTokenExpired,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			rec := suite.doRequest(e, http.MethodPost, "/api/v1/orders", tc.headers)

			suite.Equal(tc.wantCode, rec.Code)
		})
	}
}

func (suite *PipelinePublicTestSuite) TestExemptPathsBypassTheChain() {
	p := suite.newPipeline()
	e := suite.newEcho(p)

	rec := suite.doRequest(e, http.MethodGet, "/metrics", nil)

	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *PipelinePublicTestSuite) TestUnregisteredRoutePassesThrough() {
	p := suite.newPipeline()
	e := suite.newEcho(p)

	headers := suite.bearerFor(authtoken.UserTypeMachine, authtoken.AuthKindNormal)
	rec := suite.doRequest(e, http.MethodGet, "/public/status", headers)

	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *PipelinePublicTestSuite) TestAuthorize() {
	p := suite.newPipeline()
	e := suite.newEcho(p)

	tests := []struct {
		name     string
		userType authtoken.UserType
		kind     authtoken.AuthKind
		path     string
		method   string
		wantCode int
	}{
		{
			name:     "when tier sufficient",
			userType: authtoken.UserTypeUser,
			kind:     authtoken.AuthKindNormal,
			path:     "/api/v1/orders",
			method:   http.MethodPost,
			wantCode: http.StatusOK,
		},
		{
			name:     "when tier insufficient",
			userType: authtoken.UserTypeMachine,
			kind:     authtoken.AuthKindNormal,
			path:     "/api/v1/orders",
			method:   http.MethodPost,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "when elevation missing",
			userType: authtoken.UserTypeAdmin,
			kind:     authtoken.AuthKindNormal,
			path:     "/admin/settings",
			method:   http.MethodPut,
			wantCode: http.StatusUpgradeRequired,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			headers := suite.bearerFor(tc.userType, tc.kind)
			rec := suite.doRequest(e, tc.method, tc.path, headers)

			suite.Equal(tc.wantCode, rec.Code)
		})
	}
}

// fixedLimiter denies every call with a fixed retry hint.
type fixedLimiter struct {
	decision ratelimit.Decision
	lastKey  string
}

func (l *fixedLimiter) TryAcquire(
	_ context.Context,
	key string,
	_ int,
	_ int,
	_ int,
) ratelimit.Decision {
	l.lastKey = key
	return l.decision
}

func (suite *PipelinePublicTestSuite) TestRateLimit() {
	suite.Run("when limiter denies returns 429 with retry hint", func() {
		limiter := &fixedLimiter{
			decision: ratelimit.Decision{
				Remaining:  -1,
				RetryAfter: 2 * time.Second,
			},
		}
		p := suite.newPipeline(
			gateway.WithRateLimiting(ratelimit.NewResolver(nil), limiter),
		)
		e := suite.newEcho(p)

		headers := suite.bearerFor(authtoken.UserTypeUser, authtoken.AuthKindNormal)
		rec := suite.doRequest(e, http.MethodGet, "/api/v1/reports", headers)

		suite.Equal(http.StatusTooManyRequests, rec.Code)
		suite.Equal("2", rec.Header().Get("Retry-After"))
		suite.Equal("u-1@saas-1", limiter.lastKey)
	})

	suite.Run("when local limiter exhausts the window", func() {
		local := ratelimit.NewLocal()
		p := suite.newPipeline(
			gateway.WithRateLimiting(ratelimit.NewResolver(nil), local),
		)
		e := suite.newEcho(p)

		headers := suite.bearerFor(authtoken.UserTypeUser, authtoken.AuthKindNormal)

		for i := 0; i < 2; i++ {
			rec := suite.doRequest(e, http.MethodGet, "/api/v1/reports", headers)
			suite.Equal(http.StatusOK, rec.Code)
		}

		rec := suite.doRequest(e, http.MethodGet, "/api/v1/reports", headers)
		suite.Equal(http.StatusTooManyRequests, rec.Code)
	})

	suite.Run("when route declares no limit admits", func() {
		limiter := &fixedLimiter{
			decision: ratelimit.Decision{Remaining: -1},
		}
		p := suite.newPipeline(
			gateway.WithRateLimiting(ratelimit.NewResolver(nil), limiter),
		)
		e := suite.newEcho(p)

		headers := suite.bearerFor(authtoken.UserTypeUser, authtoken.AuthKindNormal)
		rec := suite.doRequest(e, http.MethodPost, "/api/v1/orders", headers)

		suite.Equal(http.StatusOK, rec.Code)
	})
}
