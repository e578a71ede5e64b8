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

package authtoken_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/authgate-io/authgate/internal/authtoken"
	"github.com/authgate-io/authgate/internal/ratelimit"
)

type AuthTokenPublicTestSuite struct {
	suite.Suite

	token      *authtoken.Token
	signingKey string
}

func TestAuthTokenPublicTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTokenPublicTestSuite))
}

func (s *AuthTokenPublicTestSuite) SetupTest() {
	s.token = authtoken.New(slog.Default())
	s.signingKey = "test-signing-key-for-jwt-operations"
}

func (s *AuthTokenPublicTestSuite) TestGenerate() {
	tokenString, err := s.token.Generate(
		s.signingKey,
		authtoken.CustomClaims{UserID: "u-1"},
		time.Hour,
	)

	s.NoError(err)
	s.NotEmpty(tokenString)
}

func (s *AuthTokenPublicTestSuite) TestValidate() {
	tests := []struct {
		name        string
		tokenFunc   func() string
		signingKey  string
		expectError bool
		errContains string
		validate    func(*authtoken.CustomClaims)
	}{
		{
			name: "valid token",
			tokenFunc: func() string {
				t, _ := s.token.Generate(s.signingKey, authtoken.CustomClaims{
					UserID:   "u-1",
					SaasID:   "s-1",
					UserType: authtoken.UserTypeUser,
				}, time.Hour)
				return t
			},
			signingKey: s.signingKey,
			validate: func(claims *authtoken.CustomClaims) {
				s.Equal("u-1", claims.UserID)
				s.Equal("s-1", claims.SaasID)
				s.Equal(authtoken.UserTypeUser, claims.UserType)
				s.Equal("authgate", claims.Issuer)
			},
		},
		{
			name: "wrong signing key",
			tokenFunc: func() string {
				t, _ := s.token.Generate(
					s.signingKey, authtoken.CustomClaims{UserID: "u-1"}, time.Hour,
				)
				return t
			},
			signingKey:  "wrong-key",
			expectError: true,
			errContains: "signature is invalid",
		},
		{
			name: "malformed token",
			tokenFunc: func() string {
				return "not-a-valid-jwt-token"
			},
			signingKey:  s.signingKey,
			expectError: true,
			errContains: "invalid number of segments",
		},
		{
			name: "expired token",
			tokenFunc: func() string {
				t, _ := s.token.Generate(
					s.signingKey, authtoken.CustomClaims{UserID: "u-1"}, -time.Hour,
				)
				return t
			},
			signingKey:  s.signingKey,
			expectError: true,
			errContains: "expired",
		},
		{
			name: "claims fail struct validation",
			tokenFunc: func() string {
				t, _ := s.token.Generate(
					s.signingKey, authtoken.CustomClaims{}, time.Hour,
				)
				return t
			},
			signingKey:  s.signingKey,
			expectError: true,
			errContains: "UserID",
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			claims, err := s.token.Validate(tc.tokenFunc(), tc.signingKey)

			if tc.expectError {
				s.Error(err)
				s.Contains(err.Error(), tc.errContains)
				return
			}

			s.NoError(err)
			if tc.validate != nil {
				tc.validate(claims)
			}
		})
	}
}

func (s *AuthTokenPublicTestSuite) TestJWTAuthorityResolve() {
	authority := authtoken.NewJWTAuthority(slog.Default(), s.signingKey)
	ctx := context.Background()

	raw, err := s.token.Generate(s.signingKey, authtoken.CustomClaims{
		UserID:      "u-1",
		SaasID:      "s-1",
		MchID:       "m-1",
		UserType:    authtoken.UserTypeOperator,
		Permissions: []string{"/v1/orders:GET"},
	}, time.Hour)
	s.NoError(err)

	tok, err := authority.Resolve(ctx, raw)

	s.NoError(err)
	s.Equal("u-1", tok.UserID)
	s.Equal(authtoken.AuthKindNormal, tok.AuthKind)
	s.True(tok.HasPermission("/v1/orders:GET"))
	s.False(tok.HasPermission("/v1/orders:DELETE"))
}

func (s *AuthTokenPublicTestSuite) TestJWTAuthorityResolveErrors() {
	authority := authtoken.NewJWTAuthority(slog.Default(), s.signingKey)
	ctx := context.Background()

	tests := []struct {
		name       string
		raw        func() string
		wantErr    error
		wantStatus int
	}{
		{
			name:       "missing token",
			raw:        func() string { return "" },
			wantErr:    authtoken.ErrTokenMissing,
			wantStatus: 401,
		},
		{
			name:       "garbage token",
			raw:        func() string { return "garbage" },
			wantErr:    authtoken.ErrTokenInvalid,
			wantStatus: 401,
		},
		{
			name: "expired token",
			raw: func() string {
				t, _ := s.token.Generate(
					s.signingKey, authtoken.CustomClaims{UserID: "u-1"}, -time.Hour,
				)
				return t
			},
			wantErr:    authtoken.ErrTokenExpired,
			wantStatus: 498,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			tok, err := authority.Resolve(ctx, tc.raw())

			s.Nil(tok)
			s.ErrorIs(err, tc.wantErr)
			s.Equal(tc.wantStatus, authtoken.Status(err))
		})
	}
}

func (s *AuthTokenPublicTestSuite) TestJWTAuthorityMergesGlobalLimits() {
	global := []ratelimit.Config{
		{URL: "*", Target: ratelimit.TargetIP, Requests: 100, Seconds: 60},
		{URL: "/v1/orders", Target: ratelimit.TargetIP, Requests: 10, Seconds: 60},
	}
	authority := authtoken.NewJWTAuthority(
		slog.Default(), s.signingKey, authtoken.WithGlobalLimits(global),
	)

	raw, err := s.token.Generate(s.signingKey, authtoken.CustomClaims{
		UserID: "u-1",
		RateLimits: []ratelimit.Config{
			// Tenant override for the same URL wins over the global entry.
			{URL: "/v1/orders", Target: ratelimit.TargetUser, Requests: 5, Seconds: 60},
		},
	}, time.Hour)
	s.NoError(err)

	tok, err := authority.Resolve(context.Background(), raw)

	s.NoError(err)
	s.Len(tok.RateLimits, 2)
	s.Equal(ratelimit.TargetUser, tok.RateLimits[0].Target)
	s.Equal("*", tok.RateLimits[1].URL)
}

func (s *AuthTokenPublicTestSuite) TestUserTypeAtLeast() {
	s.True(authtoken.UserTypeAdmin.AtLeast(authtoken.UserTypeUser))
	s.True(authtoken.UserTypeUser.AtLeast(authtoken.UserTypeUser))
	s.False(authtoken.UserTypeMachine.AtLeast(authtoken.UserTypeUser))
}
