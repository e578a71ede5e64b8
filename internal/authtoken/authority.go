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

package authtoken

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v4"

	"github.com/authgate-io/authgate/internal/ratelimit"
)

// Authority resolves a raw bearer token into a caller identity.
type Authority interface {
	Resolve(ctx context.Context, raw string) (*AuthToken, error)
}

// ensure JWTAuthority implements Authority at compile time.
var _ Authority = (*JWTAuthority)(nil)

// JWTAuthority verifies self-contained HMAC-signed tokens in process. Tenant
// rate-limit configs carried in the token are layered on top of the global
// config list at resolve time.
type JWTAuthority struct {
	logger     *slog.Logger
	token      *Token
	signingKey string

	// globalLimits are appended beneath the token's own configs.
	globalLimits []ratelimit.Config
}

// JWTAuthorityOption configures a JWTAuthority.
type JWTAuthorityOption func(*JWTAuthority)

// WithGlobalLimits sets the global rate-limit config list merged beneath
// every token's own list.
func WithGlobalLimits(configs []ratelimit.Config) JWTAuthorityOption {
	return func(a *JWTAuthority) { a.globalLimits = configs }
}

// NewJWTAuthority creates a new JWTAuthority.
func NewJWTAuthority(
	logger *slog.Logger,
	signingKey string,
	opts ...JWTAuthorityOption,
) *JWTAuthority {
	a := &JWTAuthority{
		logger:     logger,
		token:      New(logger),
		signingKey: signingKey,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Resolve validates raw and builds the caller identity from its claims.
func (a *JWTAuthority) Resolve(
	_ context.Context,
	raw string,
) (*AuthToken, error) {
	if raw == "" {
		return nil, ErrTokenMissing
	}

	claims, err := a.token.Validate(raw, a.signingKey)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %s", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrTokenInvalid, err)
	}

	kind := claims.AuthKind
	if kind == "" {
		kind = AuthKindNormal
	}

	return &AuthToken{
		UserID:      claims.UserID,
		SaasID:      claims.SaasID,
		MchID:       claims.MchID,
		GroupID:     claims.GroupID,
		UserType:    claims.UserType,
		UserName:    claims.UserName,
		NickName:    claims.NickName,
		RealName:    claims.RealName,
		AuthKind:    kind,
		Permissions: claims.Permissions,
		RateLimits:  ratelimit.Merge(claims.RateLimits, a.globalLimits),
	}, nil
}
