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

// Package permission evaluates a caller's token against a route's
// authorization policy. The gateway executes the catalog's verdict; it never
// invents its own rules.
package permission

import (
	"context"
	"errors"
	"net/http"

	"github.com/authgate-io/authgate/internal/authtoken"
	"github.com/authgate-io/authgate/internal/route"
)

var (
	// ErrPermissionDenied means the caller lacks the permission or tier
	// the route requires.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrElevationRequired means the route requires an elevated (sudo)
	// session and the caller's session is not elevated.
	ErrElevationRequired = errors.New("elevation required")
	// ErrPaymentRequired means the caller's subscription does not cover
	// the route.
	ErrPaymentRequired = errors.New("payment required")
	// ErrAuthorityUnavailable means the catalog could not be consulted.
	ErrAuthorityUnavailable = errors.New("permission catalog unavailable")
)

// StatusUpgradeRequired is returned when a route requires session elevation.
const StatusUpgradeRequired = http.StatusUpgradeRequired

// Status maps a permission error to its HTTP status code.
func Status(
	err error,
) int {
	switch {
	case errors.Is(err, ErrElevationRequired):
		return StatusUpgradeRequired
	case errors.Is(err, ErrPaymentRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrAuthorityUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusForbidden
	}
}

// Code derives the permission code for a route as "{uri}:{method}".
func Code(
	uri string,
	method string,
) string {
	return uri + ":" + method
}

// Catalog checks a token against a route policy. A nil return admits the
// request; a non-nil return is one of this package's sentinel errors (or
// wraps one).
type Catalog interface {
	Check(
		ctx context.Context,
		token *authtoken.AuthToken,
		policy route.Policy,
		permCode string,
	) error
}

// ensure StaticCatalog implements Catalog at compile time.
var _ Catalog = (*StaticCatalog)(nil)

// StaticCatalog evaluates the locally-known rule set: session elevation,
// caller tier, and the token's permission grants. Billing verdicts
// (ErrPaymentRequired) only originate from a remote catalog.
type StaticCatalog struct{}

// NewStaticCatalog creates a new StaticCatalog.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{}
}

// Check evaluates the policy against the token.
func (c *StaticCatalog) Check(
	_ context.Context,
	token *authtoken.AuthToken,
	policy route.Policy,
	permCode string,
) error {
	if token == nil {
		return ErrPermissionDenied
	}

	if policy.AuthKind == authtoken.AuthKindSudo &&
		token.AuthKind != authtoken.AuthKindSudo {
		return ErrElevationRequired
	}

	if !token.UserType.AtLeast(policy.RequiredUserType) {
		return ErrPermissionDenied
	}

	// A token with explicit grants must hold the route's code; a token
	// with no grants relies on tier alone.
	if len(token.Permissions) > 0 && !token.HasPermission(permCode) {
		return ErrPermissionDenied
	}

	return nil
}
