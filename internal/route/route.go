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

// Package route holds the per-route authorization policy table. The table is
// populated once at process start from configuration and is read-only
// afterwards; requests for unregistered routes pass through the gateway
// untouched.
package route

import (
	"fmt"
	"strings"

	"github.com/authgate-io/authgate/internal/audit"
	"github.com/authgate-io/authgate/internal/authtoken"
	"github.com/authgate-io/authgate/internal/ratelimit"
)

// Policy is the authorization declaration for a single (uri, method) pair.
type Policy struct {
	// Name is the human-readable API name, carried into audit records.
	Name string
	// Description documents the route for operators.
	Description string
	// RequiredUserType is the minimum caller tier admitted to the route.
	RequiredUserType authtoken.UserType
	// AuthKind, when AuthKindSudo, requires an elevated session.
	AuthKind authtoken.AuthKind
	// AuditLevel selects the capture behavior for the route.
	AuditLevel audit.Level
	// RateLimit is the route's static limit declaration, nil when the
	// route declares none.
	RateLimit *ratelimit.Config
}

type key struct {
	uri    string
	method string
}

// Table maps (uri, method) to its Policy.
type Table struct {
	policies map[key]Policy
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{
		policies: make(map[key]Policy),
	}
}

// Register adds a policy for the given uri and method. Registration happens
// at startup only; duplicates and malformed entries are configuration errors.
func (t *Table) Register(
	uri string,
	method string,
	p Policy,
) error {
	if uri == "" || !strings.HasPrefix(uri, "/") {
		return fmt.Errorf("route uri must start with '/': %q", uri)
	}
	if method == "" {
		return fmt.Errorf("route method required for %q", uri)
	}
	if p.RateLimit != nil && !p.RateLimit.Valid() {
		return fmt.Errorf("invalid rate limit declaration for %q", uri)
	}

	k := key{uri: uri, method: strings.ToUpper(method)}
	if _, ok := t.policies[k]; ok {
		return fmt.Errorf("duplicate route registration: %s %s", k.method, uri)
	}

	t.policies[k] = p

	return nil
}

// Lookup returns the policy for (uri, method). The second return is false
// when the route is unregistered.
func (t *Table) Lookup(
	uri string,
	method string,
) (Policy, bool) {
	p, ok := t.policies[key{uri: uri, method: strings.ToUpper(method)}]
	return p, ok
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	return len(t.policies)
}
