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
	"errors"
	"net/http"
)

// Resolution failures reported by an Authority. All are terminal for the
// current request.
var (
	// ErrTokenMissing means no bearer token was supplied.
	ErrTokenMissing = errors.New("token missing")
	// ErrTokenInvalid means the token failed parsing or signature checks.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired means the token was once valid but has expired.
	ErrTokenExpired = errors.New("token expired")
	// ErrAuthorityUnavailable means the authority could not be reached.
	// Verification fails closed: the caller is denied.
	ErrAuthorityUnavailable = errors.New("token authority unavailable")
)

// StatusTokenExpired is the non-standard status reported for expired tokens.
const StatusTokenExpired = 498

// Status maps a resolution failure to its HTTP status code.
func Status(
	err error,
) int {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return StatusTokenExpired
	case errors.Is(err, ErrAuthorityUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnauthorized
	}
}
