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

// Package authtoken resolves opaque bearer tokens into caller identities.
package authtoken

import (
	"log/slog"

	"github.com/golang-jwt/jwt/v4"

	"github.com/authgate-io/authgate/internal/ratelimit"
)

// UserType is the caller's privilege tier. Higher values carry more
// privilege; Machine is the lowest tier and identifies service-to-service
// callers.
type UserType int

// Known user types.
const (
	UserTypeMachine UserType = iota
	UserTypeUser
	UserTypeOperator
	UserTypeAdmin
)

// AtLeast reports whether u meets the required tier.
func (u UserType) AtLeast(required UserType) bool {
	return u >= required
}

// String implements fmt.Stringer.
func (u UserType) String() string {
	switch u {
	case UserTypeMachine:
		return "machine"
	case UserTypeUser:
		return "user"
	case UserTypeOperator:
		return "operator"
	case UserTypeAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// AuthKind is the authentication flavor a route demands or a token carries.
type AuthKind string

// Known auth kinds. Sudo marks an elevated session and forces full audit
// body capture regardless of the route's audit level.
const (
	AuthKindNormal AuthKind = "NORMAL"
	AuthKindSudo   AuthKind = "SUDO"
)

// AuthToken is the resolved caller identity handed back by the authority.
type AuthToken struct {
	UserID      string               `json:"user_id"`
	SaasID      string               `json:"saas_id"`
	MchID       string               `json:"mch_id"`
	GroupID     string               `json:"group_id"`
	UserType    UserType             `json:"user_type"`
	UserName    string               `json:"user_name"`
	NickName    string               `json:"nick_name"`
	RealName    string               `json:"real_name"`
	AuthKind    AuthKind             `json:"auth_kind"`
	Permissions []string             `json:"permissions"`
	RateLimits  []ratelimit.Config   `json:"rate_limits"`
}

// HasPermission reports whether the token grants the permission code.
func (t *AuthToken) HasPermission(
	code string,
) bool {
	for _, p := range t.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

// CustomClaims is the JWT claim set issued for gateway callers.
type CustomClaims struct {
	UserID      string             `json:"uid"              validate:"required"`
	SaasID      string             `json:"sid,omitempty"`
	MchID       string             `json:"mid,omitempty"`
	GroupID     string             `json:"gid,omitempty"`
	UserType    UserType           `json:"utype"            validate:"gte=0,lte=3"`
	UserName    string             `json:"uname,omitempty"`
	NickName    string             `json:"nick,omitempty"`
	RealName    string             `json:"rname,omitempty"`
	AuthKind    AuthKind           `json:"akind,omitempty"  validate:"omitempty,oneof=NORMAL SUDO"`
	Permissions []string           `json:"perms,omitempty"`
	RateLimits  []ratelimit.Config `json:"limits,omitempty"`

	jwt.RegisteredClaims
}

// Token manages JWT generation and validation.
type Token struct {
	logger *slog.Logger
}

// New creates a new Token manager.
func New(
	logger *slog.Logger,
) *Token {
	return &Token{logger: logger}
}
