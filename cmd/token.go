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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/authgate-io/authgate/internal/authtoken"
)

// tokenCmd represents the token command.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Token operations",
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

// userTypeNames maps CLI flag values to privilege tiers.
var userTypeNames = map[string]authtoken.UserType{
	"machine":  authtoken.UserTypeMachine,
	"user":     authtoken.UserTypeUser,
	"operator": authtoken.UserTypeOperator,
	"admin":    authtoken.UserTypeAdmin,
}

// parseUserType maps a flag value to its tier.
func parseUserType(
	s string,
) (authtoken.UserType, error) {
	ut, ok := userTypeNames[s]
	if !ok {
		return 0, fmt.Errorf("unsupported user type: %s", s)
	}
	return ut, nil
}

// parseAuthKind maps a flag value to its auth kind.
func parseAuthKind(
	s string,
) (authtoken.AuthKind, error) {
	switch s {
	case "", string(authtoken.AuthKindNormal):
		return authtoken.AuthKindNormal, nil
	case string(authtoken.AuthKindSudo):
		return authtoken.AuthKindSudo, nil
	default:
		return "", fmt.Errorf("unsupported auth kind: %s", s)
	}
}
