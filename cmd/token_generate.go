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
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/authgate-io/authgate/internal/authtoken"
)

// TokenGenerator generates signed JWT tokens.
type TokenGenerator interface {
	Generate(
		signingKey string,
		claims authtoken.CustomClaims,
		ttl time.Duration,
	) (string, error)
}

// tokenGenerateCmd represents the tokenGenerate command.
var tokenGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new token",
	Long: `Generate a new gateway token carrying the caller's identity, privilege
tier, auth kind, and optional direct permissions.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		signingKey := appConfig.Gateway.Server.Security.SigningKey
		userID, _ := cmd.Flags().GetString("user-id")
		saasID, _ := cmd.Flags().GetString("saas-id")
		mchID, _ := cmd.Flags().GetString("mch-id")
		userName, _ := cmd.Flags().GetString("user-name")
		userTypeFlag, _ := cmd.Flags().GetString("user-type")
		authKindFlag, _ := cmd.Flags().GetString("auth-kind")
		permissions, _ := cmd.Flags().GetStringSlice("permissions")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		userType, _ := parseUserType(userTypeFlag)
		authKind, _ := parseAuthKind(authKindFlag)

		claims := authtoken.CustomClaims{
			UserID:      userID,
			SaasID:      saasID,
			MchID:       mchID,
			UserName:    userName,
			UserType:    userType,
			AuthKind:    authKind,
			Permissions: permissions,
		}

		var tm TokenGenerator = authtoken.New(logger)
		token, err := tm.Generate(signingKey, claims, ttl)
		if err != nil {
			logFatal("failed to generate token", err)
		}

		logger.Info(
			"generated token",
			slog.String("token", token),
			slog.String("user_id", userID),
			slog.String("user_type", userType.String()),
		)
		if len(permissions) > 0 {
			logger.Info(
				"token permissions",
				slog.String("permissions", strings.Join(permissions, ",")),
			)
		}
	},
}

func init() {
	tokenCmd.AddCommand(tokenGenerateCmd)

	tokenGenerateCmd.PersistentFlags().
		StringP("user-id", "u", "", "Caller identity the token is issued for")
	tokenGenerateCmd.PersistentFlags().
		StringP("saas-id", "s", "", "Tenant the caller belongs to")
	tokenGenerateCmd.PersistentFlags().
		StringP("mch-id", "m", "", "Merchant the caller belongs to")
	tokenGenerateCmd.PersistentFlags().
		StringP("user-name", "n", "", "Caller account name, carried into audit records")
	tokenGenerateCmd.PersistentFlags().
		StringP("user-type", "t", "user", "Privilege tier (machine, user, operator, admin)")
	tokenGenerateCmd.PersistentFlags().
		StringP("auth-kind", "k", "NORMAL", "Auth kind (NORMAL or SUDO)")
	tokenGenerateCmd.PersistentFlags().
		StringSliceP("permissions", "p", []string{},
			"Direct permission codes in uri:METHOD form")
	tokenGenerateCmd.PersistentFlags().
		Duration("ttl", 24*time.Hour, "Token lifetime")

	_ = tokenGenerateCmd.MarkPersistentFlagRequired("user-id")

	tokenGenerateCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		userTypeFlag, _ := cmd.Flags().GetString("user-type")
		if _, err := parseUserType(userTypeFlag); err != nil {
			logFatal("invalid user type", err, "allowed", "machine, user, operator, admin")
		}

		authKindFlag, _ := cmd.Flags().GetString("auth-kind")
		if _, err := parseAuthKind(authKindFlag); err != nil {
			logFatal("invalid auth kind", err, "allowed", "NORMAL, SUDO")
		}
	}
}
