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
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/authgate-io/authgate/internal/audit"
	"github.com/authgate-io/authgate/internal/authtoken"
	"github.com/authgate-io/authgate/internal/cli"
	"github.com/authgate-io/authgate/internal/gateway"
	"github.com/authgate-io/authgate/internal/ipmatch"
	"github.com/authgate-io/authgate/internal/permission"
)

// compositeLifecycle manages multiple Lifecycle components, starting them
// in order and stopping them in reverse. Reverse-order stop lets the server
// finish draining requests while the audit dispatcher is still accepting
// records.
type compositeLifecycle struct {
	components []cli.Lifecycle
}

func (c *compositeLifecycle) Start() {
	for _, comp := range c.components {
		comp.Start()
	}
}

func (c *compositeLifecycle) Stop(ctx context.Context) {
	for i := len(c.components) - 1; i >= 0; i-- {
		c.components[i].Stop(ctx)
	}
}

// dispatcherLifecycle adapts the audit dispatcher to the Lifecycle contract.
type dispatcherLifecycle struct {
	d *audit.Dispatcher
}

func (l *dispatcherLifecycle) Start() { l.d.Start() }

func (l *dispatcherLifecycle) Stop(_ context.Context) { l.d.Stop() }

// gatewayStartCmd represents the gatewayStart command.
var gatewayStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gateway server",
	Long: `Start the authorization gateway.

Every inbound request flows through the enforcement chain (IP protection,
token verification, route permissions, rate limiting, audit capture) before
reaching its handler. Shuts down gracefully on SIGINT/SIGTERM.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		gwConfig := appConfig.Gateway

		allowList, err := ipmatch.Build(gwConfig.Protected.AllowList)
		if err != nil {
			logFatal("failed to build ip allow list", err)
		}

		table := buildRouteTable(logger, gwConfig.Routes)
		limiter, limiterCleanup := buildLimiter(
			logger.With("component", "ratelimit"), gwConfig, appConfig.Redis,
		)

		bundle := setupAuditDispatcher(
			logger.With("component", "audit"), appConfig,
			audit.WithRegisterer(prometheus.DefaultRegisterer),
		)

		authority := authtoken.NewJWTAuthority(
			logger,
			gwConfig.Server.Security.SigningKey,
			authtoken.WithGlobalLimits(globalLimits(gwConfig.RateLimit.Global)),
		)

		appInfo, appHost := appIdentity(gwConfig)

		pipelineOpts := []gateway.PipelineOption{
			gateway.WithProtectedPaths(gwConfig.Protected.PathPrefixes, allowList),
			gateway.WithRateLimiting(buildResolver(gwConfig.RateLimit), limiter),
			gateway.WithAuditor(gateway.NewAuditor(bundle.dispatcher, appInfo, appHost)),
			gateway.WithPipelineRegisterer(prometheus.DefaultRegisterer),
		}
		if h := gwConfig.Server.Security.TokenHeader; h != "" {
			pipelineOpts = append(pipelineOpts, gateway.WithTokenHeader(h))
		}

		pipeline := gateway.NewPipeline(
			logger,
			authority,
			table,
			permission.NewStaticCatalog(),
			pipelineOpts...,
		)

		server := gateway.New(
			appConfig,
			logger.With("component", "gateway"),
			pipeline,
			gateway.WithMetricsHandler(promhttp.Handler(), "/metrics"),
		)

		composite := &compositeLifecycle{
			components: []cli.Lifecycle{
				&dispatcherLifecycle{d: bundle.dispatcher},
				server,
			},
		}

		composite.Start()
		cli.RunServer(ctx, composite, cli.DefaultShutdownTimeout, func() {
			if limiterCleanup != nil {
				limiterCleanup()
			}
			bundle.close()
		})
	},
}

func init() {
	gatewayCmd.AddCommand(gatewayStartCmd)
}
