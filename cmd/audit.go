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
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/authgate-io/authgate/internal/audit"
	"github.com/authgate-io/authgate/internal/cli"
)

// auditCmd represents the audit command.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit record operations",
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

// openAuditStore connects to NATS and opens the persisted audit records
// store. The returned close func releases the connection.
func openAuditStore() (*audit.KVStore, func()) {
	nc, err := cli.ConnectNATS(logger, appConfig.NATS.Connection)
	if err != nil {
		logFatal("failed to connect to nats", err)
	}

	kv, err := cli.EnsureAuditBucket(nc, appConfig.NATS.Audit)
	if err != nil {
		logFatal("failed to open audit bucket", err)
	}

	return audit.NewKVStore(logger, kv), func() {
		closeNATS(nc)
	}
}

// closeNATS drains outstanding work, then closes the connection.
func closeNATS(
	nc *nats.Conn,
) {
	if nc == nil || nc.IsClosed() {
		return
	}
	if err := nc.Drain(); err != nil {
		nc.Close()
	}
}
