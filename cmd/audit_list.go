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
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/authgate-io/authgate/internal/cli"
)

var (
	auditListLimit  int
	auditListOffset int
)

// auditListCmd represents the auditList command.
var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted audit records",
	Long: `List persisted audit records with pagination, newest first.

Displays a table of recorded API activity including caller, method, path,
response status, and duration.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		store, closeFn := openAuditStore()
		defer closeFn()

		records, total, err := store.List(ctx, auditListLimit, auditListOffset)
		if err != nil {
			logFatal("failed to list audit records", err)
		}

		if jsonOutput {
			data, err := json.Marshal(records)
			if err != nil {
				logFatal("failed to marshal audit records", err)
			}
			fmt.Println(string(data))
			return
		}

		fmt.Println()
		cli.PrintKV("Total", strconv.Itoa(total))

		if len(records) == 0 {
			fmt.Println("  No audit records found.")
			return
		}

		cli.PrintStyledTable([]cli.Section{
			{
				Title:   "Audit Records",
				Headers: auditTableHeaders(),
				Rows:    buildAuditRows(records),
			},
		})
	},
}

func init() {
	auditCmd.AddCommand(auditListCmd)
	auditListCmd.Flags().
		IntVar(&auditListLimit, "limit", 20, "Maximum number of records to return")
	auditListCmd.Flags().IntVar(&auditListOffset, "offset", 0, "Number of records to skip")
}
