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
	"time"

	"github.com/spf13/cobra"

	"github.com/authgate-io/authgate/internal/cli"
)

// auditGetCmd represents the auditGet command.
var auditGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a single audit record",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		id, _ := cmd.Flags().GetString("id")

		store, closeFn := openAuditStore()
		defer closeFn()

		rec, err := store.Get(ctx, id)
		if err != nil {
			logFatal("failed to get audit record", err, "id", id)
		}

		if jsonOutput {
			data, err := json.Marshal(rec)
			if err != nil {
				logFatal("failed to marshal audit record", err)
			}
			fmt.Println(string(data))
			return
		}

		fmt.Println()
		cli.PrintKV("ID", rec.ID, "Date", rec.RequestDate.Format(time.RFC3339))
		cli.PrintKV("User", rec.UserID, "Type", rec.UserType)
		cli.PrintKV("Method", rec.Method, "Path", rec.APIURI)
		cli.PrintKV(
			"Status", strconv.Itoa(rec.StatusCode),
			"Duration", strconv.FormatInt(rec.ResponseMillis, 10)+"ms",
		)
		if rec.Exception != "" {
			cli.PrintKV("Exception", rec.Exception)
		}
		if rec.RequestBody != "" {
			cli.PrintKV("Request Body", rec.RequestBody)
		}
		if rec.ResponseBody != "" {
			cli.PrintKV("Response Body", rec.ResponseBody)
		}
	},
}

func init() {
	auditCmd.AddCommand(auditGetCmd)

	auditGetCmd.Flags().StringP("id", "i", "", "Audit record ID")
	_ = auditGetCmd.MarkFlagRequired("id")
}
