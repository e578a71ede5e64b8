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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/authgate-io/authgate/internal/audit/export"
	"github.com/authgate-io/authgate/internal/cli"
)

var (
	auditExportOutput string
	auditExportType   string
	auditExportBatch  int
)

// auditExportCmd represents the auditExport command.
var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit records to a file",
	Long: `Export all persisted audit records to a file for long-term retention.

Paginates through the audit store and writes each record as a JSON line
(JSONL format).
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		var exporter export.Exporter
		switch auditExportType {
		case "file":
			exporter = export.NewFileExporter(appFs, auditExportOutput)
		default:
			logFatal(
				"unsupported export type",
				fmt.Errorf("type %q is not supported, use \"file\"", auditExportType),
			)
		}

		store, closeFn := openAuditStore()
		defer closeFn()

		result, err := export.Run(
			ctx,
			logger,
			store.List,
			exporter,
			auditExportBatch,
			nil,
		)
		if err != nil {
			logFatal("failed to export audit records", err)
		}

		fmt.Println()
		cli.PrintKV(
			"Exported", strconv.Itoa(result.ExportedEntries),
			"Total", strconv.Itoa(result.TotalEntries),
		)
		cli.PrintKV("Output", auditExportOutput)
	},
}

func init() {
	auditCmd.AddCommand(auditExportCmd)
	auditExportCmd.Flags().
		StringVar(&auditExportOutput, "output", "", "Output file path (required)")
	auditExportCmd.Flags().
		StringVar(&auditExportType, "type", "file", "Export backend type")
	auditExportCmd.Flags().
		IntVar(&auditExportBatch, "batch-size", 100, "Records fetched per page")
	_ = auditExportCmd.MarkFlagRequired("output")
}
