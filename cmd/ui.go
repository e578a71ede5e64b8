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
	"strconv"

	"github.com/authgate-io/authgate/internal/audit"
)

// auditTableHeaders returns the column headers for audit record tables.
func auditTableHeaders() []string {
	return []string{
		"ID",
		"DATE",
		"USER",
		"TYPE",
		"METHOD",
		"PATH",
		"STATUS",
		"DURATION",
	}
}

// buildAuditRows maps audit records onto table rows.
func buildAuditRows(
	records []audit.Record,
) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.ID,
			rec.RequestDate.Format("2006-01-02 15:04:05"),
			rec.UserID,
			rec.UserType,
			rec.Method,
			rec.APIURI,
			strconv.Itoa(rec.StatusCode),
			strconv.FormatInt(rec.ResponseMillis, 10) + "ms",
		})
	}
	return rows
}
