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

package export_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/authgate-io/authgate/internal/audit"
	"github.com/authgate-io/authgate/internal/audit/export"
)

type ExportPublicTestSuite struct {
	suite.Suite

	logger *slog.Logger
}

func TestExportPublicTestSuite(t *testing.T) {
	suite.Run(t, new(ExportPublicTestSuite))
}

func (suite *ExportPublicTestSuite) SetupTest() {
	suite.logger = slog.Default()
}

// collectExporter records every written record in memory.
type collectExporter struct {
	opened   bool
	closed   bool
	records  []audit.Record
	openErr  error
	writeErr error
}

func (e *collectExporter) Open(_ context.Context) error {
	if e.openErr != nil {
		return e.openErr
	}
	e.opened = true
	return nil
}

func (e *collectExporter) Write(_ context.Context, rec audit.Record) error {
	if e.writeErr != nil {
		return e.writeErr
	}
	e.records = append(e.records, rec)
	return nil
}

func (e *collectExporter) Close(_ context.Context) error {
	e.closed = true
	return nil
}

func pagedFetcher(
	records []audit.Record,
) export.Fetcher {
	return func(_ context.Context, limit int, offset int) ([]audit.Record, int, error) {
		if offset >= len(records) {
			return nil, len(records), nil
		}
		end := offset + limit
		if end > len(records) {
			end = len(records)
		}
		return records[offset:end], len(records), nil
	}
}

func (suite *ExportPublicTestSuite) TestRun() {
	records := make([]audit.Record, 0, 5)
	for i := 0; i < 5; i++ {
		records = append(records, audit.Record{ID: fmt.Sprintf("rec-%d", i)})
	}

	tests := []struct {
		name         string
		batchSize    int
		wantExported int
	}{
		{
			name:         "when batch smaller than total pages through all",
			batchSize:    2,
			wantExported: 5,
		},
		{
			name:         "when batch larger than total exports in one pass",
			batchSize:    10,
			wantExported: 5,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			exporter := &collectExporter{}

			var progressCalls int
			result, err := export.Run(
				context.Background(),
				suite.logger,
				pagedFetcher(records),
				exporter,
				tc.batchSize,
				func(_ int, _ int) { progressCalls++ },
			)

			suite.NoError(err)
			suite.Equal(tc.wantExported, result.ExportedEntries)
			suite.Equal(5, result.TotalEntries)
			suite.Len(exporter.records, tc.wantExported)
			suite.True(exporter.closed)
			suite.Positive(progressCalls)
		})
	}
}

func (suite *ExportPublicTestSuite) TestRunEmptyStore() {
	exporter := &collectExporter{}

	result, err := export.Run(
		context.Background(),
		suite.logger,
		pagedFetcher(nil),
		exporter,
		10,
		nil,
	)

	suite.NoError(err)
	suite.Zero(result.ExportedEntries)
	suite.Zero(result.TotalEntries)
}

func (suite *ExportPublicTestSuite) TestRunOpenError() {
	exporter := &collectExporter{openErr: fmt.Errorf("disk full")}

	result, err := export.Run(
		context.Background(),
		suite.logger,
		pagedFetcher(nil),
		exporter,
		10,
		nil,
	)

	suite.Error(err)
	suite.Contains(err.Error(), "opening exporter")
	suite.Nil(result)
}

func (suite *ExportPublicTestSuite) TestRunWriteError() {
	exporter := &collectExporter{writeErr: fmt.Errorf("broken pipe")}

	result, err := export.Run(
		context.Background(),
		suite.logger,
		pagedFetcher([]audit.Record{{ID: "rec-0"}}),
		exporter,
		10,
		nil,
	)

	suite.Error(err)
	suite.Contains(err.Error(), "writing record")
	suite.Zero(result.ExportedEntries)
	suite.True(exporter.closed)
}
