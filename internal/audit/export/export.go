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

// Package export provides pluggable audit log export with pagination.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/authgate-io/authgate/internal/audit"
)

// Fetcher returns a page of audit records plus the total count.
type Fetcher func(
	ctx context.Context,
	limit int,
	offset int,
) ([]audit.Record, int, error)

// Exporter writes audit records to a destination.
type Exporter interface {
	// Open prepares the destination for writing.
	Open(ctx context.Context) error
	// Write emits a single record.
	Write(ctx context.Context, rec audit.Record) error
	// Close finishes the export.
	Close(ctx context.Context) error
}

// Result summarizes a completed export.
type Result struct {
	// TotalEntries is the store's total record count.
	TotalEntries int
	// ExportedEntries is how many records were written.
	ExportedEntries int
}

// ProgressFunc is called after each batch with the running exported count and total.
type ProgressFunc func(exported int, total int)

// Run paginates through audit records and writes each to the exporter.
func Run(
	ctx context.Context,
	logger *slog.Logger,
	fetcher Fetcher,
	exporter Exporter,
	batchSize int,
	onProgress ProgressFunc,
) (*Result, error) {
	if err := exporter.Open(ctx); err != nil {
		return nil, fmt.Errorf("opening exporter: %w", err)
	}

	defer func() {
		if closeErr := exporter.Close(ctx); closeErr != nil {
			logger.Error("closing exporter", slog.String("error", closeErr.Error()))
		}
	}()

	result := &Result{}
	offset := 0

	for {
		records, total, err := fetcher(ctx, batchSize, offset)
		if err != nil {
			return result, fmt.Errorf("fetching records at offset %d: %w", offset, err)
		}

		result.TotalEntries = total

		for _, rec := range records {
			if err := exporter.Write(ctx, rec); err != nil {
				return result, fmt.Errorf("writing record: %w", err)
			}
			result.ExportedEntries++
		}

		if onProgress != nil {
			onProgress(result.ExportedEntries, total)
		}

		offset += len(records)
		if offset >= total || len(records) == 0 {
			break
		}
	}

	return result, nil
}
