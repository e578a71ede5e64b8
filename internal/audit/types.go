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

// Package audit provides request audit capture policy, records, and storage.
package audit

import (
	"context"
	"time"
)

// Level controls how much of a request/response is captured and whether the
// record is durably persisted.
type Level int

// Known audit levels, ordered by how much they capture.
const (
	// LevelNone creates no record.
	LevelNone Level = iota
	// LevelRequest captures the request body.
	LevelRequest
	// LevelResponse captures the response body.
	LevelResponse
	// LevelAll captures both bodies.
	LevelAll
	// LevelCrit captures both bodies and persists the record to durable
	// storage regardless of caller type.
	LevelCrit
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "NONE"
	case LevelRequest:
		return "REQUEST"
	case LevelResponse:
		return "RESPONSE"
	case LevelAll:
		return "ALL"
	case LevelCrit:
		return "CRIT"
	default:
		return "unknown"
	}
}

// ParseLevel maps a config string to its Level. Unknown strings map to
// LevelNone.
func ParseLevel(
	s string,
) Level {
	switch s {
	case "REQUEST":
		return LevelRequest
	case "RESPONSE":
		return LevelResponse
	case "ALL":
		return LevelAll
	case "CRIT":
		return LevelCrit
	default:
		return LevelNone
	}
}

// Record is a single request audit entry. It is created before the
// downstream call, filled in during finalize, then handed to the async
// dispatcher and discarded.
type Record struct {
	// ID is the unique identifier for this record.
	ID string `json:"id"`
	// AppInfo names the application serving the request.
	AppInfo string `json:"app_info"`
	// AppHost is the host the gateway runs on.
	AppHost string `json:"app_host"`
	// UserID is the resolved caller identity.
	UserID string `json:"user_id"`
	// SaasID is the caller's tenant.
	SaasID string `json:"saas_id,omitempty"`
	// MchID is the caller's merchant, when present.
	MchID string `json:"mch_id,omitempty"`
	// UserName is the caller's account name.
	UserName string `json:"user_name,omitempty"`
	// UserType is the caller's privilege tier.
	UserType string `json:"user_type"`
	// APIURI is the request path.
	APIURI string `json:"api_uri"`
	// APIName is the registered route name, when the route is known.
	APIName string `json:"api_name,omitempty"`
	// Method is the HTTP method.
	Method string `json:"method"`
	// UserIP is the caller's IP address.
	UserIP string `json:"user_ip"`
	// RequestDate is when the request was received.
	RequestDate time.Time `json:"request_date"`
	// RequestBody is the captured request payload, when the policy asks for it.
	RequestBody string `json:"request_body,omitempty"`
	// ResponseBody is the captured response payload, when the policy asks for it.
	ResponseBody string `json:"response_body,omitempty"`
	// StatusCode is the final HTTP status.
	StatusCode int `json:"status_code"`
	// ResponseMillis is the request latency in milliseconds.
	ResponseMillis int64 `json:"response_millis"`
	// Exception holds the downstream error message, when one occurred.
	Exception string `json:"exception,omitempty"`
}

// Store durably persists audit records.
type Store interface {
	// Save persists a record.
	Save(ctx context.Context, rec Record) error
	// Get retrieves a single record by ID.
	Get(ctx context.Context, id string) (*Record, error)
	// List retrieves records with pagination, newest first.
	List(ctx context.Context, limit int, offset int) ([]Record, int, error)
}

// Shipper sends records to the search/analytics log sink. Best effort.
type Shipper interface {
	Ship(ctx context.Context, rec Record) error
}
