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

package audit

import (
	"github.com/authgate-io/authgate/internal/authtoken"
)

// Plan is the capture decision for a single request.
type Plan struct {
	// CreateRecord allocates a Record for the request.
	CreateRecord bool
	// CaptureRequest retains the request body for the record.
	CaptureRequest bool
	// CaptureResponse retains the response body for the record.
	CaptureResponse bool
	// Persist saves the record to durable storage in addition to shipping
	// it to the log sink.
	Persist bool
}

// Decide evaluates the capture decision table for a route's audit level and
// the resolved caller.
//
// Machine-to-machine callers are suppressed below LevelCrit so that pure
// service traffic does not flood storage, while human-initiated actions are
// captured even at minimal configured levels. An elevated (sudo) session
// forces both-body capture at any level above LevelNone; persistence still
// follows the LevelCrit rule.
func Decide(
	level Level,
	kind authtoken.AuthKind,
	userType authtoken.UserType,
) Plan {
	if level == LevelNone {
		return Plan{}
	}

	sudo := kind == authtoken.AuthKindSudo
	create := userType > authtoken.UserTypeMachine || level == LevelCrit || sudo
	if !create {
		return Plan{}
	}

	return Plan{
		CreateRecord: true,
		CaptureRequest: sudo || level == LevelRequest ||
			level == LevelAll || level == LevelCrit,
		CaptureResponse: sudo || level == LevelResponse ||
			level == LevelAll || level == LevelCrit,
		Persist: level == LevelCrit,
	}
}
