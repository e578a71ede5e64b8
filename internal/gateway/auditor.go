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

package gateway

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/authgate-io/authgate/internal/audit"
	"github.com/authgate-io/authgate/internal/authtoken"
	"github.com/authgate-io/authgate/internal/route"
)

// maxBodyCapture bounds retained request/response bodies per record.
const maxBodyCapture = 64 << 10

// Auditor builds audit records for admitted requests and hands them to the
// background dispatcher at finalize.
type Auditor struct {
	dispatcher *audit.Dispatcher
	appInfo    string
	appHost    string
}

// NewAuditor creates a new Auditor.
func NewAuditor(
	dispatcher *audit.Dispatcher,
	appInfo string,
	appHost string,
) *Auditor {
	return &Auditor{
		dispatcher: dispatcher,
		appInfo:    appInfo,
		appHost:    appHost,
	}
}

// Capture evaluates the route's capture plan, wraps bodies as the plan
// requires, invokes next, and finalizes the record on every exit path. A
// panic in the handler still finalizes before propagating.
func (a *Auditor) Capture(
	c echo.Context,
	policy route.Policy,
	token *authtoken.AuthToken,
	next echo.HandlerFunc,
) error {
	plan := audit.Decide(policy.AuditLevel, token.AuthKind, token.UserType)
	if !plan.CreateRecord {
		return next(c)
	}

	req := c.Request()
	start := time.Now()

	rec := audit.Record{
		ID:          uuid.Must(uuid.NewV7()).String(),
		AppInfo:     a.appInfo,
		AppHost:     a.appHost,
		UserID:      token.UserID,
		SaasID:      token.SaasID,
		MchID:       token.MchID,
		UserName:    token.UserName,
		UserType:    token.UserType.String(),
		APIURI:      req.URL.Path,
		APIName:     policy.Name,
		Method:      req.Method,
		UserIP:      c.RealIP(),
		RequestDate: start,
	}

	if plan.CaptureRequest && req.Body != nil {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyCapture))
		if err == nil {
			rec.RequestBody = string(body)
			req.Body = io.NopCloser(io.MultiReader(
				bytes.NewReader(body), req.Body,
			))
		}
	}

	var resBuf *bytes.Buffer
	if plan.CaptureResponse {
		resBuf = new(bytes.Buffer)
		c.Response().Writer = &captureWriter{
			ResponseWriter: c.Response().Writer,
			buf:            resBuf,
		}
	}

	var handlerErr error
	defer func() {
		rec.ResponseMillis = time.Since(start).Milliseconds()
		rec.StatusCode = c.Response().Status

		if handlerErr != nil {
			rec.Exception = handlerErr.Error()
			var he *echo.HTTPError
			if errors.As(handlerErr, &he) {
				rec.StatusCode = he.Code
			} else {
				rec.StatusCode = http.StatusInternalServerError
			}
		}

		if r := recover(); r != nil {
			rec.Exception = fmt.Sprintf("panic: %v", r)
			rec.StatusCode = http.StatusInternalServerError
			if resBuf != nil {
				rec.ResponseBody = resBuf.String()
			}
			a.dispatcher.Dispatch(rec, plan.Persist)
			panic(r)
		}

		if resBuf != nil {
			rec.ResponseBody = resBuf.String()
		}
		a.dispatcher.Dispatch(rec, plan.Persist)
	}()

	handlerErr = next(c)
	return handlerErr
}

// captureWriter tees response bytes into a bounded buffer.
type captureWriter struct {
	http.ResponseWriter
	buf *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.buf.Len() < maxBodyCapture {
		remain := maxBodyCapture - w.buf.Len()
		if remain > len(b) {
			remain = len(b)
		}
		w.buf.Write(b[:remain])
	}
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
