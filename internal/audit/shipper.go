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
	"context"
	"encoding/json"
	"fmt"
)

// Publisher is the minimal messaging surface the shipper needs. Satisfied by
// *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ensure NATSShipper implements Shipper at compile time.
var _ Shipper = (*NATSShipper)(nil)

// NATSShipper ships records to the log sink by publishing them on a NATS
// subject. Fire and forget.
type NATSShipper struct {
	pub     Publisher
	subject string
}

// NewNATSShipper creates a new NATSShipper.
func NewNATSShipper(
	pub Publisher,
	subject string,
) *NATSShipper {
	return &NATSShipper{
		pub:     pub,
		subject: subject,
	}
}

// Ship publishes the record as JSON.
func (s *NATSShipper) Ship(
	_ context.Context,
	rec Record,
) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	if err := s.pub.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publish audit record: %w", err)
	}

	return nil
}
