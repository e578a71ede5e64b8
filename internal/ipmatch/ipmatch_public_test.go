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

package ipmatch_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/authgate-io/authgate/internal/ipmatch"
)

type IPMatchPublicTestSuite struct {
	suite.Suite
}

func TestIPMatchPublicTestSuite(t *testing.T) {
	suite.Run(t, new(IPMatchPublicTestSuite))
}

func (suite *IPMatchPublicTestSuite) TestBuild() {
	tests := []struct {
		name        string
		patterns    []string
		wantRanges  [][2]string
		expectError bool
	}{
		{
			name:       "when single address yields one-address range",
			patterns:   []string{"192.168.1.1"},
			wantRanges: [][2]string{{"192.168.1.1", "192.168.1.1"}},
		},
		{
			name:       "when cidr yields network span",
			patterns:   []string{"192.168.1.0/24"},
			wantRanges: [][2]string{{"192.168.1.0", "192.168.1.255"}},
		},
		{
			name:       "when cidr has host bits they are masked off",
			patterns:   []string{"192.168.1.77/24"},
			wantRanges: [][2]string{{"192.168.1.0", "192.168.1.255"}},
		},
		{
			name:       "when trailing wildcards yields implicit mask span",
			patterns:   []string{"10.1.*.*"},
			wantRanges: [][2]string{{"10.1.0.0", "10.1.255.255"}},
		},
		{
			name:       "when explicit range yields inclusive bounds",
			patterns:   []string{"10.0.0.1-10.0.0.100"},
			wantRanges: [][2]string{{"10.0.0.1", "10.0.0.100"}},
		},
		{
			name:       "when overlapping patterns are merged into one range",
			patterns:   []string{"192.168.1.0/24", "192.168.1.200-192.168.1.250"},
			wantRanges: [][2]string{{"192.168.1.0", "192.168.1.255"}},
		},
		{
			name:       "when ranges are adjacent within one they are merged",
			patterns:   []string{"10.0.0.0-10.0.0.9", "10.0.0.10-10.0.0.20"},
			wantRanges: [][2]string{{"10.0.0.0", "10.0.0.20"}},
		},
		{
			name:     "when ranges are disjoint they stay separate and sorted",
			patterns: []string{"10.0.1.0/24", "10.0.0.0/24"},
			wantRanges: [][2]string{
				{"10.0.0.0", "10.0.0.255"},
				{"10.0.1.0", "10.0.1.255"},
			},
		},
		{
			name:       "when ipv6 cidr yields native 128-bit span",
			patterns:   []string{"2001:db8::/126"},
			wantRanges: [][2]string{{"2001:db8::", "2001:db8::3"}},
		},
		{
			name:       "when ipv6 explicit range is accepted",
			patterns:   []string{"2001:db8::1-2001:db8::ff"},
			wantRanges: [][2]string{{"2001:db8::1", "2001:db8::ff"}},
		},
		{
			name:     "when mixed families never merge",
			patterns: []string{"10.0.0.0/8", "2001:db8::/32"},
			wantRanges: [][2]string{
				{"10.0.0.0", "10.255.255.255"},
				{"2001:db8::", "2001:db8:ffff:ffff:ffff:ffff:ffff:ffff"},
			},
		},
		{
			name:       "when blank tokens are skipped",
			patterns:   []string{" ", "192.168.1.1", ""},
			wantRanges: [][2]string{{"192.168.1.1", "192.168.1.1"}},
		},
		{
			name:        "when pattern is garbage returns error",
			patterns:    []string{"not-an-ip"},
			expectError: true,
		},
		{
			name:        "when range start exceeds end returns error",
			patterns:    []string{"10.0.0.100-10.0.0.1"},
			expectError: true,
		},
		{
			name:        "when range mixes families returns error",
			patterns:    []string{"10.0.0.1-2001:db8::1"},
			expectError: true,
		},
		{
			name:        "when wildcard octet is not trailing returns error",
			patterns:    []string{"10.*.1.1"},
			expectError: true,
		},
		{
			name:        "when cidr mask is invalid returns error",
			patterns:    []string{"192.168.1.0/33"},
			expectError: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			ranges, err := ipmatch.Build(tc.patterns)

			if tc.expectError {
				suite.Error(err)
				suite.ErrorIs(err, ipmatch.ErrInvalidPattern)
				return
			}

			suite.NoError(err)
			suite.Len(ranges, len(tc.wantRanges))
			for i, want := range tc.wantRanges {
				suite.Equal(netip.MustParseAddr(want[0]), ranges[i].Start)
				suite.Equal(netip.MustParseAddr(want[1]), ranges[i].End)
			}
		})
	}
}

func (suite *IPMatchPublicTestSuite) TestMatches() {
	tests := []struct {
		name     string
		patterns []string
		ip       string
		want     bool
	}{
		{
			name:     "when ip inside cidr matches",
			patterns: []string{"192.168.1.0/24"},
			ip:       "192.168.1.123",
			want:     true,
		},
		{
			name:     "when ip outside cidr does not match",
			patterns: []string{"192.168.1.0/24"},
			ip:       "192.168.2.1",
			want:     false,
		},
		{
			name:     "when ip equals range start matches",
			patterns: []string{"10.0.0.5-10.0.0.10"},
			ip:       "10.0.0.5",
			want:     true,
		},
		{
			name:     "when ip equals range end matches",
			patterns: []string{"10.0.0.5-10.0.0.10"},
			ip:       "10.0.0.10",
			want:     true,
		},
		{
			name:     "when list is empty nothing matches",
			patterns: nil,
			ip:       "10.0.0.1",
			want:     false,
		},
		{
			name: "when ip falls between disjoint ranges does not match",
			patterns: []string{
				"10.0.0.0/24",
				"10.0.2.0/24",
			},
			ip:   "10.0.1.50",
			want: false,
		},
		{
			name:     "when ipv6 ip inside cidr matches",
			patterns: []string{"2001:db8::/32"},
			ip:       "2001:db8:0:1::42",
			want:     true,
		},
		{
			name:     "when ipv6 ip outside cidr does not match",
			patterns: []string{"2001:db8::/32"},
			ip:       "2001:db9::1",
			want:     false,
		},
		{
			name:     "when ipv4 list never matches ipv6 caller",
			patterns: []string{"0.0.0.0/0"},
			ip:       "2001:db8::1",
			want:     false,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			ranges, err := ipmatch.Build(tc.patterns)
			suite.NoError(err)

			suite.Equal(tc.want, ranges.Matches(netip.MustParseAddr(tc.ip)))
		})
	}
}

func (suite *IPMatchPublicTestSuite) TestMatchesString() {
	ranges, err := ipmatch.Build([]string{"192.168.1.0/24"})
	suite.NoError(err)

	suite.True(ranges.MatchesString("192.168.1.123"))
	suite.False(ranges.MatchesString("192.168.2.1"))
	suite.False(ranges.MatchesString("not-an-ip"))
}

func (suite *IPMatchPublicTestSuite) TestMatchesCoversEveryAddressInSpan() {
	ranges, err := ipmatch.Build(
		[]string{"192.168.1.0/24", "192.168.1.200-192.168.1.250"},
	)
	suite.NoError(err)
	suite.Len(ranges, 1)

	for ip := netip.MustParseAddr("192.168.1.0"); ; ip = ip.Next() {
		suite.True(ranges.Matches(ip), "expected %s to match", ip)
		if ip == netip.MustParseAddr("192.168.1.255") {
			break
		}
	}

	suite.False(ranges.Matches(netip.MustParseAddr("192.168.0.255")))
	suite.False(ranges.Matches(netip.MustParseAddr("192.168.2.0")))
}
