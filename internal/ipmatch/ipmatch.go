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

// Package ipmatch builds and queries sorted IP allow-lists.
//
// An allow-list is compiled once from a list of patterns into a minimal
// sorted set of inclusive address ranges, then queried with a binary search
// on every request. Built Ranges are immutable and safe for concurrent reads.
package ipmatch

import (
	"errors"
	"fmt"
	"net/netip"
	"sort"
	"strings"
)

// ErrInvalidPattern is returned by Build when a pattern cannot be parsed.
var ErrInvalidPattern = errors.New("invalid ip pattern")

// Range is an inclusive address block. Start and End are the same address
// family and Start <= End.
type Range struct {
	Start netip.Addr
	End   netip.Addr
}

// Ranges is a sorted, non-overlapping, non-adjacent list of Range.
type Ranges []Range

// Build compiles a list of patterns into a minimal sorted range cover.
//
// Accepted pattern forms:
//   - single address: "192.168.1.1", "2001:db8::1"
//   - CIDR: "192.168.1.0/24", "2001:db8::/32"
//   - trailing wildcard (IPv4 only): "192.168.*.*"
//   - explicit range: "10.0.0.1-10.0.0.100"
//
// Overlapping and adjacent ranges (within 1 of each other) are merged.
func Build(
	patterns []string,
) (Ranges, error) {
	ranges := make(Ranges, 0, len(patterns))

	for _, pattern := range patterns {
		tok := strings.TrimSpace(pattern)
		if tok == "" {
			continue
		}

		r, err := parsePattern(tok)
		if err != nil {
			return nil, err
		}

		ranges = append(ranges, r)
	}

	sort.Slice(ranges, func(i, j int) bool {
		if c := ranges[i].Start.Compare(ranges[j].Start); c != 0 {
			return c < 0
		}
		return ranges[i].End.Compare(ranges[j].End) < 0
	})

	// Single left-to-right sweep: fold a range into the previous kept range
	// when it overlaps or is directly adjacent, otherwise append.
	merged := make(Ranges, 0, len(ranges))
	for _, r := range ranges {
		if len(merged) > 0 {
			prev := &merged[len(merged)-1]
			if adjacentOrOverlapping(*prev, r) {
				if r.End.Compare(prev.End) > 0 {
					prev.End = r.End
				}
				continue
			}
		}
		merged = append(merged, r)
	}

	return merged, nil
}

// Matches reports whether ip falls inside any range. An empty list matches
// nothing.
func (r Ranges) Matches(
	ip netip.Addr,
) bool {
	target := ip.Unmap()

	lo, hi := 0, len(r)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case target.Compare(r[mid].Start) < 0:
			hi = mid - 1
		case target.Compare(r[mid].End) > 0:
			lo = mid + 1
		default:
			return true
		}
	}

	return false
}

// MatchesString parses s and reports whether it falls inside any range.
// Unparseable addresses match nothing.
func (r Ranges) MatchesString(
	s string,
) bool {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return false
	}
	return r.Matches(ip)
}

// adjacentOrOverlapping reports whether next overlaps prev or starts within
// 1 of prev.End. Ranges of different address families never merge.
func adjacentOrOverlapping(
	prev Range,
	next Range,
) bool {
	if prev.End.Is4() != next.Start.Is4() {
		return false
	}

	if next.Start.Compare(prev.End) <= 0 {
		return true
	}

	succ := prev.End.Next()
	return succ.IsValid() && next.Start.Compare(succ) == 0
}

func parsePattern(
	pattern string,
) (Range, error) {
	switch {
	case strings.Contains(pattern, "-"):
		return parseRange(pattern)
	case strings.Contains(pattern, "/"):
		return parseCIDR(pattern)
	case strings.Contains(pattern, "*"):
		return parseWildcard(pattern)
	default:
		addr, err := netip.ParseAddr(pattern)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
		addr = addr.Unmap()
		return Range{Start: addr, End: addr}, nil
	}
}

func parseRange(
	pattern string,
) (Range, error) {
	lowStr, highStr, ok := strings.Cut(pattern, "-")
	if !ok {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	low, err := netip.ParseAddr(strings.TrimSpace(lowStr))
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	high, err := netip.ParseAddr(strings.TrimSpace(highStr))
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	low, high = low.Unmap(), high.Unmap()
	if low.Is4() != high.Is4() {
		return Range{}, fmt.Errorf(
			"%w: %q mixes address families", ErrInvalidPattern, pattern,
		)
	}
	if low.Compare(high) > 0 {
		return Range{}, fmt.Errorf(
			"%w: %q start exceeds end", ErrInvalidPattern, pattern,
		)
	}

	return Range{Start: low, End: high}, nil
}

func parseCIDR(
	pattern string,
) (Range, error) {
	prefix, err := netip.ParsePrefix(pattern)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	prefix = netip.PrefixFrom(prefix.Addr().Unmap(), prefix.Bits()).Masked()

	return Range{Start: prefix.Addr(), End: prefixLast(prefix)}, nil
}

// parseWildcard handles dotted-quad patterns with trailing "*" octets, e.g.
// "10.1.*.*". The wildcard count determines the implicit mask.
func parseWildcard(
	pattern string,
) (Range, error) {
	parts := strings.Split(pattern, ".")
	if len(parts) != 4 {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	lowParts := make([]string, 4)
	highParts := make([]string, 4)
	sawWildcard := false
	for i, part := range parts {
		if part == "*" {
			sawWildcard = true
			lowParts[i] = "0"
			highParts[i] = "255"
			continue
		}
		if sawWildcard {
			return Range{}, fmt.Errorf(
				"%w: %q wildcard octets must be trailing", ErrInvalidPattern, pattern,
			)
		}
		lowParts[i] = part
		highParts[i] = part
	}

	low, err := netip.ParseAddr(strings.Join(lowParts, "."))
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	high, err := netip.ParseAddr(strings.Join(highParts, "."))
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	return Range{Start: low, End: high}, nil
}

// prefixLast returns the highest address covered by prefix.
func prefixLast(
	prefix netip.Prefix,
) netip.Addr {
	if prefix.Addr().Is4() {
		a := prefix.Addr().As4()
		for i := prefix.Bits(); i < 32; i++ {
			a[i/8] |= 1 << (7 - i%8)
		}
		return netip.AddrFrom4(a)
	}

	a := prefix.Addr().As16()
	for i := prefix.Bits(); i < 128; i++ {
		a[i/8] |= 1 << (7 - i%8)
	}
	return netip.AddrFrom16(a)
}
