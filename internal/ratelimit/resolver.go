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

package ratelimit

// Target is the identity axis a rate-limit key is derived from.
type Target string

// Known target dimensions.
const (
	TargetNone    Target = "NONE"
	TargetIP      Target = "IP"
	TargetUser    Target = "USER"
	TargetMch     Target = "MCH"
	TargetSaaS    Target = "SAAS"
	TargetUserURI Target = "USER_URI"
	TargetMchURI  Target = "MCH_URI"
	TargetSaaSURI Target = "SAAS_URI"
)

// WildcardURL matches every request URI in a token's config list.
const WildcardURL = "*"

// Config is a single rate-limit declaration, carried either in a token's
// dynamic config list or as a route-level static declaration.
type Config struct {
	// URL the config applies to; WildcardURL applies to every route.
	URL string `json:"url"        mapstructure:"url"`
	// Target is the identity axis the key is derived from.
	Target Target `json:"target"     mapstructure:"target"`
	// Requests allowed per window.
	Requests int `json:"requests"   mapstructure:"requests"`
	// Seconds is the window length.
	Seconds int `json:"seconds"    mapstructure:"seconds"`
}

// Valid reports whether the config can actually limit anything.
func (c Config) Valid() bool {
	return c.Requests > 0 && c.Seconds > 0 &&
		c.Target != TargetNone && c.Target != "" && c.URL != ""
}

// Caller carries the identity fields keys are derived from.
type Caller struct {
	IP     string
	UserID string
	SaasID string
	MchID  string
}

// Info is a fully resolved, per-request limit: the derived key plus the
// chosen window.
type Info struct {
	Key      string
	Requests int
	Seconds  int
	Target   Target
}

// Merge layers additions on top of base: additions whose URL is not already
// present in base (exact string match) are appended. Merging a list with
// itself leaves it unchanged.
func Merge(
	base []Config,
	additions []Config,
) []Config {
	seen := make(map[string]bool, len(base))
	for _, c := range base {
		seen[c.URL] = true
	}

	out := make([]Config, 0, len(base)+len(additions))
	out = append(out, base...)
	for _, c := range additions {
		if seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		out = append(out, c)
	}
	return out
}

// Resolver chooses which limit configuration and target dimension applies to
// a given route and caller.
type Resolver struct {
	defaultConfig *Config
}

// NewResolver creates a new Resolver. defaultConfig is the process-wide
// fallback and may be nil.
func NewResolver(
	defaultConfig *Config,
) *Resolver {
	return &Resolver{defaultConfig: defaultConfig}
}

// Resolve picks the applicable limit for uri, first match wins:
//
//  1. an exact-URL entry in the token's config list
//  2. with only a wildcard entry present: the route declaration if any,
//     otherwise the wildcard's own limits
//  3. the route declaration
//  4. the process-wide default
//
// Invalid resolutions degrade to "no limiting" (ok=false) rather than error,
// so a bad config never blocks traffic.
func (r *Resolver) Resolve(
	tokenConfigs []Config,
	routeConfig *Config,
	caller Caller,
	uri string,
) (Info, bool) {
	var chosen *Config

	var wildcard *Config
	for i := range tokenConfigs {
		c := &tokenConfigs[i]
		if c.URL == uri {
			chosen = c
			break
		}
		if c.URL == WildcardURL && wildcard == nil {
			wildcard = c
		}
	}

	if chosen == nil {
		switch {
		case wildcard != nil && routeConfig != nil:
			chosen = routeConfig
		case wildcard != nil:
			chosen = wildcard
		case routeConfig != nil:
			chosen = routeConfig
		default:
			chosen = r.defaultConfig
		}
	}

	if chosen == nil {
		return Info{}, false
	}

	if chosen.Requests <= 0 || chosen.Seconds <= 0 ||
		chosen.Target == TargetNone || chosen.Target == "" {
		return Info{}, false
	}

	key, ok := deriveKey(chosen.Target, caller, uri)
	if !ok {
		return Info{}, false
	}

	return Info{
		Key:      key,
		Requests: chosen.Requests,
		Seconds:  chosen.Seconds,
		Target:   chosen.Target,
	}, true
}

// deriveKey builds the target-specific counter key. Targets whose identity
// fields are absent yield no key, which degrades to "no limiting".
func deriveKey(
	target Target,
	caller Caller,
	uri string,
) (string, bool) {
	switch target {
	case TargetIP:
		return caller.IP, caller.IP != ""
	case TargetUser:
		return caller.UserID + "@" + caller.SaasID, caller.UserID != ""
	case TargetMch:
		return caller.MchID + "|" + caller.SaasID, caller.MchID != ""
	case TargetSaaS:
		return caller.SaasID, caller.SaasID != ""
	case TargetUserURI:
		return caller.UserID + "@" + caller.SaasID + ":" + uri, caller.UserID != ""
	case TargetMchURI:
		return caller.MchID + "|" + caller.SaasID + ":" + uri, caller.MchID != ""
	case TargetSaaSURI:
		return caller.SaasID + ":" + uri, caller.SaasID != ""
	default:
		return "", false
	}
}
