/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package rulematch resolves a symbol to a behavior name via an ordered
// list of glob rules (spec component C5), grounded on
// original_source/ConfigLoader.py's compileRules/fnmatch.fnmatch. Go's
// standard library path.Match implements the same shell-glob subset
// fnmatch does (*, ?, character classes) with no separator surprises
// for plain symbol strings, so no third-party glob library is pulled in
// here — the pack doesn't carry one (grep across _examples turned up no
// glob dependency), and path.Match is the direct stdlib analogue of the
// behavior being ported.
package rulematch

import "path"

// Rule is a compiled (pattern, behaviorName) pair.
type Rule struct {
	Pattern string
	Behavior string
}

// Matcher resolves symbols to behavior names via first-match-wins glob
// rules, falling back to a default behavior (spec §4.5).
type Matcher struct {
	Rules   []Rule
	Default string
}

// New returns a Matcher with the given rules (evaluated in the order
// given — first match wins) and default behavior.
func New(rules []Rule, defaultBehavior string) *Matcher {
	return &Matcher{Rules: rules, Default: defaultBehavior}
}

// Resolve returns the behavior name bound to symbol: the first rule
// whose pattern matches, or Default if none do. Matching is
// case-sensitive.
func (m *Matcher) Resolve(symbol string) string {
	for _, r := range m.Rules {
		matched, err := path.Match(r.Pattern, symbol)
		if err == nil && matched {
			return r.Behavior
		}
	}
	return m.Default
}
