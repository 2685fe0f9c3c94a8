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

package rulematch

import "testing"

func TestMatcher_Resolve_FirstMatchWins(t *testing.T) {
	m := New([]Rule{
		{Pattern: "BTC-*", Behavior: "fast_fill"},
		{Pattern: "*-USD", Behavior: "slow_fill"},
	}, "default")

	if got := m.Resolve("BTC-USD"); got != "fast_fill" {
		t.Errorf("expected first matching rule to win, got %s", got)
	}
	if got := m.Resolve("ETH-USD"); got != "slow_fill" {
		t.Errorf("expected second rule to match ETH-USD, got %s", got)
	}
}

func TestMatcher_Resolve_FallsBackToDefault(t *testing.T) {
	m := New([]Rule{{Pattern: "BTC-*", Behavior: "fast_fill"}}, "default")

	if got := m.Resolve("XRP-USD"); got != "default" {
		t.Errorf("expected default behavior for unmatched symbol, got %s", got)
	}
}

func TestMatcher_Resolve_NoRulesReturnsDefault(t *testing.T) {
	m := New(nil, "default")
	if got := m.Resolve("ANY-SYMBOL"); got != "default" {
		t.Errorf("expected default with no rules configured, got %s", got)
	}
}
