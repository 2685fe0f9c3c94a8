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

// Package schema holds the required/optional/conditional tag tables the
// certification validator (spec component C2/C8) checks captured FIX
// messages against. Tables are grounded on
// original_source/cert/validator.py's Validate* methods, one table per
// MsgType.
package schema

import (
	"sort"

	"github.com/quickfixgo/quickfix"
)

// Pair is a conditional tag pair: (TagA ∈ msg) XOR (TagB ∈ msg) is a
// violation.
type Pair struct {
	A, B quickfix.Tag
}

// Table describes one MsgType's schema.
type Table struct {
	Label        string
	Required     []quickfix.Tag
	Optional     []quickfix.Tag
	Conditionals []Pair
	Custom       []quickfix.Tag // extra tags allowed at runtime, per MsgType
}

// Allowed returns the full set of tags a message of this type may carry.
func (t Table) Allowed() map[quickfix.Tag]bool {
	allowed := make(map[quickfix.Tag]bool, len(t.Required)+len(t.Optional)+len(t.Custom))
	for _, tag := range t.Required {
		allowed[tag] = true
	}
	for _, tag := range t.Optional {
		allowed[tag] = true
	}
	for _, tag := range t.Custom {
		allowed[tag] = true
	}
	return allowed
}

func tags(nums ...int) []quickfix.Tag {
	out := make([]quickfix.Tag, len(nums))
	for i, n := range nums {
		out[i] = quickfix.Tag(n)
	}
	return out
}

// Tables maps MsgType (tag 35) to its Table. Custom-allowed tags are
// extensible at runtime (spec §6): callers may append to a Table's
// Custom slice before validating.
var Tables = map[string]Table{
	"A": {
		Label:        "Logon",
		Required:     tags(8, 9, 35, 49, 56, 34, 52, 98, 108, 10),
		Optional:     tags(95, 96, 141, 553, 554, 1137),
		Conditionals: []Pair{{95, 96}},
	},
	"5": {
		Label:    "Logout",
		Required: tags(8, 9, 35, 49, 56, 34, 52, 10),
		Optional: tags(58),
	},
	"D": {
		Label:        "NewOrderSingle",
		Required:     tags(8, 9, 35, 49, 56, 34, 52, 11, 21, 55, 54, 38, 40, 60, 10),
		Optional:     tags(59, 47, 58, 18, 44, 15, 100, 207, 848, 849, 99, 110, 111),
		Conditionals: []Pair{{48, 22}, {95, 96}},
		Custom:       tags(44, 9140),
	},
	"8": {
		Label:        "ExecutionReport",
		Required:     tags(8, 9, 35, 49, 56, 34, 52, 11, 17, 150, 39, 55, 54, 38, 40, 44, 14, 6, 10),
		Optional:     tags(32, 31, 29, 37, 198, 75, 105, 60, 151, 100, 207, 848, 849, 15),
		Conditionals: []Pair{{48, 22}, {95, 96}},
		Custom:       tags(20),
	},
}

// Lookup returns the Table for a MsgType and whether one exists.
func Lookup(msgType string) (Table, bool) {
	t, ok := Tables[msgType]
	return t, ok
}

// SortedTags returns tags sorted ascending — used when rendering a
// stable, human-readable list of missing/unexpected tags.
func SortedTags(in map[quickfix.Tag]bool) []quickfix.Tag {
	out := make([]quickfix.Tag, 0, len(in))
	for t := range in {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
