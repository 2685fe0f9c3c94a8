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

// Package wire implements the FIX 4.2 wire codec (spec component C1):
// framing, tag=value parsing, checksum, and body-length computation.
//
// Parsing never fails. An unparseable frame yields an empty Message plus
// a logged warning — protocol framing errors are isolated to the single
// frame, never propagated (spec §7.3).
package wire

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/quickfixgo/quickfix"
)

// SOH is the FIX field separator, ASCII 0x01.
const SOH = '\x01'

// Message is an ordered set of (tag, value) pairs: a repeated tag keeps
// its first position and its last value. Values is keyed
// by tag for O(1) lookup; Order preserves the sequence tags were seen
// in (or, for a built message, the sequence the caller supplied), since
// tag 8/9/35 occupy fixed positions and logs read naturally in wire
// order.
type Message struct {
	Values map[quickfix.Tag]string
	Order  []quickfix.Tag
	Raw    string // the original frame, for logging/certification
}

// NewMessage returns an empty Message ready for Set.
func NewMessage() *Message {
	return &Message{Values: make(map[quickfix.Tag]string)}
}

// Get returns a tag's value and whether it was present.
func (m *Message) Get(tag quickfix.Tag) (string, bool) {
	v, ok := m.Values[tag]
	return v, ok
}

// GetOr returns a tag's value or def if absent.
func (m *Message) GetOr(tag quickfix.Tag, def string) string {
	if v, ok := m.Values[tag]; ok {
		return v
	}
	return def
}

// Has reports whether tag is present.
func (m *Message) Has(tag quickfix.Tag) bool {
	_, ok := m.Values[tag]
	return ok
}

// Set assigns a field, appending it to Order only the first time the
// tag is seen (re-setting a tag updates its value in place).
func (m *Message) Set(tag quickfix.Tag, value string) {
	if _, exists := m.Values[tag]; !exists {
		m.Order = append(m.Order, tag)
	}
	m.Values[tag] = value
}

// Parse splits a raw SOH-delimited FIX frame into a Message. Missing
// "=" in a field is silently dropped, matching the behavior of
// original_source/emulator/messageUtils.py's ParseFixMessage. Parsing
// never returns an error: unparseable input yields a Message with no
// fields, and the caller is expected to log the raw bytes.
func Parse(raw []byte) *Message {
	return parseDelimited(string(raw), string(SOH))
}

// ParseLine parses one line from a captured log. It accepts SOH as the
// primary delimiter, falling back to "|" when SOH is absent — the
// convention FIX logs get re-saved in when captured through tools that
// can't round-trip raw control bytes (spec §4.1, certification ingest).
func ParseLine(line string) *Message {
	delim := string(SOH)
	if strings.Contains(line, "|") && !strings.ContainsRune(line, SOH) {
		delim = "|"
	}
	return parseDelimited(line, delim)
}

func parseDelimited(raw, delim string) *Message {
	m := NewMessage()
	m.Raw = raw

	fields := strings.Split(strings.TrimRight(raw, delim), delim)
	for _, field := range fields {
		if field == "" {
			continue
		}
		eq := strings.IndexByte(field, '=')
		if eq == -1 {
			log.Printf("wire: dropping field with no '=': %q", field)
			continue
		}
		tagStr, value := field[:eq], field[eq+1:]
		tagNum, err := strconv.Atoi(tagStr)
		if err != nil {
			log.Printf("wire: dropping field with non-numeric tag: %q", field)
			continue
		}
		m.Set(quickfix.Tag(tagNum), value)
	}
	return m
}

// Build serializes fields (tags 8, 9, and 10 are computed, never taken
// from the map) into a complete FIX frame: 8=FIX.4.2, 9=<bodyLength>,
// the body in the order tags are supplied, then 10=<checksum>.
//
// Build has no error conditions.
func Build(beginString string, order []quickfix.Tag, values map[quickfix.Tag]string) []byte {
	var body strings.Builder
	for _, tag := range order {
		if tag == wireReservedBegin || tag == wireReservedBodyLen || tag == wireReservedChecksum {
			continue
		}
		v, ok := values[tag]
		if !ok {
			continue
		}
		fmt.Fprintf(&body, "%d=%s%c", tag, v, SOH)
	}

	bodyStr := body.String()
	header := fmt.Sprintf("8=%s%c9=%d%c", beginString, SOH, len(bodyStr), SOH)
	withoutChecksum := header + bodyStr

	checksum := Checksum([]byte(withoutChecksum))
	full := fmt.Sprintf("%s10=%03d%c", withoutChecksum, checksum, SOH)
	return []byte(full)
}

const (
	wireReservedBegin    = quickfix.Tag(8)
	wireReservedBodyLen  = quickfix.Tag(9)
	wireReservedChecksum = quickfix.Tag(10)
)

// Checksum computes the FIX checksum: the sum of every byte in message
// (up to but excluding the "10=" field), mod 256. It sums raw bytes, not
// decoded runes, so multi-byte UTF-8 tag values checksum the way the FIX
// spec requires — original_source/emulator/messageUtils.py summed
// Python's UTF-8-decoded bytearray, which happens to agree for ASCII
// payloads but diverges once a tag value isn't pure ASCII; this is the
// byte-wise sum spec §9 calls for.
func Checksum(message []byte) int {
	sum := 0
	for _, b := range message {
		sum += int(b)
	}
	return sum % 256
}
