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

package wire

import "strings"

// Framer partitions a byte stream into complete FIX frames. It reads
// canonically — using the "9=" body length to locate where "10=NNN"
// should start, confirming on the trailing SOH — which correctly frames
// well-formed FIX streams.
//
// original_source/emulator/server.py's HandleClient partitioned on two
// consecutive SOH bytes ("crude message separator" per its own comment),
// which is wrong: FIX frames are single-SOH-terminated, and that
// splitter would glue together or truncate frames whenever a field
// happened to produce adjacent delimiters. Framer fixes that (spec §4.6,
// §9) but still falls back to the legacy SOH·SOH splitter for a client
// that was built against the old behavior, so interop isn't silently
// broken.
type Framer struct {
	buf []byte
}

// NewFramer returns an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends newly read bytes to the internal buffer.
func (f *Framer) Feed(data []byte) {
	f.buf = append(f.buf, data...)
}

// Next extracts the next complete frame from the buffer, if one is
// present. It returns (frame, true) and advances past the frame, or
// (nil, false) if more bytes are needed.
func (f *Framer) Next() ([]byte, bool) {
	if frame, ok := f.nextCanonical(); ok {
		return frame, true
	}
	return f.nextLegacy()
}

// nextCanonical locates a frame by its body length (tag 9) and confirms
// the frame ends in a complete "10=NNN\x01" checksum field.
func (f *Framer) nextCanonical() ([]byte, bool) {
	s := string(f.buf)

	bodyTag := "9="
	bodyStart := strings.Index(s, bodyTag)
	if bodyStart == -1 {
		return nil, false
	}
	bodyStart += len(bodyTag)
	bodyEnd := strings.IndexByte(s[bodyStart:], SOH)
	if bodyEnd == -1 {
		return nil, false
	}
	bodyLen := 0
	for _, c := range s[bodyStart : bodyStart+bodyEnd] {
		if c < '0' || c > '9' {
			return nil, false // not a canonical frame; let the legacy splitter try
		}
		bodyLen = bodyLen*10 + int(c-'0')
	}

	bodyFieldEnd := bodyStart + bodyEnd + 1
	checksumStart := bodyFieldEnd + bodyLen
	if checksumStart+3 > len(s) || s[checksumStart:checksumStart+3] != "10=" {
		return nil, false
	}
	checksumValEnd := strings.IndexByte(s[checksumStart+3:], SOH)
	if checksumValEnd == -1 {
		return nil, false
	}
	frameEnd := checksumStart + 3 + checksumValEnd + 1

	frame := f.buf[:frameEnd]
	f.buf = f.buf[frameEnd:]
	return frame, true
}

// nextLegacy splits on two consecutive SOH bytes, matching the original
// emulator's framing for clients still relying on it.
func (f *Framer) nextLegacy() ([]byte, bool) {
	doubleSOH := []byte{SOH, SOH}
	idx := indexBytes(f.buf, doubleSOH)
	if idx == -1 {
		return nil, false
	}
	frame := append(f.buf[:idx:idx], SOH) // restore the single trailing SOH a full frame needs
	f.buf = f.buf[idx+2:]
	return frame, true
}

func indexBytes(haystack, needle []byte) int {
	return strings.Index(string(haystack), string(needle))
}
