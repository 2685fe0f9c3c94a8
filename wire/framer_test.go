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

import (
	"testing"

	"github.com/quickfixgo/quickfix"
)

func TestFramer_ExtractsSingleCanonicalFrame(t *testing.T) {
	frame := Build("FIX.4.2", []quickfix.Tag{35}, map[quickfix.Tag]string{35: "A"})

	f := NewFramer()
	f.Feed(frame)

	got, ok := f.Next()
	if !ok {
		t.Fatal("expected a complete frame")
	}
	if string(got) != string(frame) {
		t.Errorf("got %q, want %q", got, frame)
	}
	if _, ok := f.Next(); ok {
		t.Error("expected no further frames")
	}
}

func TestFramer_ExtractsFrameAcrossMultipleFeeds(t *testing.T) {
	frame := Build("FIX.4.2", []quickfix.Tag{35}, map[quickfix.Tag]string{35: "D"})

	f := NewFramer()
	f.Feed(frame[:5])
	if _, ok := f.Next(); ok {
		t.Fatal("did not expect a complete frame from a partial feed")
	}
	f.Feed(frame[5:])

	got, ok := f.Next()
	if !ok {
		t.Fatal("expected a complete frame once the remaining bytes arrive")
	}
	if string(got) != string(frame) {
		t.Errorf("got %q, want %q", got, frame)
	}
}

func TestFramer_ExtractsTwoQueuedFrames(t *testing.T) {
	frameA := Build("FIX.4.2", []quickfix.Tag{35}, map[quickfix.Tag]string{35: "A"})
	frameB := Build("FIX.4.2", []quickfix.Tag{35}, map[quickfix.Tag]string{35: "0"})

	f := NewFramer()
	f.Feed(frameA)
	f.Feed(frameB)

	got1, ok := f.Next()
	if !ok || string(got1) != string(frameA) {
		t.Fatalf("first frame = %q, want %q", got1, frameA)
	}
	got2, ok := f.Next()
	if !ok || string(got2) != string(frameB) {
		t.Fatalf("second frame = %q, want %q", got2, frameB)
	}
}
