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

package session

import (
	"net"
	"testing"
	"time"

	"github.com/danielgavin-code/FixEm/order"
	"github.com/danielgavin-code/FixEm/rulematch"
	"github.com/danielgavin-code/FixEm/scenario"
	"github.com/danielgavin-code/FixEm/wire"
	"github.com/danielgavin-code/FixEm/wiretag"

	"github.com/quickfixgo/quickfix"
)

// newTestPair wires a Handler to one end of an in-memory TCP loopback
// connection and returns the other end for the test to drive.
func newTestPair(t *testing.T, behaviors map[string]scenario.Behavior, rules *rulematch.Matcher) net.Conn {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	cfg := Config{
		SenderCompID:      "FIXEM",
		TargetCompID:      "CLIENT",
		HeartBtIntSeconds: 30,
		Rules:             rules,
		Scenario:          scenario.New(behaviors),
		Store:             order.NewStore(),
	}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		NewHandler(conn, cfg).Run()
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// framers keeps one Framer per client connection, so frames that arrive
// together in a single read are returned by later readOneMessage calls
// instead of being dropped.
var framers = map[net.Conn]*wire.Framer{}

func readOneMessage(t *testing.T, conn net.Conn) *wire.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	framer, ok := framers[conn]
	if !ok {
		framer = wire.NewFramer()
		framers[conn] = framer
	}
	buf := make([]byte, 4096)
	for {
		if frame, ok := framer.Next(); ok {
			return wire.Parse(frame)
		}
		n, err := conn.Read(buf)
		if err != nil {
			t.Fatalf("failed to read reply: %v", err)
		}
		framer.Feed(buf[:n])
	}
}

func TestHandler_Logon_RepliesWithLogon(t *testing.T) {
	conn := newTestPair(t, nil, rulematch.New(nil, "default"))

	logon := wire.Build("FIX.4.2", []quickfix.Tag{35, 49, 56, 34, 52, 98, 108}, map[quickfix.Tag]string{
		35: wiretag.MsgTypeLogon, 49: "CLIENT", 56: "FIXEM", 34: "1",
		52: "20260101-00:00:00.000", 98: "0", 108: "30",
	})
	if _, err := conn.Write(logon); err != nil {
		t.Fatalf("failed to write logon: %v", err)
	}

	reply := readOneMessage(t, conn)
	if got, _ := reply.Get(wiretag.TagMsgType); got != wiretag.MsgTypeLogon {
		t.Errorf("expected Logon reply, got MsgType=%q", got)
	}
	if got, _ := reply.Get(wiretag.TagMsgSeqNum); got != "1" {
		t.Errorf("expected first outbound seq=1, got %q", got)
	}
}

func TestHandler_NewOrderSingle_MissingRequiredTagSessionRejects(t *testing.T) {
	conn := newTestPair(t, nil, rulematch.New(nil, "default"))

	nos := wire.Build("FIX.4.2", []quickfix.Tag{35, 49, 56, 34, 52, 11}, map[quickfix.Tag]string{
		35: wiretag.MsgTypeNewOrderSingle, 49: "CLIENT", 56: "FIXEM", 34: "1",
		52: "20260101-00:00:00.000", 11: "clord-1",
	})
	if _, err := conn.Write(nos); err != nil {
		t.Fatalf("failed to write NewOrderSingle: %v", err)
	}

	reply := readOneMessage(t, conn)
	if got, _ := reply.Get(wiretag.TagMsgType); got != wiretag.MsgTypeReject {
		t.Errorf("expected session Reject (35=3), got MsgType=%q", got)
	}
}

// TestHandler_PartialThenFill_ClosesOutRemainingLeaves: on a 100-qty
// order, [send:new, send:partial, send:fill, end] (no delay step) must
// yield ack -> partial(32=25,14=25,151=75) -> full(32=75,14=100,151=0),
// the last report showing the order Filled at cumQty=100/leavesQty=0.
// partial and fill are not interchangeable:
// fill always closes whatever leaves remain, however much that is.
func TestHandler_PartialThenFill_ClosesOutRemainingLeaves(t *testing.T) {
	behaviors := map[string]scenario.Behavior{
		"default": {
			Name: "default",
			Steps: []scenario.Step{
				{Kind: scenario.KindSend, Action: scenario.ActionNew},
				{Kind: scenario.KindSend, Action: scenario.ActionPartial},
				{Kind: scenario.KindSend, Action: scenario.ActionFill},
				{Kind: scenario.KindEnd},
			},
		},
	}
	conn := newTestPair(t, behaviors, rulematch.New(nil, "default"))

	nos := wire.Build("FIX.4.2", []quickfix.Tag{
		35, 49, 56, 34, 52, 11, 21, 55, 54, 38, 40, 44, 60,
	}, map[quickfix.Tag]string{
		35: wiretag.MsgTypeNewOrderSingle, 49: "CLIENT", 56: "FIXEM", 34: "1",
		52: "20260101-00:00:00.000", 11: "clord-1", 21: "1", 55: "BTC-USD",
		54: wiretag.SideBuy, 38: "100", 40: wiretag.OrdTypeLimit, 44: "100",
		60: "20260101-00:00:00.000",
	})
	if _, err := conn.Write(nos); err != nil {
		t.Fatalf("failed to write NewOrderSingle: %v", err)
	}

	ack := readOneMessage(t, conn)
	if got, _ := ack.Get(wiretag.TagOrdStatus); got != wiretag.OrdStatusNew {
		t.Fatalf("expected ack OrdStatus=New, got %q", got)
	}

	partial := readOneMessage(t, conn)
	if got, _ := partial.Get(wiretag.TagOrdStatus); got != wiretag.OrdStatusPartiallyFilled {
		t.Errorf("expected partial OrdStatus=PartiallyFilled, got %q", got)
	}
	if got, _ := partial.Get(wiretag.TagLastShares); got != "25" {
		t.Errorf("expected partial LastShares=25, got %q", got)
	}
	if got, _ := partial.Get(wiretag.TagCumQty); got != "25" {
		t.Errorf("expected partial CumQty=25, got %q", got)
	}
	if got, _ := partial.Get(wiretag.TagLeavesQty); got != "75" {
		t.Errorf("expected partial LeavesQty=75, got %q", got)
	}

	full := readOneMessage(t, conn)
	if got, _ := full.Get(wiretag.TagOrdStatus); got != wiretag.OrdStatusFilled {
		t.Errorf("expected fill OrdStatus=Filled, got %q", got)
	}
	if got, _ := full.Get(wiretag.TagLastShares); got != "75" {
		t.Errorf("expected fill LastShares=75, got %q", got)
	}
	if got, _ := full.Get(wiretag.TagCumQty); got != "100" {
		t.Errorf("expected fill CumQty=100, got %q", got)
	}
	if got, _ := full.Get(wiretag.TagLeavesQty); got != "0" {
		t.Errorf("expected fill LeavesQty=0, got %q", got)
	}
}

func TestHandler_NewOrderSingle_AcceptedRunsDefaultBehavior(t *testing.T) {
	behaviors := map[string]scenario.Behavior{
		"default": {
			Name: "default",
			Steps: []scenario.Step{
				{Kind: scenario.KindSend, Action: scenario.ActionNew},
				{Kind: scenario.KindSend, Action: scenario.ActionFullFill},
				{Kind: scenario.KindEnd},
			},
		},
	}
	conn := newTestPair(t, behaviors, rulematch.New(nil, "default"))

	nos := wire.Build("FIX.4.2", []quickfix.Tag{
		35, 49, 56, 34, 52, 11, 21, 55, 54, 38, 40, 44, 60,
	}, map[quickfix.Tag]string{
		35: wiretag.MsgTypeNewOrderSingle, 49: "CLIENT", 56: "FIXEM", 34: "1",
		52: "20260101-00:00:00.000", 11: "clord-1", 21: "1", 55: "BTC-USD",
		54: wiretag.SideBuy, 38: "10", 40: wiretag.OrdTypeLimit, 44: "100",
		60: "20260101-00:00:00.000",
	})
	if _, err := conn.Write(nos); err != nil {
		t.Fatalf("failed to write NewOrderSingle: %v", err)
	}

	first := readOneMessage(t, conn)
	if got, _ := first.Get(wiretag.TagOrdStatus); got != wiretag.OrdStatusNew {
		t.Errorf("expected first ExecutionReport OrdStatus=New, got %q", got)
	}

	second := readOneMessage(t, conn)
	if got, _ := second.Get(wiretag.TagOrdStatus); got != wiretag.OrdStatusFilled {
		t.Errorf("expected second ExecutionReport OrdStatus=Filled, got %q", got)
	}
	if got, _ := second.Get(wiretag.TagLeavesQty); got != "0" {
		t.Errorf("expected LeavesQty=0 after full fill, got %q", got)
	}
}
