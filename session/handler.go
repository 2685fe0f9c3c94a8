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

// Package session implements the per-connection FIX session state
// machine (spec component C6): one Handler per accepted TCP connection,
// reading frames off the wire, validating and dispatching them, and
// driving the order lifecycle through the scenario engine.
//
// There is no resend/gap-fill and no test-request/heartbeat-monitor
// timer — original_source/emulator/server.py never implemented either,
// and spec §1 keeps them out of scope. What this package does fix,
// relative to that original, is the outbound sequence number: one
// monotonic per-connection counter starting at 1, not the echo of the
// inbound MsgSeqNum the Python emulator computed (spec §4.6, §9).
package session

import (
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"

	"github.com/danielgavin-code/FixEm/fixdecimal"
	"github.com/danielgavin-code/FixEm/order"
	"github.com/danielgavin-code/FixEm/scenario"
	"github.com/danielgavin-code/FixEm/wire"
	"github.com/danielgavin-code/FixEm/wiretag"
)

// Handler owns one accepted connection end to end: reading, validating,
// dispatching, and replying. It is not safe for concurrent use from
// more than one goroutine — Acceptor runs exactly one per connection.
type Handler struct {
	conn   net.Conn
	cfg    Config
	connID string

	framer *wire.Framer

	mu          sync.Mutex // guards outboundSeq and conn writes
	outboundSeq int
	peerCompID  string
	loggedOn    bool
}

// NewHandler returns a Handler ready to Run against conn.
func NewHandler(conn net.Conn, cfg Config) *Handler {
	return &Handler{
		conn:        conn,
		cfg:         cfg,
		connID:      conn.RemoteAddr().String(),
		framer:      wire.NewFramer(),
		outboundSeq: 1,
	}
}

// Run reads frames from the connection until it closes or a Logout
// completes the session. It blocks the calling goroutine for the
// connection's lifetime, including any scenario delay steps that block
// synchronously (spec §5) — Acceptor is expected to call Run in its own
// goroutine per connection.
func (h *Handler) Run() {
	if h.cfg.Recorder != nil {
		h.cfg.Recorder.Connect(h.connID, h.connID)
	}
	defer func() {
		if h.cfg.Recorder != nil {
			h.cfg.Recorder.Disconnect(h.connID)
		}
		h.conn.Close()
	}()

	buf := make([]byte, 4096)
	for {
		n, err := h.conn.Read(buf)
		if n > 0 {
			h.framer.Feed(buf[:n])
			for {
				frame, ok := h.framer.Next()
				if !ok {
					break
				}
				h.handleFrame(frame)
			}
		}
		if err != nil {
			log.Printf("[session %s] connection closed: %v", h.connID, err)
			return
		}
	}
}

func (h *Handler) handleFrame(raw []byte) {
	msg := wire.Parse(raw)
	if h.cfg.Recorder != nil {
		h.cfg.Recorder.Frame(h.connID, "in", msg.Raw)
	}

	msgType, ok := msg.Get(wiretag.TagMsgType)
	if !ok {
		log.Printf("[session %s] dropping frame with no MsgType: %q", h.connID, msg.Raw)
		return
	}

	switch msgType {
	case wiretag.MsgTypeLogon:
		h.handleLogon(msg)
	case wiretag.MsgTypeHeartbeat:
		h.handleHeartbeat(msg)
	case wiretag.MsgTypeLogout:
		h.handleLogout(msg)
	case wiretag.MsgTypeNewOrderSingle:
		h.handleNewOrderSingle(msg)
	case wiretag.MsgTypeOrderCancelRequest:
		h.handleOrderCancelRequest(msg)
	case wiretag.MsgTypeOrderCancelReplace:
		h.handleOrderCancelReplace(msg)
	default:
		log.Printf("[session %s] unsupported MsgType %q, ignoring", h.connID, msgType)
	}
}

// --- Logon / Heartbeat / Logout ---

func (h *Handler) handleLogon(msg *wire.Message) {
	h.peerCompID = msg.GetOr(wiretag.TagSenderCompID, "")
	h.loggedOn = true
	log.Printf("[session %s] logon from %s", h.connID, h.peerCompID)

	if h.cfg.Recorder != nil {
		h.cfg.Recorder.Frame(h.connID, "logon", h.peerCompID)
	}

	h.send(wiretag.MsgTypeLogon, []quickfix.Tag{wiretag.TagEncryptMethod, wiretag.TagHeartBtInt}, map[quickfix.Tag]string{
		wiretag.TagEncryptMethod: msg.GetOr(wiretag.TagEncryptMethod, "0"),
		wiretag.TagHeartBtInt:    strconv.Itoa(h.cfg.HeartBtIntSeconds),
	})
}

func (h *Handler) handleHeartbeat(msg *wire.Message) {
	log.Printf("[session %s] heartbeat", h.connID)
}

func (h *Handler) handleLogout(msg *wire.Message) {
	log.Printf("[session %s] logout from %s", h.connID, h.peerCompID)
	h.send(wiretag.MsgTypeLogout, nil, nil)
	h.loggedOn = false
	// Closing the connection makes Run's next Read fail, ending the session.
	h.conn.Close()
}

// --- NewOrderSingle (spec §4.6: 5-step validation ladder) ---

func (h *Handler) handleNewOrderSingle(msg *wire.Message) {
	clOrdID, rec, behaviorName, err := h.acceptNewOrderSingle(msg)
	if err != nil {
		h.replyReject(msg, clOrdID, err)
		return
	}

	if err := h.cfg.Scenario.Run(rec, behaviorName); err != nil {
		// Scenario errors are logged and discarded (spec §7.6); the
		// session stays up and later messages for other orders are
		// unaffected.
		log.Printf("[session %s] scenario error for order %s: %v", h.connID, rec.CurrentClOrdID, err)
	}
}

// acceptNewOrderSingle runs the validation ladder and, on success,
// inserts the order and resolves its behavior. It does not itself run
// the scenario so handleNewOrderSingle can decide what to do with a
// validation failure before any side effect has happened.
func (h *Handler) acceptNewOrderSingle(msg *wire.Message) (clOrdID string, rec *order.Record, behaviorName string, err error) {
	// Step 1: required business tags present (ClOrdID, Side, OrderQty,
	// Symbol, OrdType) — the five the session handler's own ladder
	// checks, distinct from schema.Tables["D"]'s broader certification
	// required set.
	for _, tag := range []quickfix.Tag{
		wiretag.TagClOrdID, wiretag.TagSide, wiretag.TagOrderQty,
		wiretag.TagSymbol, wiretag.TagOrdType,
	} {
		if !msg.Has(tag) {
			return msg.GetOr(wiretag.TagClOrdID, ""), nil, "", &SessionRejectError{
				RefTag: tag,
				Reason: wiretag.SessionRejectReasonRequiredTagMissing,
				Text:   fmt.Sprintf("Required tag missing (%d)", tag),
			}
		}
	}
	clOrdID = msg.GetOr(wiretag.TagClOrdID, "")

	// Step 2: OrderQty must be a positive decimal.
	qty, qerr := fixdecimal.PositiveParse("OrderQty", msg.GetOr(wiretag.TagOrderQty, ""))
	if qerr != nil {
		return clOrdID, nil, "", &SessionRejectError{RefTag: wiretag.TagOrderQty, Reason: wiretag.SessionRejectReasonValueOutOfRange, Text: qerr.Error()}
	}

	// Step 3: Side and OrdType must be known enum values.
	side := order.Side(msg.GetOr(wiretag.TagSide, ""))
	if side != order.SideBuy && side != order.SideSell {
		return clOrdID, nil, "", &SessionRejectError{RefTag: wiretag.TagSide, Reason: wiretag.SessionRejectReasonValueOutOfRange, Text: "unknown Side"}
	}
	ordType := order.Type(msg.GetOr(wiretag.TagOrdType, ""))
	if ordType != order.TypeMarket && ordType != order.TypeLimit {
		return clOrdID, nil, "", &SessionRejectError{RefTag: wiretag.TagOrdType, Reason: wiretag.SessionRejectReasonValueOutOfRange, Text: "unknown OrdType"}
	}

	// Step 4: Limit orders require a positive Price.
	price, _ := fixdecimal.Parse("Price", "0")
	if ordType == order.TypeLimit {
		p, perr := fixdecimal.PositiveParse("Price", msg.GetOr(wiretag.TagPrice, ""))
		if perr != nil {
			return clOrdID, nil, "", &SessionRejectError{RefTag: wiretag.TagPrice, Reason: wiretag.SessionRejectReasonRequiredTagMissing, Text: perr.Error()}
		}
		price = p
	}

	// Step 5: ClOrdID must not already be in use.
	if h.cfg.Store.Contains(clOrdID) {
		return clOrdID, nil, "", &BusinessRejectError{Text: fmt.Sprintf("duplicate ClOrdID %q", clOrdID)}
	}

	symbol := msg.GetOr(wiretag.TagSymbol, "")
	rec = order.New(h.nextOrderID(), clOrdID, symbol, side, qty, price, ordType, time.Now())
	rec.Client = &execClient{h: h, rec: rec}

	if !h.cfg.Store.InsertIfAbsent(clOrdID, rec) {
		return clOrdID, nil, "", &BusinessRejectError{Text: fmt.Sprintf("duplicate ClOrdID %q", clOrdID)}
	}

	behaviorName = h.cfg.Rules.Resolve(symbol)
	return clOrdID, rec, behaviorName, nil
}

// --- OrderCancelRequest (spec §4.6: 4-step validation ladder) ---

func (h *Handler) handleOrderCancelRequest(msg *wire.Message) {
	for _, tag := range []quickfix.Tag{wiretag.TagOrigClOrdID, wiretag.TagClOrdID, wiretag.TagSymbol, wiretag.TagSide} {
		if !msg.Has(tag) {
			h.replyReject(msg, msg.GetOr(wiretag.TagClOrdID, ""), &SessionRejectError{
				RefTag: tag, Reason: wiretag.SessionRejectReasonRequiredTagMissing,
				Text: fmt.Sprintf("Required tag missing (%d)", tag),
			})
			return
		}
	}

	origClOrdID := msg.GetOr(wiretag.TagOrigClOrdID, "")
	newClOrdID := msg.GetOr(wiretag.TagClOrdID, "")

	rec, ok := h.cfg.Store.Lookup(origClOrdID)
	if !ok {
		h.replyReject(msg, newClOrdID, &BusinessRejectError{Text: fmt.Sprintf("unknown OrigClOrdID %q", origClOrdID)})
		return
	}
	if h.cfg.Store.Contains(newClOrdID) {
		h.replyReject(msg, newClOrdID, &BusinessRejectError{Text: fmt.Sprintf("duplicate ClOrdID %q", newClOrdID)})
		return
	}
	if isTerminal(rec.Status) {
		h.replyReject(msg, newClOrdID, &BusinessRejectError{Text: fmt.Sprintf("order %s is not cancelable (status %s)", origClOrdID, rec.Status)})
		return
	}

	h.cfg.Store.Rekey(origClOrdID, newClOrdID)
	if err := rec.Client.Emit(scenario.ActionCancel); err != nil {
		log.Printf("[session %s] cancel emit error for order %s: %v", h.connID, newClOrdID, err)
	}
}

// --- OrderCancelReplaceRequest (spec §4.6: 5-step validation ladder) ---

func (h *Handler) handleOrderCancelReplace(msg *wire.Message) {
	for _, tag := range []quickfix.Tag{
		wiretag.TagOrigClOrdID, wiretag.TagClOrdID, wiretag.TagSymbol,
		wiretag.TagSide, wiretag.TagOrderQty, wiretag.TagOrdType,
	} {
		if !msg.Has(tag) {
			h.replyReject(msg, msg.GetOr(wiretag.TagClOrdID, ""), &SessionRejectError{
				RefTag: tag, Reason: wiretag.SessionRejectReasonRequiredTagMissing,
				Text: fmt.Sprintf("Required tag missing (%d)", tag),
			})
			return
		}
	}

	newClOrdID := msg.GetOr(wiretag.TagClOrdID, "")
	origClOrdID := msg.GetOr(wiretag.TagOrigClOrdID, "")

	qty, qerr := fixdecimal.PositiveParse("OrderQty", msg.GetOr(wiretag.TagOrderQty, ""))
	if qerr != nil {
		h.replyReject(msg, newClOrdID, &SessionRejectError{RefTag: wiretag.TagOrderQty, Reason: wiretag.SessionRejectReasonValueOutOfRange, Text: qerr.Error()})
		return
	}

	ordType := order.Type(msg.GetOr(wiretag.TagOrdType, ""))
	price, _ := fixdecimal.Parse("Price", "0")
	if ordType == order.TypeLimit {
		p, perr := fixdecimal.PositiveParse("Price", msg.GetOr(wiretag.TagPrice, ""))
		if perr != nil {
			h.replyReject(msg, newClOrdID, &SessionRejectError{RefTag: wiretag.TagPrice, Reason: wiretag.SessionRejectReasonRequiredTagMissing, Text: perr.Error()})
			return
		}
		price = p
	}

	rec, ok := h.cfg.Store.Lookup(origClOrdID)
	if !ok {
		h.replyReject(msg, newClOrdID, &BusinessRejectError{Text: fmt.Sprintf("unknown OrigClOrdID %q", origClOrdID)})
		return
	}
	if isTerminal(rec.Status) {
		h.replyReject(msg, newClOrdID, &BusinessRejectError{Text: fmt.Sprintf("order %s is not replaceable (status %s)", origClOrdID, rec.Status)})
		return
	}
	if h.cfg.Store.Contains(newClOrdID) {
		h.replyReject(msg, newClOrdID, &BusinessRejectError{Text: fmt.Sprintf("duplicate ClOrdID %q", newClOrdID)})
		return
	}

	h.cfg.Store.Rekey(origClOrdID, newClOrdID)
	h.cfg.Store.Mutate(newClOrdID, func(r *order.Record) {
		r.OrigQty = qty
		r.Price = price
		r.OrdType = ordType
		r.LeavesQty = qty.Sub(r.CumQty)
		r.UpdatedAt = time.Now()
	})

	if err := rec.Client.Emit(scenario.ActionReplaceAck); err != nil {
		log.Printf("[session %s] replace emit error for order %s: %v", h.connID, newClOrdID, err)
	}
}

func isTerminal(s order.Status) bool {
	switch s {
	case order.StatusFilled, order.StatusCanceled, order.StatusRejected:
		return true
	default:
		return false
	}
}

// --- Rejects ---

// replyReject dispatches a validation-ladder failure to the correctly
// shaped wire reply: a session-level Reject (35=3) for *SessionRejectError,
// an ExecutionReport carrying 150=8/39=8 for *BusinessRejectError (spec
// §7.1, §7.2).
func (h *Handler) replyReject(msg *wire.Message, clOrdID string, err error) {
	if h.cfg.Recorder != nil {
		h.cfg.Recorder.Reject(h.connID, clOrdID, rejectKind(err), err.Error())
	}

	switch e := err.(type) {
	case *SessionRejectError:
		text := e.Text
		if name := wiretag.TagName(e.RefTag); name != "" {
			text = fmt.Sprintf("%s (%s)", e.Text, name)
		}
		h.send(wiretag.MsgTypeReject, []quickfix.Tag{wiretag.TagRefSeqNum, wiretag.TagRefTagID, wiretag.TagSessionRejectReason, wiretag.TagText}, map[quickfix.Tag]string{
			wiretag.TagRefSeqNum:            msg.GetOr(wiretag.TagMsgSeqNum, "0"),
			wiretag.TagRefTagID:             strconv.Itoa(int(e.RefTag)),
			wiretag.TagSessionRejectReason:  e.Reason,
			wiretag.TagText:                 text,
		})
	case *BusinessRejectError:
		h.send(wiretag.MsgTypeExecutionReport, []quickfix.Tag{
			wiretag.TagOrderID, wiretag.TagClOrdID, wiretag.TagExecID, wiretag.TagExecType,
			wiretag.TagOrdStatus, wiretag.TagSymbol, wiretag.TagSide, wiretag.TagOrderQty,
			wiretag.TagOrdType, wiretag.TagPrice, wiretag.TagLastShares, wiretag.TagLastPx,
			wiretag.TagCumQty, wiretag.TagAvgPx, wiretag.TagLeavesQty, wiretag.TagText,
		}, map[quickfix.Tag]string{
			wiretag.TagOrderID:    "NONE",
			wiretag.TagClOrdID:    clOrdID,
			wiretag.TagExecID:     h.nextExecID(),
			wiretag.TagExecType:   wiretag.ExecTypeRejected,
			wiretag.TagOrdStatus:  wiretag.OrdStatusRejected,
			wiretag.TagSymbol:     "",
			wiretag.TagSide:       "",
			wiretag.TagOrderQty:   "0",
			wiretag.TagOrdType:    "",
			wiretag.TagPrice:      "0",
			wiretag.TagLastShares: "0",
			wiretag.TagLastPx:     "0",
			wiretag.TagCumQty:     "0",
			wiretag.TagAvgPx:      "0",
			wiretag.TagLeavesQty:  "0",
			wiretag.TagText:       e.Text,
		})
	default:
		log.Printf("[session %s] unhandled reject type %T: %v", h.connID, err, err)
	}
}

func rejectKind(err error) string {
	switch err.(type) {
	case *SessionRejectError:
		return "session"
	case *BusinessRejectError:
		return "business"
	default:
		return "unknown"
	}
}

// --- Outbound framing ---

// send builds and writes one FIX message, assigning the header tags
// (8/9/35/49/56/34/52) and consuming the next outbound sequence number.
func (h *Handler) send(msgType string, extraOrder []quickfix.Tag, extraValues map[quickfix.Tag]string) {
	h.mu.Lock()
	seq := h.outboundSeq
	h.outboundSeq++

	fieldOrder := []quickfix.Tag{wiretag.TagMsgType, wiretag.TagSenderCompID, wiretag.TagTargetCompID, wiretag.TagMsgSeqNum, wiretag.TagSendingTime}
	values := map[quickfix.Tag]string{
		wiretag.TagMsgType:      msgType,
		wiretag.TagSenderCompID: h.cfg.SenderCompID,
		wiretag.TagTargetCompID: h.peerCompID,
		wiretag.TagMsgSeqNum:    strconv.Itoa(seq),
		wiretag.TagSendingTime:  time.Now().UTC().Format(wiretag.FixTimeFormat),
	}
	fieldOrder = append(fieldOrder, extraOrder...)
	for k, v := range extraValues {
		values[k] = v
	}

	frame := wire.Build(wiretag.FixBeginString, fieldOrder, values)
	_, writeErr := h.conn.Write(frame)
	h.mu.Unlock()

	if writeErr != nil {
		log.Printf("[session %s] write error: %v", h.connID, writeErr)
		return
	}
	if h.cfg.Recorder != nil {
		h.cfg.Recorder.Frame(h.connID, "out", string(frame))
	}
}

func (h *Handler) nextOrderID() string {
	return "OR" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

func (h *Handler) nextExecID() string {
	return "EX" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// --- order.ClientHandle adapter ---

// execClient binds a Handler to one order record so scenario.Engine can
// call Emit without knowing anything about wire framing or sessions
// (spec §9 — replaces the order→server back-reference
// original_source/ScenarioEngine.py used).
type execClient struct {
	h   *Handler
	rec *order.Record
}

func (c *execClient) Emit(action string) error {
	return c.h.emitExecutionReport(c.rec, action)
}

// emitExecutionReport mutates rec per action and sends the corresponding
// ExecutionReport. Only the owning connection's goroutine ever touches a
// given order's mutable fields (spec §5's single-owner invariant), so
// fields are mutated directly rather than through Store.Mutate; Store's
// own mutex only protects the key space (insert/lookup/rekey).
func (h *Handler) emitExecutionReport(rec *order.Record, action string) error {
	var execType, ordStatus string
	var lastQty, lastPx string

	switch action {
	case scenario.ActionNew:
		execType, ordStatus = wiretag.ExecTypeNew, wiretag.OrdStatusNew
		lastQty, lastPx = "0", "0"

	case scenario.ActionPartial:
		fill := fixdecimal.PartialFillQuantity(rec.LeavesQty)
		if fill.GreaterThanOrEqual(rec.LeavesQty) {
			fill = rec.LeavesQty
		}
		rec.CumQty = rec.CumQty.Add(fill)
		rec.LeavesQty = rec.LeavesQty.Sub(fill)
		rec.UpdatedAt = time.Now()
		if rec.LeavesQty.IsZero() {
			rec.Status = order.StatusFilled
			execType, ordStatus = wiretag.ExecTypeFilled, wiretag.OrdStatusFilled
		} else {
			rec.Status = order.StatusPartiallyFilled
			execType, ordStatus = wiretag.ExecTypePartialFill, wiretag.OrdStatusPartiallyFilled
		}
		lastQty, lastPx = fill.String(), rec.Price.String()

	case scenario.ActionFill, scenario.ActionFullFill:
		fill := rec.LeavesQty
		rec.CumQty = rec.OrigQty
		rec.LeavesQty = decimal.Zero
		rec.Status = order.StatusFilled
		rec.UpdatedAt = time.Now()
		execType, ordStatus = wiretag.ExecTypeFilled, wiretag.OrdStatusFilled
		lastQty, lastPx = fill.String(), rec.Price.String()

	case scenario.ActionCancel:
		rec.LeavesQty = decimal.Zero
		rec.Status = order.StatusCanceled
		rec.UpdatedAt = time.Now()
		execType, ordStatus = wiretag.ExecTypeCanceled, wiretag.OrdStatusCanceled
		lastQty, lastPx = "0", "0"

	case scenario.ActionReject:
		rec.Status = order.StatusRejected
		rec.UpdatedAt = time.Now()
		execType, ordStatus = wiretag.ExecTypeRejected, wiretag.OrdStatusRejected
		lastQty, lastPx = "0", "0"

	case scenario.ActionReplaceAck:
		rec.Status = order.StatusReplaced
		rec.UpdatedAt = time.Now()
		execType, ordStatus = wiretag.ExecTypeReplaced, wiretag.OrdStatusReplaced
		lastQty, lastPx = "0", rec.Price.String()

	default:
		return fmt.Errorf("session: unknown scenario send action %q", action)
	}

	h.send(wiretag.MsgTypeExecutionReport, []quickfix.Tag{
		wiretag.TagOrderID, wiretag.TagClOrdID, wiretag.TagExecID, wiretag.TagExecType,
		wiretag.TagOrdStatus, wiretag.TagSymbol, wiretag.TagSide, wiretag.TagOrderQty,
		wiretag.TagOrdType, wiretag.TagPrice, wiretag.TagLastShares, wiretag.TagLastPx,
		wiretag.TagCumQty, wiretag.TagAvgPx, wiretag.TagLeavesQty,
	}, map[quickfix.Tag]string{
		wiretag.TagOrderID:    rec.OrderID,
		wiretag.TagClOrdID:    rec.CurrentClOrdID,
		wiretag.TagExecID:     h.nextExecID(),
		wiretag.TagExecType:   execType,
		wiretag.TagOrdStatus:  ordStatus,
		wiretag.TagSymbol:     rec.Symbol,
		wiretag.TagSide:       string(rec.Side),
		wiretag.TagOrderQty:   rec.OrigQty.String(),
		wiretag.TagOrdType:    string(rec.OrdType),
		wiretag.TagPrice:      rec.Price.String(),
		wiretag.TagLastShares: lastQty,
		wiretag.TagLastPx:     lastPx,
		wiretag.TagCumQty:     rec.CumQty.String(),
		wiretag.TagAvgPx:      rec.Price.String(),
		wiretag.TagLeavesQty:  rec.LeavesQty.String(),
	})
	return nil
}
