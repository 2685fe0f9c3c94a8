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

// Package wiretag names the FIX 4.2 tags FixEm's wire codec, schema
// tables, and session handler dispatch on. Tags are typed on
// quickfix.Tag so they carry the same identity the rest of the FIX-Go
// ecosystem uses, without pulling in the quickfix session engine.
package wiretag

import "github.com/quickfixgo/quickfix"

// --- Message Types (Tag 35) ---
const (
	MsgTypeLogon                  = "A" // Logon
	MsgTypeHeartbeat              = "0" // Heartbeat
	MsgTypeLogout                 = "5" // Logout
	MsgTypeReject                 = "3" // Session-level Reject
	MsgTypeNewOrderSingle         = "D" // New Order Single
	MsgTypeOrderCancelRequest     = "F" // Order Cancel Request
	MsgTypeOrderCancelReplace     = "G" // Order Cancel/Replace Request
	MsgTypeExecutionReport        = "8" // Execution Report
	MsgTypeBusinessMessageReject  = "j" // Business Message Reject (unused on the wire; §7.2 rides on 8)
)

// --- Protocol Constants ---
const (
	FixTimeFormat  = "20060102-15:04:05.000"
	FixBeginString = "FIX.4.2"
)

// --- Side (Tag 54) ---
const (
	SideBuy  = "1"
	SideSell = "2"
)

// --- Order Type (Tag 40) ---
const (
	OrdTypeMarket = "1"
	OrdTypeLimit  = "2"
)

// --- Order Status (Tag 39) ---
const (
	OrdStatusNew             = "0"
	OrdStatusPartiallyFilled = "1"
	OrdStatusFilled          = "2"
	OrdStatusCanceled        = "4"
	OrdStatusReplaced        = "5"
	OrdStatusRejected        = "8"
)

// --- Execution Type (Tag 150) ---
const (
	ExecTypeNew         = "0"
	ExecTypePartialFill = "1"
	ExecTypeFilled      = "2"
	ExecTypeCanceled    = "4"
	ExecTypeReplaced    = "5"
	ExecTypeRejected    = "8"
)

// --- Session Reject Reason (Tag 373) ---
const (
	SessionRejectReasonRequiredTagMissing  = "1"
	SessionRejectReasonTagNotDefined       = "2"
	SessionRejectReasonValueOutOfRange     = "5"
)

// --- Standard FIX Tags used by FixEm ---
var (
	TagBeginString   = quickfix.Tag(8)
	TagBodyLength    = quickfix.Tag(9)
	TagAvgPx         = quickfix.Tag(6)
	TagClOrdID       = quickfix.Tag(11)
	TagCumQty        = quickfix.Tag(14)
	TagExecID        = quickfix.Tag(17)
	TagHandlInst     = quickfix.Tag(21)
	TagMsgSeqNum     = quickfix.Tag(34)
	TagMsgType       = quickfix.Tag(35)
	TagOrderID       = quickfix.Tag(37)
	TagOrderQty      = quickfix.Tag(38)
	TagOrdStatus     = quickfix.Tag(39)
	TagOrdType       = quickfix.Tag(40)
	TagOrigClOrdID   = quickfix.Tag(41)
	TagPrice         = quickfix.Tag(44)
	TagRefSeqNum     = quickfix.Tag(45)
	TagSenderCompID  = quickfix.Tag(49)
	TagSendingTime   = quickfix.Tag(52)
	TagSide          = quickfix.Tag(54)
	TagSymbol        = quickfix.Tag(55)
	TagText          = quickfix.Tag(58)
	TagTransactTime  = quickfix.Tag(60)
	TagTargetCompID  = quickfix.Tag(56)
	TagEncryptMethod = quickfix.Tag(98)
	TagHeartBtInt    = quickfix.Tag(108)
	TagLastPx        = quickfix.Tag(31)
	TagLastShares    = quickfix.Tag(32)
	TagExecType      = quickfix.Tag(150)
	TagLeavesQty     = quickfix.Tag(151)

	// Reject tags
	TagRefTagID            = quickfix.Tag(371)
	TagRefMsgType          = quickfix.Tag(372)
	TagSessionRejectReason = quickfix.Tag(373)
	TagBusinessRejectReason = quickfix.Tag(380)

	// Checksum
	TagCheckSum = quickfix.Tag(10)
)

// TagName returns a short human label for tags FixEm's reject/log
// messages print; it returns "" for unlisted tags.
func TagName(t quickfix.Tag) string {
	switch t {
	case TagClOrdID:
		return "ClOrdID"
	case TagOrderQty:
		return "OrderQty"
	case TagOrdType:
		return "OrdType"
	case TagPrice:
		return "Price"
	case TagSymbol:
		return "Symbol"
	case TagSide:
		return "Side"
	case TagOrigClOrdID:
		return "OrigClOrdID"
	default:
		return ""
	}
}
