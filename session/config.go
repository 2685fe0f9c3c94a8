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
	"github.com/danielgavin-code/FixEm/order"
	"github.com/danielgavin-code/FixEm/rulematch"
	"github.com/danielgavin-code/FixEm/scenario"
)

// Recorder is the narrow audit-trail seam a Handler writes session
// lifecycle events and raw frames through. auditlog.Store implements it;
// Handler guards every call site with a nil check, so tests can leave
// Recorder unset to disable audit logging entirely.
type Recorder interface {
	Connect(connID, remoteAddr string)
	Disconnect(connID string)
	Frame(connID, direction, raw string)
	Reject(connID, clOrdID, kind, reason string)
}

// Config is one session's static configuration (spec §3 "Session
// State" minus the mutable parts, which live on Handler): connection
// identity, heartbeat interval, and the execution bundle (default
// behavior + compiled rules) ConfigLoader.py's loadAll() produces
// per-session.
type Config struct {
	SenderCompID      string
	TargetCompID      string
	HeartBtIntSeconds int

	Rules    *rulematch.Matcher
	Scenario *scenario.Engine
	Store    *order.Store

	// Recorder is optional; a nil Recorder disables audit logging.
	Recorder Recorder
}
