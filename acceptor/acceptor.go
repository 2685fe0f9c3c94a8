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

// Package acceptor implements the TCP listener (spec component C7):
// accept a connection, hand it a session.Handler, move on. There is no
// admission control, no connection limit, and no graceful shutdown —
// original_source/emulator/server.py never had any of the three, and
// spec §1 keeps all three out of scope.
package acceptor

import (
	"log"
	"net"

	"github.com/danielgavin-code/FixEm/session"
)

// Acceptor listens on one TCP address and spawns one session.Handler
// goroutine per accepted connection.
type Acceptor struct {
	addr      string
	newConfig func(conn net.Conn) session.Config
}

// New returns an Acceptor bound to addr. newConfig is called once per
// accepted connection to build that connection's session.Config — it
// exists so each session can get its own Recorder/Store/behavior
// library if a deployment wants that, while the common case (one
// config.Bundle shared by every session) can just close over a single
// value.
func New(addr string, newConfig func(conn net.Conn) session.Config) *Acceptor {
	return &Acceptor{addr: addr, newConfig: newConfig}
}

// Run listens and serves connections until Listen or Accept fails. Run
// owns the listener it creates and does not expose it, so there is no
// in-band shutdown signal; the acceptor stops when the process is
// interrupted (spec §1's non-goals).
func (a *Acceptor) Run() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	log.Printf("[acceptor] listening on %s", a.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("[acceptor] accept error: %v", err)
			return err
		}
		cfg := a.newConfig(conn)
		h := session.NewHandler(conn, cfg)
		go h.Run()
	}
}
