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

// Package auditlog persists session lifecycle events and raw frames to
// SQLite, using the prepared-statement/WAL pattern
// database/marketdata.go uses for market data: statements prepared once
// at open, reused for every insert. This journals the wire trace spec
// §6 calls "free-form human-readable" output — it is an additional,
// queryable form of the same append-only record, not order state (spec
// §1's non-goals only rule out persisting *orders*).
package auditlog

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS connections (
	conn_id    TEXT PRIMARY KEY,
	remote_addr TEXT NOT NULL,
	connected_at TEXT NOT NULL,
	disconnected_at TEXT
);
CREATE TABLE IF NOT EXISTS frames (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	conn_id   TEXT NOT NULL,
	direction TEXT NOT NULL,
	raw       TEXT NOT NULL,
	at        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS rejects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	conn_id TEXT NOT NULL,
	cl_ord_id TEXT NOT NULL,
	kind    TEXT NOT NULL,
	reason  TEXT NOT NULL,
	at      TEXT NOT NULL
);
`

const (
	insertConnectQuery    = `INSERT INTO connections (conn_id, remote_addr, connected_at) VALUES (?, ?, ?)`
	insertDisconnectQuery = `UPDATE connections SET disconnected_at = ? WHERE conn_id = ?`
	insertFrameQuery      = `INSERT INTO frames (conn_id, direction, raw, at) VALUES (?, ?, ?, ?)`
	insertRejectQuery     = `INSERT INTO rejects (conn_id, cl_ord_id, kind, reason, at) VALUES (?, ?, ?, ?, ?)`
)

// Store is a SQLite-backed audit journal. A nil *Store is valid and
// turns every method into a no-op, so session.Config.Recorder can be
// left unset without a separate sentinel type.
type Store struct {
	db *sql.DB

	stmtConnect    *sql.Stmt
	stmtDisconnect *sql.Stmt
	stmtFrame      *sql.Stmt
	stmtReject     *sql.Stmt
}

// Open opens (creating if absent) a SQLite journal at dbPath, applies
// the schema, and prepares every insert statement.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("auditlog: failed to open database: %w", err)
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("auditlog: failed to initialize schema: %w", err)
	}

	s := &Store{db: db}
	if s.stmtConnect, err = db.Prepare(insertConnectQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("auditlog: failed to prepare connect statement: %w", err)
	}
	if s.stmtDisconnect, err = db.Prepare(insertDisconnectQuery); err != nil {
		_ = s.stmtConnect.Close()
		_ = db.Close()
		return nil, fmt.Errorf("auditlog: failed to prepare disconnect statement: %w", err)
	}
	if s.stmtFrame, err = db.Prepare(insertFrameQuery); err != nil {
		_ = s.stmtConnect.Close()
		_ = s.stmtDisconnect.Close()
		_ = db.Close()
		return nil, fmt.Errorf("auditlog: failed to prepare frame statement: %w", err)
	}
	if s.stmtReject, err = db.Prepare(insertRejectQuery); err != nil {
		_ = s.stmtConnect.Close()
		_ = s.stmtDisconnect.Close()
		_ = s.stmtFrame.Close()
		_ = db.Close()
		return nil, fmt.Errorf("auditlog: failed to prepare reject statement: %w", err)
	}

	log.Printf("[auditlog] journal opened at %s", dbPath)
	return s, nil
}

// Close releases the prepared statements and the underlying handle.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	_ = s.stmtConnect.Close()
	_ = s.stmtDisconnect.Close()
	_ = s.stmtFrame.Close()
	_ = s.stmtReject.Close()
	return s.db.Close()
}

// Connect records a new connection. Implements session.Recorder.
func (s *Store) Connect(connID, remoteAddr string) {
	if s == nil {
		return
	}
	if _, err := s.stmtConnect.Exec(connID, remoteAddr, now()); err != nil {
		log.Printf("[auditlog] connect insert failed: %v", err)
	}
}

// Disconnect marks a connection closed. Implements session.Recorder.
func (s *Store) Disconnect(connID string) {
	if s == nil {
		return
	}
	if _, err := s.stmtDisconnect.Exec(now(), connID); err != nil {
		log.Printf("[auditlog] disconnect update failed: %v", err)
	}
}

// Frame records one raw inbound or outbound wire frame. Implements
// session.Recorder.
func (s *Store) Frame(connID, direction, raw string) {
	if s == nil {
		return
	}
	if _, err := s.stmtFrame.Exec(connID, direction, raw, now()); err != nil {
		log.Printf("[auditlog] frame insert failed: %v", err)
	}
}

// Reject records a session- or business-level reject. Implements
// session.Recorder.
func (s *Store) Reject(connID, clOrdID, kind, reason string) {
	if s == nil {
		return
	}
	if _, err := s.stmtReject.Exec(connID, clOrdID, kind, reason, now()); err != nil {
		log.Printf("[auditlog] reject insert failed: %v", err)
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
