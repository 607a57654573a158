// Package orchestrator implements the separate bootstrap/ticket/transfer
// process: a SQLite-backed ticket and account
// store (reimplementing database_manager.go's collection/key
// pattern over real SQL since there's no Nakama storage host here) plus
// a subprocess supervisor for map instances.
package orchestrator

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elderford/realmcore/internal/idgen"
	_ "modernc.org/sqlite"
)

// Ticket error classes, named so the HTTP layer can render them verbatim
// in the {ok:false, error} body.
var (
	ErrTicketNotFound        = errors.New("ticket_not_found")
	ErrTicketExpired         = errors.New("ticket_expired")
	ErrTicketAlreadyConsumed = errors.New("ticket_already_consumed")
	ErrMapInstanceMismatch   = errors.New("map_instance_mismatch")
)

// PlayerSnapshot is the persisted player state carried across a map
// transfer and returned by ValidateAndConsumeTicket. cmd/mapserver's
// connect handler discards it: the joining player starts at the world's
// spawn point with 100 health.
type PlayerSnapshot struct {
	X, Y, Z            float64
	Yaw, Pitch         float64
	VX, VY, VZ         float64
	Health             float64
	PrimaryMouseSlot   int
	SecondaryMouseSlot int
	HotbarAbilityIDs   [10]uint16
}

// Store owns the orchestrator's persisted tables: tickets and accounts.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and
// ensures its schema exists. Persistent storage is append-mostly and
// safe to open after crash recovery.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: opening store: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers; serialize through one connection.

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			account_id TEXT PRIMARY KEY,
			auth_key_hash TEXT UNIQUE NOT NULL,
			last_known_map_instance_id TEXT
		);
		CREATE TABLE IF NOT EXISTS tickets (
			ticket_id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			map_instance_id TEXT NOT NULL,
			issued_at_ms INTEGER NOT NULL,
			expires_at_ms INTEGER NOT NULL,
			consumed_bool INTEGER NOT NULL DEFAULT 0,
			snapshot_blob TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("orchestrator: migrating schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func hashAuthKey(authKey string) string {
	sum := sha256.Sum256([]byte(authKey))
	return hex.EncodeToString(sum[:])
}

// EnsureAccount looks up the account bound to authKey, auto-registering
// a fresh account_id on first use.
func (s *Store) EnsureAccount(authKey string) (accountID string, err error) {
	hash := hashAuthKey(authKey)

	err = s.db.QueryRow(`SELECT account_id FROM accounts WHERE auth_key_hash = ?`, hash).Scan(&accountID)
	if err == nil {
		return accountID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("orchestrator: looking up account: %w", err)
	}

	accountID = idgen.MapInstanceID() // any fresh uuid works as an account id
	_, err = s.db.Exec(`INSERT INTO accounts (account_id, auth_key_hash) VALUES (?, ?)`, accountID, hash)
	if err != nil {
		return "", fmt.Errorf("orchestrator: registering account: %w", err)
	}
	return accountID, nil
}

// IssueTicket creates a single-use ticket bound to {accountID,
// mapInstanceID} with the given TTL.
func (s *Store) IssueTicket(accountID, mapInstanceID string, ttl time.Duration) (ticketID string, err error) {
	ticketID = idgen.TicketID()
	now := nowMS()
	_, err = s.db.Exec(
		`INSERT INTO tickets (ticket_id, account_id, map_instance_id, issued_at_ms, expires_at_ms, consumed_bool) VALUES (?, ?, ?, ?, ?, 0)`,
		ticketID, accountID, mapInstanceID, now, now+ttl.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("orchestrator: issuing ticket: %w", err)
	}
	return ticketID, nil
}

// ValidateAndConsumeTicket atomically marks ticketID consumed and returns
// its bound account and any persisted snapshot: the
// "mark consumed" update and the snapshot read happen inside one
// transaction so two concurrent validations of the same ticket can never
// both succeed.
func (s *Store) ValidateAndConsumeTicket(ticketID, mapInstanceID string) (accountID string, snapshot *PlayerSnapshot, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", nil, fmt.Errorf("orchestrator: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		ticketMapID string
		expiresAt   int64
		consumed    int
		blob        sql.NullString
	)
	err = tx.QueryRow(
		`SELECT account_id, map_instance_id, expires_at_ms, consumed_bool, snapshot_blob FROM tickets WHERE ticket_id = ?`,
		ticketID,
	).Scan(&accountID, &ticketMapID, &expiresAt, &consumed, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrTicketNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("orchestrator: reading ticket: %w", err)
	}
	if consumed != 0 {
		return "", nil, ErrTicketAlreadyConsumed
	}
	if nowMS() > expiresAt {
		return "", nil, ErrTicketExpired
	}
	if ticketMapID != mapInstanceID {
		return "", nil, ErrMapInstanceMismatch
	}

	if _, err := tx.Exec(`UPDATE tickets SET consumed_bool = 1 WHERE ticket_id = ?`, ticketID); err != nil {
		return "", nil, fmt.Errorf("orchestrator: consuming ticket: %w", err)
	}
	if _, err := tx.Exec(`UPDATE accounts SET last_known_map_instance_id = ? WHERE account_id = ?`, mapInstanceID, accountID); err != nil {
		return "", nil, fmt.Errorf("orchestrator: updating account: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", nil, fmt.Errorf("orchestrator: committing ticket consume: %w", err)
	}

	if blob.Valid {
		var snap PlayerSnapshot
		if err := json.Unmarshal([]byte(blob.String), &snap); err == nil {
			snapshot = &snap
		}
	}
	return accountID, snapshot, nil
}

// IssueTransferTicket persists snap keyed by accountID and issues a
// fresh single-use ticket for toMapInstanceID.
func (s *Store) IssueTransferTicket(accountID, toMapInstanceID string, snap PlayerSnapshot, ttl time.Duration) (ticketID string, err error) {
	blob, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("orchestrator: encoding snapshot: %w", err)
	}

	ticketID = idgen.TicketID()
	now := nowMS()
	_, err = s.db.Exec(
		`INSERT INTO tickets (ticket_id, account_id, map_instance_id, issued_at_ms, expires_at_ms, consumed_bool, snapshot_blob) VALUES (?, ?, ?, ?, ?, 0, ?)`,
		ticketID, accountID, toMapInstanceID, now, now+ttl.Milliseconds(), string(blob),
	)
	if err != nil {
		return "", fmt.Errorf("orchestrator: issuing transfer ticket: %w", err)
	}
	return ticketID, nil
}

// nowMS is the one clock read in the package, isolated so tests can
// reason about TTL math without sleeping.
var nowMS = func() int64 { return time.Now().UnixMilli() }
