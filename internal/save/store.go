// Package save persists game snapshots to a local SQLite database,
// one row per named slot plus a short backup history per slot.
package save

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
)

var ErrNoSave = errors.New("no save in that slot")

const schemaVersion = 1

// historyDepth is how many prior writes each slot keeps as fallback
// copies.
const historyDepth = 3

type Store struct {
	db *sql.DB
}

// SlotInfo summarizes a stored save without decoding the whole
// snapshot.
type SlotInfo struct {
	Slot    string    `json:"slot"`
	Day     int       `json:"day"`
	Cash    int       `json:"cash"`
	City    string    `json:"city"`
	SavedAt time.Time `json:"savedAt"`
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS saves (
			slot TEXT PRIMARY KEY,
			day INTEGER NOT NULL,
			cash INTEGER NOT NULL,
			city TEXT NOT NULL,
			saved_at TEXT NOT NULL,
			data TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS save_history (
			slot TEXT NOT NULL,
			saved_at TEXT NOT NULL,
			data TEXT NOT NULL,
			PRIMARY KEY (slot, saved_at)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	_, err := db.Exec(
		`INSERT INTO meta(key, value) VALUES('schema_version', ?)
		 ON CONFLICT(key) DO NOTHING;`,
		fmt.Sprint(schemaVersion),
	)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes a snapshot into a slot. The slot's previous contents
// move into the backup history, trimmed to the last few writes.
func (s *Store) Save(ctx context.Context, slot string, snap game.Snapshot) error {
	if slot == "" {
		return fmt.Errorf("empty slot name")
	}
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO save_history(slot, saved_at, data)
		 SELECT slot, saved_at, data FROM saves WHERE slot = ?
		 ON CONFLICT(slot, saved_at) DO NOTHING;`, slot)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM save_history WHERE slot = ? AND saved_at NOT IN (
			SELECT saved_at FROM save_history WHERE slot = ?
			ORDER BY saved_at DESC LIMIT ?
		);`, slot, slot, historyDepth)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO saves(slot, day, cash, city, saved_at, data)
		 VALUES(?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
			day = excluded.day,
			cash = excluded.cash,
			city = excluded.city,
			saved_at = excluded.saved_at,
			data = excluded.data;`,
		slot, snap.Player.Day, snap.Player.Cash, snap.Player.CurrentCity,
		snap.SavedAt.UTC().Format(time.RFC3339Nano), string(blob))
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Load reads a slot back. A corrupt current row falls back to the
// newest readable history copy rather than failing the whole load.
func (s *Store) Load(ctx context.Context, slot string) (game.Snapshot, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM saves WHERE slot = ?;`, slot).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Snapshot{}, fmt.Errorf("%w: %s", ErrNoSave, slot)
	}
	if err != nil {
		return game.Snapshot{}, err
	}

	var snap game.Snapshot
	if err := json.Unmarshal([]byte(blob), &snap); err == nil {
		return snap, nil
	}

	rows, qerr := s.db.QueryContext(ctx,
		`SELECT data FROM save_history WHERE slot = ?
		 ORDER BY saved_at DESC;`, slot)
	if qerr != nil {
		return game.Snapshot{}, qerr
	}
	defer rows.Close()
	for rows.Next() {
		if err := rows.Scan(&blob); err != nil {
			return game.Snapshot{}, err
		}
		var backup game.Snapshot
		if err := json.Unmarshal([]byte(blob), &backup); err == nil {
			return backup, nil
		}
	}
	if err := rows.Err(); err != nil {
		return game.Snapshot{}, err
	}
	return game.Snapshot{}, fmt.Errorf("slot %s: save data unreadable", slot)
}

// List returns summaries of every stored slot, newest first.
func (s *Store) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, day, cash, city, saved_at FROM saves
		 ORDER BY saved_at DESC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SlotInfo
	for rows.Next() {
		var info SlotInfo
		var stamp string
		if err := rows.Scan(&info.Slot, &info.Day, &info.Cash, &info.City, &stamp); err != nil {
			return nil, err
		}
		info.SavedAt, _ = time.Parse(time.RFC3339Nano, stamp)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes a slot and its backups.
func (s *Store) Delete(ctx context.Context, slot string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM save_history WHERE slot = ?;`, slot); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?;`, slot)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNoSave, slot)
	}
	return tx.Commit()
}
