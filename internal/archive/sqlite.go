package archive

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

func ConnectSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS battle_reports (
	battle_id         TEXT PRIMARY KEY,
	attacking_id      TEXT NOT NULL,
	defending_id      TEXT NOT NULL,
	winner_id         TEXT NOT NULL,
	victory_condition TEXT NOT NULL,
	rounds            INTEGER NOT NULL,
	result_json       TEXT NOT NULL,
	log_json          TEXT NOT NULL,
	created_at        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_battle_reports_created ON battle_reports (created_at);
`
