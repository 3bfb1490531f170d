package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"squadsim/internal/combat"
)

var ErrNotFound = errors.New("battle report not found")

// Report is one finished battle as stored.
type Report struct {
	BattleID         string          `json:"battle_id"`
	AttackingID      string          `json:"attacking_id"`
	DefendingID      string          `json:"defending_id"`
	WinnerID         string          `json:"winner_id"`
	VictoryCondition string          `json:"victory_condition"`
	Rounds           int             `json:"rounds"`
	Result           json.RawMessage `json:"result"`
	Log              json.RawMessage `json:"log,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, report *Report) error
	Get(ctx context.Context, battleID string) (*Report, error)
	List(ctx context.Context, limit int) ([]Report, error)
}

// NewReport encodes a finished battle for storage.
func NewReport(attackingID, defendingID string, res *combat.BattleResult, log []combat.LogEntry, at time.Time) (*Report, error) {
	if res == nil {
		return nil, errors.New("archive: battle has no result")
	}
	rb, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	if log == nil {
		log = []combat.LogEntry{}
	}
	lb, err := json.Marshal(log)
	if err != nil {
		return nil, fmt.Errorf("encode log: %w", err)
	}
	return &Report{
		BattleID: res.BattleID, AttackingID: attackingID, DefendingID: defendingID,
		WinnerID: res.Winner.ID, VictoryCondition: res.VictoryCondition.String(), Rounds: res.Rounds,
		Result: rb, Log: lb, CreatedAt: at.UTC(),
	}, nil
}

// DecodeResult unpacks the stored result.
func (r *Report) DecodeResult() (*combat.BattleResult, error) {
	var res combat.BattleResult
	if err := json.Unmarshal(r.Result, &res); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", r.BattleID, err)
	}
	return &res, nil
}

type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Open connects and creates the schema if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := ConnectSQLite(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return NewStore(db), nil
}

func (s *Store) Close() error { return s.DB.Close() }

func (s *Store) Create(ctx context.Context, r *Report) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO battle_reports
		 (battle_id, attacking_id, defending_id, winner_id, victory_condition, rounds, result_json, log_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BattleID, r.AttackingID, r.DefendingID, r.WinnerID, r.VictoryCondition, r.Rounds,
		string(r.Result), string(r.Log), r.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert report %s: %w", r.BattleID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, battleID string) (*Report, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT battle_id, attacking_id, defending_id, winner_id, victory_condition, rounds, result_json, log_json, created_at
		 FROM battle_reports WHERE battle_id = ?`, battleID)
	r, err := scanReport(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, battleID)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// List returns the newest reports first, without their logs.
func (s *Store) List(ctx context.Context, limit int) ([]Report, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT battle_id, attacking_id, defending_id, winner_id, victory_condition, rounds, result_json, '' AS log_json, created_at
		 FROM battle_reports ORDER BY created_at DESC, battle_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := []Report{}
	for rows.Next() {
		r, err := scanReport(rows.Scan, false)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanReport(scan func(...any) error, withLog bool) (*Report, error) {
	var r Report
	var result, log, created string
	if err := scan(&r.BattleID, &r.AttackingID, &r.DefendingID, &r.WinnerID, &r.VictoryCondition, &r.Rounds,
		&result, &log, &created); err != nil {
		return nil, err
	}
	r.Result = json.RawMessage(result)
	if withLog {
		r.Log = json.RawMessage(log)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	r.CreatedAt = t
	return &r, nil
}
