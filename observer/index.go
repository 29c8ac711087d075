package observer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/touka-aoi/skirmish/domain"
)

// IndexSink は決着を SQLite の kills テーブルに記録し、集計クエリに答える。
type IndexSink struct {
	db  *sql.DB
	run string

	mu  sync.Mutex
	seq int64
}

func OpenIndexSink(path, run string) (*IndexSink, error) {
	if path == "" {
		return nil, fmt.Errorf("observer: empty index path")
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

	if err := initIndex(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("observer: init index: %w", err)
	}
	return &IndexSink{db: db, run: run}, nil
}

func initIndex(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS kills (
			run TEXT NOT NULL,
			seq INTEGER NOT NULL,
			at TEXT NOT NULL,
			attacker_id INTEGER NOT NULL,
			attacker_kind INTEGER NOT NULL,
			attacker_name TEXT NOT NULL,
			defender_id INTEGER NOT NULL,
			defender_kind INTEGER NOT NULL,
			defender_name TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			PRIMARY KEY (run, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_kills_run_kind ON kills(run, attacker_kind);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *IndexSink) OnFight(ctx context.Context, outcome domain.CombatOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kills (run, seq, at, attacker_id, attacker_kind, attacker_name,
			defender_id, defender_kind, defender_name, x, y)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.run, s.seq, outcome.At.UTC().Format("2006-01-02T15:04:05.000000000Z07:00"),
		int64(outcome.Attacker.ID), int(outcome.Attacker.Kind), outcome.Attacker.Name,
		int64(outcome.Defender.ID), int(outcome.Defender.Kind), outcome.Defender.Name,
		outcome.Defender.Position.X, outcome.Defender.Position.Y,
	)
	return err
}

// TallyByKind はこの実行における攻撃側種別ごとの撃破数。
func (s *IndexSink) TallyByKind(ctx context.Context) (map[domain.Kind]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attacker_kind, COUNT(*) FROM kills WHERE run = ? GROUP BY attacker_kind`, s.run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.Kind]int)
	for rows.Next() {
		var kind, n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[domain.Kind(kind)] = n
	}
	return out, rows.Err()
}

func (s *IndexSink) Close() error {
	return s.db.Close()
}

var _ Sink = (*IndexSink)(nil)
