// Package sqlite writes mixed pairs into a SQLite table for ad-hoc queries.
//
// Inserts run inside batched transactions with a prepared statement; the
// connection is tuned for single-writer bulk loading.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/hupe1980/mixgo/model"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultBatchSize is the number of pairs per transaction.
const DefaultBatchSize = 50_000

// ErrClosed is returned by WritePair after Close.
var ErrClosed = errors.New("sqlite: sink closed")

const schema = `
CREATE TABLE IF NOT EXISTS pairs (
	id INTEGER PRIMARY KEY,
	run TEXT NOT NULL,
	strategy TEXT NOT NULL,
	collision_id INTEGER NOT NULL,
	pt_he3 REAL NOT NULL,
	eta_he3 REAL NOT NULL,
	phi_he3 REAL NOT NULL,
	pt_had REAL NOT NULL,
	eta_had REAL NOT NULL,
	phi_had REAL NOT NULL,
	z_vertex REAL NOT NULL,
	centrality REAL NOT NULL,
	is23 INTEGER NOT NULL,
	unlike_sign INTEGER NOT NULL,
	inv_mass REAL NOT NULL,
	p_li4 REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS pairs_run ON pairs(run);
`

const insertPair = `INSERT INTO pairs (
	run, strategy, collision_id,
	pt_he3, eta_he3, phi_he3, pt_had, eta_had, phi_had,
	z_vertex, centrality, is23, unlike_sign, inv_mass, p_li4
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA temp_store = MEMORY",
	"PRAGMA cache_size = -65536",
	"PRAGMA busy_timeout = 30000",
}

// Option configures a Sink.
type Option func(*Sink)

// WithBatchSize sets the number of pairs committed per transaction.
func WithBatchSize(n int) Option {
	return func(s *Sink) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithRun tags rows with a run identifier and strategy name.
func WithRun(run, strategy string) Option {
	return func(s *Sink) {
		s.run = run
		s.strategy = strategy
	}
}

// Sink inserts pairs into the pairs table. It implements mixer.Sink and is
// not safe for concurrent use.
type Sink struct {
	db        *sql.DB
	batchSize int
	run       string
	strategy  string

	tx      *sql.Tx
	stmt    *sql.Stmt
	inBatch int
	pairs   int64
	closed  bool
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Sink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Sink{db: db, batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(s)
	}

	if err := configure(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func configure(db *sql.DB) error {
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: schema: %w", err)
	}
	return nil
}

func (s *Sink) begin() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(insertPair)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	s.tx, s.stmt = tx, stmt
	return nil
}

func (s *Sink) commit() error {
	if s.tx == nil {
		return nil
	}
	_ = s.stmt.Close()
	err := s.tx.Commit()
	s.tx, s.stmt = nil, nil
	s.inBatch = 0
	return err
}

// WritePair inserts one pair.
func (s *Sink) WritePair(p *model.Pair) error {
	if s.closed {
		return ErrClosed
	}
	if s.tx == nil {
		if err := s.begin(); err != nil {
			return err
		}
	}
	_, err := s.stmt.Exec(
		s.run, s.strategy, p.He3.CollisionID,
		p.He3.Pt, p.He3.Eta, p.He3.Phi, p.Hadron.Pt, p.Hadron.Eta, p.Hadron.Phi,
		p.Z, p.Centrality, p.Is23, p.Sign == model.UnlikeSign, p.InvMass, p.P,
	)
	if err != nil {
		return err
	}
	s.pairs++
	s.inBatch++
	if s.inBatch >= s.batchSize {
		return s.commit()
	}
	return nil
}

// Pairs returns the number of pairs inserted by this sink.
func (s *Sink) Pairs() int64 { return s.pairs }

// DB exposes the underlying handle for queries.
func (s *Sink) DB() *sql.DB { return s.db }

// Close commits the open batch and closes the database.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.commit()
	if err == nil {
		_, _ = s.db.Exec("PRAGMA optimize")
	}
	return errors.Join(err, s.db.Close())
}

// Row is a stored pair as read back from the table.
type Row struct {
	Run         string
	Strategy    string
	CollisionID int
	PtHe3       float32
	PtHad       float32
	Z           float32
	Centrality  float32
	Is23        bool
	UnlikeSign  bool
	InvMass     float64
	P           float64
}

// Rows yields the pairs of run in insertion order.
func Rows(ctx context.Context, db *sql.DB, run string) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		rows, err := db.QueryContext(ctx, `SELECT run, strategy, collision_id, pt_he3, pt_had,
			z_vertex, centrality, is23, unlike_sign, inv_mass, p_li4
			FROM pairs WHERE run = ? ORDER BY id`, run)
		if err != nil {
			yield(Row{}, err)
			return
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var r Row
			if err := rows.Scan(&r.Run, &r.Strategy, &r.CollisionID, &r.PtHe3, &r.PtHad,
				&r.Z, &r.Centrality, &r.Is23, &r.UnlikeSign, &r.InvMass, &r.P); err != nil {
				yield(Row{}, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Row{}, err)
		}
	}
}
