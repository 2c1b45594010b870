// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ckpt implements a restart store for the state of macro points. Each committed
// increment is a step; each macro point (element, integration point) of a step owns a blob
// written by rve.Material.Encode.
package ckpt

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"

	"github.com/paddyschmidt/gofe2/fem"
	"github.com/paddyschmidt/gofe2/rve"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a step or point is not in the store
var ErrNotFound = errors.New("checkpoint not found")

// PointError reports a failure concerning one macro point of a step
type PointError struct {
	Step int   // committed increment
	Eid  int   // macro element id
	Ip   int   // macro integration point index
	Err  error // cause
}

func (o *PointError) Error() string {
	return io.Sf("checkpoint of step %d, element %d, ip %d: %v", o.Step, o.Eid, o.Ip, o.Err)
}

func (o *PointError) Unwrap() error { return o.Err }

// Record holds the state of one macro point at one step
type Record struct {
	Step    int    // committed increment
	Eid     int    // macro element id
	Ip      int    // macro integration point index
	EncType string // "gob" or "json"
	Data    []byte // encoded state
}

// Store keeps checkpoints in a SQLite database
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS steps (
	step INTEGER PRIMARY KEY,
	t    REAL    NOT NULL
);
CREATE TABLE IF NOT EXISTS points (
	step    INTEGER NOT NULL REFERENCES steps(step) ON DELETE CASCADE,
	eid     INTEGER NOT NULL,
	ip      INTEGER NOT NULL,
	enctype TEXT    NOT NULL,
	data    BLOB    NOT NULL,
	PRIMARY KEY (step, eid, ip)
);
`

// Open opens (or creates) a store and applies the schema
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, chk.Err("checkpoint path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, chk.Err("cannot open sqlite database %q:\n%v", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, chk.Err("cannot ping sqlite database %q:\n%v", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, chk.Err("cannot apply schema:\n%v", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put writes one record; the step must have been created with PutStep
func (s *Store) Put(ctx context.Context, r Record) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return put(ctx, s.db, r)
}

// PutStep creates or replaces a step with pseudo-time t
func (s *Store) PutStep(ctx context.Context, step int, t float64) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return putStep(ctx, s.db, step, t)
}

// Get reads one record
func (s *Store) Get(ctx context.Context, step, eid, ip int) (r Record, err error) {
	if err = s.check(ctx); err != nil {
		return
	}
	r = Record{Step: step, Eid: eid, Ip: ip}
	err = s.db.QueryRowContext(ctx, `
SELECT enctype, data FROM points WHERE step = ? AND eid = ? AND ip = ?
`, step, eid, ip).Scan(&r.EncType, &r.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return r, &PointError{step, eid, ip, ErrNotFound}
	}
	if err != nil {
		return r, chk.Err("cannot get point:\n%v", err)
	}
	return
}

// LatestStep returns the last step and its pseudo-time; ErrNotFound if the store is empty
func (s *Store) LatestStep(ctx context.Context) (step int, t float64, err error) {
	if err = s.check(ctx); err != nil {
		return
	}
	err = s.db.QueryRowContext(ctx, `SELECT step, t FROM steps ORDER BY step DESC LIMIT 1`).Scan(&step, &t)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, chk.Err("cannot get latest step:\n%v", err)
	}
	return
}

// Npoints returns the number of records of a step
func (s *Store) Npoints(ctx context.Context, step int) (n int, err error) {
	if err = s.check(ctx); err != nil {
		return
	}
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM points WHERE step = ?`, step).Scan(&n)
	if err != nil {
		return 0, chk.Err("cannot count points:\n%v", err)
	}
	return
}

// SaveStep encodes all materials and writes them with the step in one transaction
func (s *Store) SaveStep(ctx context.Context, step int, t float64, mats []*rve.Material, enctype string) (err error) {
	if err = s.check(ctx); err != nil {
		return
	}
	if enctype == "" {
		enctype = "gob"
	}
	recs := make([]Record, len(mats))
	for i, m := range mats {
		var buf bytes.Buffer
		err = m.Encode(fem.GetEncoder(&buf, enctype))
		if err != nil {
			return &PointError{step, m.Eid, m.Ip, err}
		}
		recs[i] = Record{step, m.Eid, m.Ip, enctype, buf.Bytes()}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return chk.Err("cannot begin transaction:\n%v", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = putStep(ctx, tx, step, t); err != nil {
		return
	}
	for _, r := range recs {
		if err = put(ctx, tx, r); err != nil {
			return
		}
	}
	if err = tx.Commit(); err != nil {
		return chk.Err("cannot commit transaction:\n%v", err)
	}
	return
}

// LoadStep decodes the state of all materials from a step
func (s *Store) LoadStep(ctx context.Context, step int, mats []*rve.Material) (err error) {
	for _, m := range mats {
		r, err := s.Get(ctx, step, m.Eid, m.Ip)
		if err != nil {
			return err
		}
		err = m.Decode(fem.GetDecoder(bytes.NewReader(r.Data), r.EncType))
		if err != nil {
			return &PointError{step, m.Eid, m.Ip, err}
		}
	}
	return
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

// execer is implemented by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return chk.Err("checkpoint store is not open")
	}
	return nil
}

func putStep(ctx context.Context, db execer, step int, t float64) error {
	if step < 0 {
		return chk.Err("step must be non-negative. %d is incorrect", step)
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO steps (step, t) VALUES (?, ?)
ON CONFLICT(step) DO UPDATE SET t = excluded.t
`, step, t)
	if err != nil {
		return chk.Err("cannot put step %d:\n%v", step, err)
	}
	return nil
}

func put(ctx context.Context, db execer, r Record) error {
	if r.EncType != "gob" && r.EncType != "json" {
		return chk.Err("encoder type %q is not available", r.EncType)
	}
	if len(r.Data) == 0 {
		return chk.Err("data of element %d, ip %d is empty", r.Eid, r.Ip)
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO points (step, eid, ip, enctype, data) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(step, eid, ip) DO UPDATE SET enctype = excluded.enctype, data = excluded.data
`, r.Step, r.Eid, r.Ip, r.EncType, r.Data)
	if err != nil {
		return chk.Err("cannot put point:\n%v", err)
	}
	return nil
}
