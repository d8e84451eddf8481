package store

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gto-rangeviewer/server/strategy"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

var ErrNotFound = errors.New("store: export not found")

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context) { db.Pool.Close() }

func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// ExportMeta describes one archived export without its payload.
type ExportMeta struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Digest     string    `json:"digest"`
	Nodes      int       `json:"nodes"`
	BigBlind   float64   `json:"big_blind"`
	Stacks     []int     `json:"stacks"`
	Roots      []string  `json:"roots"`
	ImportedAt time.Time `json:"imported_at"`
}

// Digest is the hex sha256 of a raw payload. Identical payloads share one row.
func Digest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Describe fills the payload-derived fields of an ExportMeta.
func Describe(name string, raw []byte, exp strategy.Export) ExportMeta {
	settings := exp.Settings.HandData
	bb, _ := strategy.BigBlind(settings)
	var roots []string
	for _, p := range strategy.Load(exp).Roots() {
		roots = append(roots, p.String())
	}
	return ExportMeta{
		Name:     strings.TrimSpace(name),
		Digest:   Digest(raw),
		Nodes:    len(exp.Nodes),
		BigBlind: bb,
		Stacks:   strategy.AvailableStacksInBB(settings, bb),
		Roots:    roots,
	}
}

/* -----------------------------
   Export archive
------------------------------*/

// SaveExport archives a raw payload and returns its row. Re-importing the
// same bytes only refreshes the name and timestamp.
func (db *DB) SaveExport(ctx context.Context, meta ExportMeta, raw []byte) (ExportMeta, error) {
	if meta.Digest == "" {
		meta.Digest = Digest(raw)
	}
	if meta.Stacks == nil {
		meta.Stacks = []int{}
	}
	if meta.Roots == nil {
		meta.Roots = []string{}
	}
	err := db.QueryRow(ctx, `
        INSERT INTO exports(name, digest, node_count, big_blind, stacks_bb, roots, payload)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (digest) DO UPDATE
          SET name = EXCLUDED.name,
              imported_at = now()
        RETURNING id, imported_at
    `, meta.Name, meta.Digest, meta.Nodes, meta.BigBlind, meta.Stacks, meta.Roots, raw).Scan(&meta.ID, &meta.ImportedAt)
	if err != nil {
		return ExportMeta{}, fmt.Errorf("save export: %w", err)
	}
	return meta, nil
}

// ListExports returns the most recently imported exports first.
func (db *DB) ListExports(ctx context.Context, limit int) ([]ExportMeta, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
		SELECT id, name, digest, node_count, big_blind, stacks_bb, roots, imported_at
		  FROM exports
		 ORDER BY imported_at DESC, id DESC
		 LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ExportMeta, 0, limit)
	for rows.Next() {
		var m ExportMeta
		if err := rows.Scan(&m.ID, &m.Name, &m.Digest, &m.Nodes, &m.BigBlind, &m.Stacks, &m.Roots, &m.ImportedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadExport fetches and decodes an archived payload.
func (db *DB) LoadExport(ctx context.Context, id int64) (strategy.Export, ExportMeta, error) {
	var (
		m   ExportMeta
		raw []byte
	)
	err := db.QueryRow(ctx, `
		SELECT id, name, digest, node_count, big_blind, stacks_bb, roots, imported_at, payload
		  FROM exports
		 WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Digest, &m.Nodes, &m.BigBlind, &m.Stacks, &m.Roots, &m.ImportedAt, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return strategy.Export{}, ExportMeta{}, ErrNotFound
		}
		return strategy.Export{}, ExportMeta{}, err
	}
	exp, err := strategy.DecodeBytes(raw)
	if err != nil {
		return strategy.Export{}, ExportMeta{}, fmt.Errorf("export %d: %w", id, err)
	}
	return exp, m, nil
}

// RecordView logs that a root was opened for an archived export.
func (db *DB) RecordView(ctx context.Context, exportID int64, pos strategy.Position, stackBB int) error {
	_, err := db.Exec(ctx, `
        INSERT INTO export_views(export_id, position, stack_bb)
        VALUES ($1,$2,$3)
    `, exportID, pos.String(), stackBB)
	return err
}
