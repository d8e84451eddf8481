package store

import (
	"context"
	"errors"
	"os"
	"slices"
	"testing"
	"time"

	"gto-rangeviewer/server/strategy"
)

const payload = `{"settings":{"handdata":{"stacks":[2000,1000,2000],"blinds":[100,50]}},
"nodes":{"0":{"player":7,"street":0,"sequence":[],"actions":[]},
         "3":{"player":6,"street":0,"sequence":[],"actions":[]},
         "4":{"player":6,"street":0,"sequence":[0],"actions":[]}}}`

func TestDigestStable(t *testing.T) {
	a := Digest([]byte(payload))
	if len(a) != 64 || a != Digest([]byte(payload)) {
		t.Fatalf("digest not stable: %q", a)
	}
	if a == Digest([]byte(payload+" ")) {
		t.Fatalf("different payloads must not share a digest")
	}
}

func TestDescribe(t *testing.T) {
	exp, err := strategy.DecodeBytes([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := Describe("  btn vs bb  ", []byte(payload), exp)
	if m.Name != "btn vs bb" || m.Nodes != 3 || m.BigBlind != 100 {
		t.Fatalf("unexpected meta %+v", m)
	}
	if !slices.Equal(m.Stacks, []int{20, 10}) {
		t.Fatalf("stacks = %v", m.Stacks)
	}
	if !slices.Equal(m.Roots, []string{"SB", "BB"}) {
		t.Fatalf("roots = %v", m.Roots)
	}
}

// Runs against a real database only when STORE_TEST_DATABASE_URL is set.
func TestExportRoundTrip(t *testing.T) {
	dsn := os.Getenv("STORE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("STORE_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close(ctx)
	if err := db.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	exp, err := strategy.DecodeBytes([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	saved, err := db.SaveExport(ctx, Describe("round trip", []byte(payload), exp), []byte(payload))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	again, err := db.SaveExport(ctx, Describe("renamed", []byte(payload), exp), []byte(payload))
	if err != nil {
		t.Fatalf("resave: %v", err)
	}
	if again.ID != saved.ID {
		t.Fatalf("same payload stored twice: %d and %d", saved.ID, again.ID)
	}

	got, meta, err := db.LoadExport(ctx, saved.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Name != "renamed" || len(got.Nodes) != 3 {
		t.Fatalf("loaded %+v with %d nodes", meta, len(got.Nodes))
	}
	if err := db.RecordView(ctx, saved.ID, strategy.BB, 20); err != nil {
		t.Fatalf("record view: %v", err)
	}

	list, err := db.ListExports(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) == 0 || list[0].ID != saved.ID {
		t.Fatalf("latest import should be first: %+v", list)
	}

	if _, _, err := db.LoadExport(ctx, -1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
