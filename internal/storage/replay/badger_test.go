package replay

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBadger_HasAdd(t *testing.T) {
	b, err := NewBadger(t.TempDir(), quietLogger())
	if err != nil {
		t.Fatalf("NewBadger() error = %v", err)
	}
	defer b.Close()

	ctx := context.Background()

	seen, err := b.Has(ctx, "1700000000000:token")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if seen {
		t.Error("Has() on empty cache = true")
	}

	if err := b.Add(ctx, "1700000000000:token", time.Minute); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	seen, err = b.Has(ctx, "1700000000000:token")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if !seen {
		t.Error("Has() after Add() = false")
	}

	// Distinct keys stay distinct through hashing.
	if seen, _ := b.Has(ctx, "1700000000000:other"); seen {
		t.Error("Has() for a different key = true")
	}
}

func TestBadger_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	b, err := NewBadger(dir, quietLogger())
	if err != nil {
		t.Fatalf("NewBadger() error = %v", err)
	}
	if err := b.Add(ctx, "persistent-key", time.Hour); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewBadger(dir, quietLogger())
	if err != nil {
		t.Fatalf("NewBadger() reopen error = %v", err)
	}
	defer reopened.Close()

	seen, err := reopened.Has(ctx, "persistent-key")
	if err != nil {
		t.Fatalf("Has() after reopen error = %v", err)
	}
	if !seen {
		t.Error("replay entry lost across restart")
	}
}

func TestBadger_RequiresDir(t *testing.T) {
	if _, err := NewBadger("", quietLogger()); err == nil {
		t.Error("NewBadger(\"\") should fail")
	}
}
