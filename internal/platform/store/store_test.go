package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

// TestOpen_NoBackends_AllSeamsNil leaves every seam nil when nothing is enabled
func TestOpen_NoBackends_AllSeamsNil(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s == nil {
		t.Fatalf("Open returned nil store")
	}
	if s.PG != nil || s.CH != nil || s.RDS != nil {
		t.Fatalf("unexpected seams set PG=%T CH=%T RDS=%T", s.PG, s.CH, s.RDS)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close on empty store returned error: %v", err)
	}
}

// TestOpen_PGEnabled_BadURL_BubblesError covers the PG error path
func TestOpen_PGEnabled_BadURL_BubblesError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := Config{
		PG: PGConfig{
			Enabled:     true,
			URL:         "://bad", // parse error inside pg.Open
			MaxConns:    1,
			SlowQueryMs: 0,
			LogSQL:      false,
		},
	}

	s, err := Open(ctx, cfg)
	if err == nil {
		t.Fatalf("expected Open error for bad PG URL, got store=%#v", s)
	}
	if s != nil {
		t.Fatalf("expected nil store on error, got %#v", s)
	}
}

// TestOpen_CHEnabled_BadURL_BubblesError covers the CH error path
func TestOpen_CHEnabled_BadURL_BubblesError(t *testing.T) {
	t.Parallel()

	cfg := Config{
		CH: CHConfig{
			Enabled: true,
			URL:     "://bad", // parse error inside ch.Open
		},
	}

	s, err := Open(context.Background(), cfg)
	if err == nil {
		t.Fatalf("expected Open error for bad CH URL, got store=%#v", s)
	}
	if s != nil {
		t.Fatalf("expected nil store on error, got %#v", s)
	}
}

// TestOpen_RDSEnabled_Unreachable_BubblesError covers the redis error path
func TestOpen_RDSEnabled_Unreachable_BubblesError(t *testing.T) {
	t.Parallel()

	cfg := Config{
		RDS: RedisConfig{
			Enabled: true,
			Addr:    "127.0.0.1:1", // closed port, immediate refusal
		},
	}

	s, err := Open(context.Background(), cfg)
	if err == nil {
		t.Fatalf("expected Open error for unreachable redis, got store=%#v", s)
	}
	if s != nil {
		t.Fatalf("expected nil store on error, got %#v", s)
	}
}

// TestOpen_OptionsApplied_NoPanicOnWithLogger exercises the WithLogger option path
func TestOpen_OptionsApplied_NoPanicOnWithLogger(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Build a zero-value zerolog.Logger (valid, no-op)
	var zl zerolog.Logger

	s, err := Open(ctx, Config{}, WithLogger(zl))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s == nil {
		t.Fatalf("Open returned nil store")
	}
	// Close on empty store should be fine
	if e := s.Close(ctx); e != nil {
		t.Fatalf("Close on empty store returned error: %v", e)
	}
}

// TestOpen_MultipleBackends_ErrShortCircuits verifies we stop on the first failing backend path
func TestOpen_MultipleBackends_ErrShortCircuits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := Config{
		PG: PGConfig{
			Enabled: true,
			URL:     "://bad", // will fail first
		},
		CH: CHConfig{
			Enabled: true,
			URL:     "clickhouse://127.0.0.1:9000",
		},
	}

	s, err := Open(ctx, cfg)
	if err == nil {
		t.Fatalf("expected Open error on first failing backend")
	}
	if s != nil {
		t.Fatalf("expected nil store when Open fails early, got %#v", s)
	}
}
