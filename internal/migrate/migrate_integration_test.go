package migrate_test

import (
	"context"
	"testing"

	"figurinha-studio/internal/migrate"
	"figurinha-studio/internal/testdb"
)

func TestApplyIsIdempotent_Integration(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	version, dirty, ok, err := migrate.Version(ctx, pool)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !ok || dirty || version < 1 {
		t.Fatalf("unexpected schema state version=%d dirty=%t ok=%t", version, dirty, ok)
	}
}
