package utils

import (
	"context"
	"testing"
	"time"
)

func TestGetSlowQueryContextSetsDeadline(t *testing.T) {
	ctx, cancel := GetSlowQueryContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline on the derived context")
	}
	if remaining := time.Until(deadline); remaining > SlowQueryTimeout {
		t.Errorf("deadline %v away, want at most %v", remaining, SlowQueryTimeout)
	}
}

func TestGetSlowQueryContextNilParent(t *testing.T) {
	ctx, cancel := GetSlowQueryContext(nil)
	defer cancel()

	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("expected a deadline even without a parent context")
	}
}
