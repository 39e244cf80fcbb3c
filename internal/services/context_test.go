package services

import (
	"context"
	"testing"
)

func TestContextHelpersRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = WithItemID(ctx, "8812")
	ctx = WithStrategy(ctx, "split_title")
	ctx = WithRunID(ctx, "run-1")
	ctx = WithRequestID(ctx, "req-1")

	if id, ok := ItemIDFromContext(ctx); !ok || id != "8812" {
		t.Fatalf("unexpected item id %q (ok=%v)", id, ok)
	}
	if s, ok := StrategyFromContext(ctx); !ok || s != "split_title" {
		t.Fatalf("unexpected strategy %q (ok=%v)", s, ok)
	}
	if r, ok := RunIDFromContext(ctx); !ok || r != "run-1" {
		t.Fatalf("unexpected run id %q (ok=%v)", r, ok)
	}
	if r, ok := RequestIDFromContext(ctx); !ok || r != "req-1" {
		t.Fatalf("unexpected request id %q (ok=%v)", r, ok)
	}
}

func TestContextHelpersIgnoreEmpty(t *testing.T) {
	ctx := WithItemID(context.Background(), "")
	if _, ok := ItemIDFromContext(ctx); ok {
		t.Fatal("expected empty item id to be ignored")
	}
	if _, ok := StrategyFromContext(WithStrategy(context.Background(), "")); ok {
		t.Fatal("expected empty strategy to be ignored")
	}
}
