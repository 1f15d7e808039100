package zapctx

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextDefaultsToNop(t *testing.T) {
	if logger := FromContext(context.Background()); logger == nil {
		t.Fatalf("expected a logger")
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core))

	ctx, _ = With(ctx, zap.String("script", "demo.bsh"))
	ctx, _ = Named(ctx, "service")
	FromContext(ctx).Info("ran")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "service" {
		t.Fatalf("expected logger name service, got %q", entry.LoggerName)
	}
	if got := entry.ContextMap()["script"]; got != "demo.bsh" {
		t.Fatalf("expected script field, got %#v", got)
	}
}
