// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestGenerateIDs(t *testing.T) {
	t.Parallel()

	if id := GenerateCorrelationID(); len(id) != 8 {
		t.Errorf("GenerateCorrelationID() length = %d, want 8", len(id))
	}
	if GenerateCorrelationID() == GenerateCorrelationID() {
		t.Error("GenerateCorrelationID() returned duplicates")
	}
	if _, err := uuid.Parse(GenerateRequestID()); err != nil {
		t.Errorf("GenerateRequestID() is not a UUID: %v", err)
	}
}

func TestContextValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if CorrelationIDFromContext(ctx) != "" || RequestIDFromContext(ctx) != "" || UserIDFromContext(ctx) != "" {
		t.Error("empty context should carry no IDs")
	}

	ctx = ContextWithNewCorrelationID(ctx)
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithUserID(ctx, "user-1")

	first := CorrelationIDFromContext(ctx)
	if len(first) != 8 {
		t.Errorf("CorrelationIDFromContext() = %q, want 8 chars", first)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q, want req-1", got)
	}
	if got := UserIDFromContext(ctx); got != "user-1" {
		t.Errorf("UserIDFromContext() = %q, want user-1", got)
	}

	ctx = ContextWithNewCorrelationID(ctx)
	if got := CorrelationIDFromContext(ctx); got == first || got == "" {
		t.Errorf("ContextWithNewCorrelationID() kept %q", got)
	}
}

func TestCtxAddsContextFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithNewCorrelationID(ctx)
	ctx = ContextWithRequestID(ctx, "req-456")
	ctx = ContextWithUserID(ctx, "diner-7")

	Ctx(ctx).Info().Msg("context test")

	output := buf.String()
	corr := `"correlation_id":"` + CorrelationIDFromContext(ctx) + `"`
	for _, want := range []string{corr, `"request_id":"req-456"`, `"user_id":"diner-7"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestCtxWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithNewCorrelationID(ctx)

	logger := CtxWith(ctx).Str("restaurant_id", "r1").Logger()
	logger.Info().Msg("ctxwith test")

	output := buf.String()
	if !strings.Contains(output, CorrelationIDFromContext(ctx)) || !strings.Contains(output, "restaurant_id") {
		t.Errorf("expected correlation_id and extra field in output: %s", output)
	}
	if strings.Contains(output, "request_id") {
		t.Errorf("unset request_id should be omitted: %s", output)
	}
}

func TestLoggerFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	logger := LoggerFromContext(context.Background())
	if logger.GetLevel() == zerolog.Disabled {
		t.Error("expected a usable global logger")
	}
}
