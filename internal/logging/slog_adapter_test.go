// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		zerologLevel zerolog.Level
		slogLevel    slog.Level
		want         bool
	}{
		{"debug logger enables debug", zerolog.DebugLevel, slog.LevelDebug, true},
		{"info logger disables debug", zerolog.InfoLevel, slog.LevelDebug, false},
		{"info logger enables warn", zerolog.InfoLevel, slog.LevelWarn, true},
		{"error logger disables warn", zerolog.ErrorLevel, slog.LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := &SlogHandler{logger: zerolog.New(nil).Level(tt.zerologLevel)}
			if got := h.Enabled(context.Background(), tt.slogLevel); got != tt.want {
				t.Errorf("Enabled(%v) = %v, want %v", tt.slogLevel, got, tt.want)
			}
		})
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		log       func(*slog.Logger)
		wantLevel string
	}{
		{"info", func(l *slog.Logger) { l.Info("service started", "service", "feed-hub") }, "info"},
		{"warn", func(l *slog.Logger) { l.Warn("service restarting") }, "warn"},
		{"error", func(l *slog.Logger) { l.Error("service failed") }, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.log(slog.New(&SlogHandler{logger: zerolog.New(&buf)}))
			if !strings.Contains(buf.String(), `"level":"`+tt.wantLevel+`"`) {
				t.Errorf("expected level %s in output: %s", tt.wantLevel, buf.String())
			}
		})
	}
}

func TestSlogHandler_AttrTypes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(&SlogHandler{logger: zerolog.New(&buf)})
	logger.Info("attrs",
		slog.String("s", "v"),
		slog.Int("i", 3),
		slog.Uint64("u", 4),
		slog.Float64("f", 1.5),
		slog.Bool("b", true),
		slog.Duration("d", time.Second),
		slog.Any("a", []int{1}),
	)

	output := buf.String()
	for _, want := range []string{`"s":"v"`, `"i":3`, `"u":4`, `"f":1.5`, `"b":true`, `"d":`, `"a":[1]`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandler_WithAttrsAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := &SlogHandler{logger: zerolog.New(&buf)}
	logger := slog.New(base.WithAttrs([]slog.Attr{slog.String("tree", "platewise")}).WithGroup("outer").WithGroup("inner"))
	logger.Info("grouped", "key", "value", slog.Group("g", slog.Int("n", 1)))

	output := buf.String()
	if !strings.Contains(output, `"outer.inner.tree":"platewise"`) {
		t.Errorf("expected grouped pre-configured attr in output: %s", output)
	}
	if !strings.Contains(output, `"outer.inner.key":"value"`) {
		t.Errorf("expected outer-to-inner group prefix in output: %s", output)
	}
	if !strings.Contains(output, `"outer.inner.g.n":1`) {
		t.Errorf("expected nested group attr in output: %s", output)
	}

	if base.WithGroup("") != base {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
