// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestWatermillAdapter(t *testing.T) {
	orig := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	var buf bytes.Buffer
	adapter := NewWatermillAdapter(zerolog.New(&buf).Level(zerolog.TraceLevel))

	adapter.Info("subscribed", watermill.LogFields{"topic": "platewise.catalog"})
	adapter.Error("publish failed", errors.New("closed"), nil)
	adapter.With(watermill.LogFields{"subscriber": "hub"}).Debug("message received", nil)
	adapter.Trace("tick", watermill.LogFields{})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d log lines, want 4: %s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"topic":"platewise.catalog"`) {
		t.Errorf("info line missing fields: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"error":"closed"`) || !strings.Contains(lines[1], `"level":"error"`) {
		t.Errorf("error line = %s", lines[1])
	}
	if !strings.Contains(lines[2], `"subscriber":"hub"`) || !strings.Contains(lines[2], `"level":"debug"`) {
		t.Errorf("With() fields not carried: %s", lines[2])
	}
	if !strings.Contains(lines[3], `"level":"trace"`) {
		t.Errorf("trace line = %s", lines[3])
	}
}
