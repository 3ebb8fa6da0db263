package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        Info,
		"debug":   Debug,
		" WARN ":  Warn,
		"warning": Warn,
		"error":   Error,
		"nope":    Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestZapLogger_WithMergesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZap(zap.New(core))

	l.With(map[string]any{"request_id": "r-1"}).Info("appointment booked", map[string]any{
		"pet_id": "pet-1",
		"err":    errors.New("boom"),
		"":       "ignored",
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["request_id"] != "r-1" || ctx["pet_id"] != "pet-1" {
		t.Fatalf("missing fields: %#v", ctx)
	}
	if ctx["err"] != "boom" {
		t.Fatalf("expected error field rendered, got %#v", ctx["err"])
	}
	if _, ok := ctx[""]; ok {
		t.Fatalf("empty key should be dropped")
	}
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := NewZap(zap.New(core))

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	l.Warn("shown", nil)

	if logs.Len() != 1 {
		t.Fatalf("expected only warn to pass, got %d entries", logs.Len())
	}
}

func TestBuild_DevelopmentAddsCaller(t *testing.T) {
	for _, dev := range []bool{false, true} {
		var buf bytes.Buffer
		log := &ZapLogger{z: build(Options{Format: FormatJSON, App: "vet-clinic", Development: dev}, zapcore.AddSync(&buf))}
		log.Info("hello", map[string]any{"pet_id": "p1"})

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("dev=%v: invalid json %q: %v", dev, buf.String(), err)
		}
		if line["app"] != "vet-clinic" || line["pet_id"] != "p1" {
			t.Fatalf("dev=%v: missing fields: %v", dev, line)
		}

		caller, ok := line["caller"].(string)
		if ok != dev {
			t.Fatalf("dev=%v: caller present=%v", dev, ok)
		}
		if dev && !strings.Contains(caller, "logger_test.go") {
			t.Fatalf("caller should point to the call site, got %q", caller)
		}
	}
}
