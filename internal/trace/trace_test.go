package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
		err  bool
	}{
		{in: "", want: LevelOff},
		{in: "phase", want: LevelPhase},
		{in: "DEBUG", want: LevelDebug},
		{in: "loud", err: true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if (err != nil) != tc.err {
			t.Fatalf("ParseLevel(%q) err = %v", tc.in, err)
		}
		if !tc.err && got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLevelPhaseSkipsAttempts(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopeStage) {
		t.Error("phase level should emit stage events")
	}
	if LevelPhase.ShouldEmit(ScopeAttempt) {
		t.Error("phase level should not emit attempt events")
	}
	if !LevelDetail.ShouldEmit(ScopeAttempt) {
		t.Error("detail level should emit attempt events")
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)

	span := Begin(tr, ScopeStage, "probe", 0)
	span.WithExtra("accepted", "2").End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 events, got %d: %q", len(lines), buf.String())
	}
	var end jsonEvent
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if end.Kind != "end" || end.Name != "probe" || end.Detail != "ok" || end.Extra["accepted"] != "2" {
		t.Errorf("unexpected end event: %+v", end)
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeAttempt, name, "", 0)
	}
	snap := ring.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestNewReturnsRingAtErrorLevel(t *testing.T) {
	tr, err := New(Config{Level: LevelError})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := Ring(tr); !ok {
		t.Fatal("error level tracer should expose a ring")
	}
}

func TestContextParent(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), tr)

	parent := Begin(FromContext(ctx), ScopeStage, "select", 0)
	ctx = WithSpan(ctx, parent)
	if ParentID(ctx) != parent.ID() {
		t.Fatalf("ParentID = %d, want %d", ParentID(ctx), parent.ID())
	}
	if FromContext(context.Background()) != Nop {
		t.Error("empty context should yield Nop")
	}
}

func TestHeartbeat(t *testing.T) {
	ring := NewRingTracer(64, LevelPhase)
	hb := StartHeartbeat(ring, time.Millisecond)
	if hb == nil {
		t.Fatal("StartHeartbeat returned nil for an enabled tracer")
	}

	deadline := time.Now().Add(2 * time.Second)
	for countKind(ring.Snapshot(), KindHeartbeat) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no heartbeat within 2s")
		}
		time.Sleep(time.Millisecond)
	}

	hb.Stop()
	hb.Stop()
	after := countKind(ring.Snapshot(), KindHeartbeat)
	time.Sleep(5 * time.Millisecond)
	if got := countKind(ring.Snapshot(), KindHeartbeat); got != after {
		t.Errorf("heartbeats after Stop: %d, want %d", got, after)
	}
}

func TestHeartbeatDisabled(t *testing.T) {
	if hb := StartHeartbeat(Nop, time.Millisecond); hb != nil {
		t.Error("heartbeat started on Nop tracer")
	}
	if hb := StartHeartbeat(NewRingTracer(4, LevelPhase), 0); hb != nil {
		t.Error("heartbeat started with zero interval")
	}
	var hb *Heartbeat
	hb.Stop()
}

func countKind(events []Event, kind Kind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
