package sim

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kuberbomber/internal/event"
)

func TestReplayLog(t *testing.T) {
	rows := []event.Row{
		{EventType: event.FailureInitiated, FailureID: "f1", Timestamp: time.Unix(0, 0).UTC()},
		{EventType: event.RecoveryCompleted, FailureID: "f1", Timestamp: time.Unix(1, 0).UTC()},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	cw := &collectWriter{}
	if err := ReplayLog(&buf, cw, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(cw.rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(cw.rows))
	}
	for i, r := range rows {
		if cw.rows[i].FailureID != r.FailureID || cw.rows[i].EventType != r.EventType {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, cw.rows[i], r)
		}
	}
}

func TestReplayLogSpeedCompressesDelay(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	rows := []event.Row{
		{FailureID: "f1", Timestamp: base},
		{FailureID: "f2", Timestamp: base.Add(100 * time.Millisecond)},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	cw := &collectWriter{}
	start := time.Now()
	if err := ReplayLog(&buf, cw, 100); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("speed 100 replay took %v, expected ~1ms of delay", elapsed)
	}
}

func TestReplayLogSkipsBlankLines(t *testing.T) {
	input := "\n" + `{"event_type":"failure_initiated","failure_id":"f1"}` + "\n\n" +
		`{"event_type":"recovery_completed","failure_id":"f1"}` + "\n"
	cw := &collectWriter{}
	if err := ReplayLog(strings.NewReader(input), cw, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(cw.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(cw.rows))
	}
}

func TestReplayLogMalformedLine(t *testing.T) {
	input := `{"event_type":"failure_initiated","failure_id":"f1"}` + "\nnot json\n"
	err := ReplayLog(strings.NewReader(input), &collectWriter{}, 0)
	if err == nil {
		t.Fatalf("expected error for malformed line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error should name the offending line: %v", err)
	}
}

func TestReplayLogFileMissing(t *testing.T) {
	if err := ReplayLogFile(filepath.Join(t.TempDir(), "nope.jsonl"), &collectWriter{}, 1); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
