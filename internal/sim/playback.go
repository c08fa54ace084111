package sim

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"kuberbomber/internal/event"
)

// maxReplayLine bounds a single event log line. Rows carry the full
// interval/recovery history in additional sinks but never approach this.
const maxReplayLine = 1 << 20

// ReplayLog streams a JSONL event log from r into writer, line by line,
// pacing output by the recorded inter-event gaps. speed scales the gaps
// (2 plays back twice as fast); speed <= 0 disables pacing entirely.
// Blank lines are tolerated, a malformed line aborts the replay.
func ReplayLog(r io.Reader, writer EventWriter, speed float64) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxReplayLine)

	var prev time.Time
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var row event.Row
		if err := json.Unmarshal(line, &row); err != nil {
			return fmt.Errorf("event log line %d: %w", lineNo, err)
		}
		if speed > 0 && !prev.IsZero() {
			if gap := row.Timestamp.Sub(prev); gap > 0 {
				time.Sleep(time.Duration(float64(gap) / speed))
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
		prev = row.Timestamp
	}
	return sc.Err()
}

// ReplayLogFile opens a JSONL event log and replays its rows.
func ReplayLogFile(path string, writer EventWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
