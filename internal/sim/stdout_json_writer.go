package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"kuberbomber/internal/event"
)

// JSONStdoutWriter prints event rows as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Write outputs one event row in JSON format.
func (w *JSONStdoutWriter) Write(row event.Row) error {
	data, _ := json.Marshal(row)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteBatch outputs multiple event rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []event.Row) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}
