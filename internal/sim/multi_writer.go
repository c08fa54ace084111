package sim

import "kuberbomber/internal/event"

// MultiWriter fans event rows out to multiple writers.
type MultiWriter struct {
	writers []EventWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...EventWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// Write sends an event row to all writers.
func (mw *MultiWriter) Write(row event.Row) error {
	for _, w := range mw.writers {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple event rows to all writers, using batch mode
// where supported.
func (mw *MultiWriter) WriteBatch(rows []event.Row) error {
	for _, w := range mw.writers {
		if err := writeAll(w, rows); err != nil {
			return err
		}
	}
	return nil
}
