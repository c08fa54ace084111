package sim

import "kuberbomber/internal/event"

// EventWriter is an interface to support different event log sinks.
type EventWriter interface {
	Write(event.Row) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]event.Row) error
}

// writeAll fans rows out to a writer, using batch mode if supported.
func writeAll(w EventWriter, rows []event.Row) error {
	if bw, ok := w.(batchWriter); ok {
		return bw.WriteBatch(rows)
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}
