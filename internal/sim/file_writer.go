package sim

import (
	"encoding/json"
	"os"
	"sync"

	"kuberbomber/internal/event"
)

// FileWriter writes event rows to a JSONL file, the format the replay
// subcommand reads back.
type FileWriter struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewFileWriter creates a FileWriter at path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileWriter{file: f, enc: json.NewEncoder(f)}, nil
}

// Write logs a single event row.
func (f *FileWriter) Write(row event.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enc.Encode(row)
}

// WriteBatch logs multiple event rows.
func (f *FileWriter) WriteBatch(rows []event.Row) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying file.
func (f *FileWriter) Close() error {
	return f.file.Close()
}
