package sim

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"

	"kuberbomber/internal/event"
)

// csvHeader is the column order of the persisted event log.
var csvHeader = []string{
	"timestamp", "simulation_time_hours", "real_time_seconds",
	"event_type", "failure_mode", "target", "target_type",
	"failure_id", "start_time", "end_time",
	"duration_seconds", "duration_hours",
	"mttf_hours", "mtbf_hours", "mttr_seconds", "mttr_hours",
	"next_failure_in_hours", "cluster_health_before",
	"cluster_health_after", "additional_info",
}

// CSVWriter appends one CSV row per lifecycle event.
type CSVWriter struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV log and writes the header.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}
	return &CSVWriter{file: f, w: w}, nil
}

func fmtFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// healthCells renders the health score columns. Health is sampled at
// initiation (before) and completion (before and after); on those rows a
// score of 0 is a real reading of a fully-down cluster, so the cells are
// never blanked by value. Other rows carry no sample and stay empty.
func healthCells(row event.Row) (before, after string) {
	switch row.EventType {
	case event.FailureInitiated:
		before = strconv.FormatFloat(row.HealthBefore, 'f', -1, 64)
	case event.RecoveryCompleted:
		before = strconv.FormatFloat(row.HealthBefore, 'f', -1, 64)
		after = strconv.FormatFloat(row.HealthAfter, 'f', -1, 64)
	}
	return before, after
}

// Write appends a single event row.
func (c *CSVWriter) Write(row event.Row) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	healthBefore, healthAfter := healthCells(row)
	rec := []string{
		row.Timestamp.Format(time.RFC3339Nano),
		strconv.FormatFloat(row.SimulationHours, 'f', -1, 64),
		strconv.FormatFloat(row.RealSeconds, 'f', -1, 64),
		string(row.EventType),
		string(row.FailureMode),
		row.Target,
		string(row.TargetType),
		row.FailureID,
		row.StartTime,
		row.EndTime,
		fmtFloat(row.DurationSeconds),
		fmtFloat(row.DurationHours),
		fmtFloat(row.MTTFHours),
		fmtFloat(row.MTBFHours),
		fmtFloat(row.MTTRSeconds),
		fmtFloat(row.MTTRHours),
		fmtFloat(row.NextFailureInHours),
		healthBefore,
		healthAfter,
		row.AdditionalInfo,
	}
	if err := c.w.Write(rec); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

// WriteBatch appends multiple event rows.
func (c *CSVWriter) WriteBatch(rows []event.Row) error {
	for _, r := range rows {
		if err := c.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}
