package sim

import (
	"context"
	"log/slog"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"kuberbomber/internal/event"
)

// greptimeClient abstracts the ingester client for testing.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes event rows to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client greptimeClient
	table  string
}

// NewGreptimeDBWriter connects to a GreptimeDB endpoint.
func NewGreptimeDBWriter(host, database string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(host).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{client: client, table: event.Row{}.TableName()}, nil
}

// Write inserts a single event row.
func (w *GreptimeDBWriter) Write(row event.Row) error {
	return w.WriteBatch([]event.Row{row})
}

// WriteBatch inserts multiple event rows.
func (w *GreptimeDBWriter) WriteBatch(rows []event.Row) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("event_type", types.STRING)
	tbl.AddTagColumn("failure_mode", types.STRING)
	tbl.AddTagColumn("target_type", types.STRING)
	tbl.AddFieldColumn("target", types.STRING)
	tbl.AddFieldColumn("failure_id", types.STRING)
	tbl.AddFieldColumn("start_time", types.STRING)
	tbl.AddFieldColumn("end_time", types.STRING)
	tbl.AddFieldColumn("simulation_time_hours", types.FLOAT64)
	tbl.AddFieldColumn("real_time_seconds", types.FLOAT64)
	tbl.AddFieldColumn("duration_seconds", types.FLOAT64)
	tbl.AddFieldColumn("duration_hours", types.FLOAT64)
	tbl.AddFieldColumn("mttf_hours", types.FLOAT64)
	tbl.AddFieldColumn("mtbf_hours", types.FLOAT64)
	tbl.AddFieldColumn("mttr_seconds", types.FLOAT64)
	tbl.AddFieldColumn("mttr_hours", types.FLOAT64)
	tbl.AddFieldColumn("next_failure_in_hours", types.FLOAT64)
	tbl.AddFieldColumn("cluster_health_before", types.FLOAT64)
	tbl.AddFieldColumn("cluster_health_after", types.FLOAT64)
	tbl.AddFieldColumn("additional_info", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(
			string(r.EventType),
			string(r.FailureMode),
			string(r.TargetType),
			r.Target,
			r.FailureID,
			r.StartTime,
			r.EndTime,
			r.SimulationHours,
			r.RealSeconds,
			r.DurationSeconds,
			r.DurationHours,
			r.MTTFHours,
			r.MTBFHours,
			r.MTTRSeconds,
			r.MTTRHours,
			r.NextFailureInHours,
			r.HealthBefore,
			r.HealthAfter,
			r.AdditionalInfo,
			r.Timestamp,
		); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		slog.Error("greptime write failed", "err", err)
		return err
	}
	return nil
}
