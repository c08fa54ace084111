// Simulator orchestrating failure injection and reliability metrics
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"kuberbomber/internal/cluster"
	"kuberbomber/internal/config"
	"kuberbomber/internal/event"
	"kuberbomber/internal/logging"
)

// Options configures one simulation run.
type Options struct {
	DurationHours float64 // real hours; 0 runs until Stop
	Modes         []event.FailureMode
	Distribution  Distribution
	Acceleration  float64 // simulated hours per real hour
	BaseMTTFHours float64
	WeibullShape  float64
	HorizonHours  float64
	PollInterval  time.Duration
	PodTimeout    time.Duration
	NodeTimeout   time.Duration
}

// OptionsFromConfig maps the loaded configuration onto run options.
func OptionsFromConfig(cfg *config.SimulationConfig) Options {
	return Options{
		DurationHours: cfg.DurationHours,
		Modes:         append([]event.FailureMode(nil), cfg.FailureModes...),
		Distribution:  Distribution(cfg.Distribution),
		Acceleration:  cfg.Acceleration,
		BaseMTTFHours: cfg.BaseMTTFHours,
		WeibullShape:  cfg.WeibullShape,
		HorizonHours:  cfg.HorizonHours,
		PollInterval:  time.Duration(cfg.PollIntervalSeconds * float64(time.Second)),
		PodTimeout:    time.Duration(cfg.PodRecoveryTimeoutSeconds * float64(time.Second)),
		NodeTimeout:   time.Duration(cfg.NodeRecoveryTimeoutSeconds * float64(time.Second)),
	}
}

func (o *Options) validate() error {
	if o.Acceleration <= 0 {
		return fmt.Errorf("acceleration must be > 0, got %v", o.Acceleration)
	}
	if o.BaseMTTFHours <= 0 {
		return fmt.Errorf("base MTTF must be > 0, got %v", o.BaseMTTFHours)
	}
	if len(o.Modes) == 0 {
		return fmt.Errorf("failure mode list must not be empty")
	}
	switch o.Distribution {
	case Exponential, Weibull, Normal:
	default:
		return fmt.Errorf("unknown distribution %q", o.Distribution)
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 10 * time.Second
	}
	if o.PodTimeout <= 0 {
		o.PodTimeout = 300 * time.Second
	}
	if o.NodeTimeout <= 0 {
		o.NodeTimeout = 1800 * time.Second
	}
	if o.HorizonHours <= 0 {
		o.HorizonHours = 1000
	}
	if o.WeibullShape <= 0 {
		o.WeibullShape = 2
	}
	return nil
}

// Status summarizes a running (or finished) simulation.
type Status struct {
	IsRunning           bool    `json:"is_running"`
	SimulatedHours      float64 `json:"simulated_time_hours"`
	RealSeconds         float64 `json:"real_time_seconds"`
	Acceleration        float64 `json:"acceleration"`
	ActiveFailures      int     `json:"active_failures"`
	TotalFailures       int     `json:"total_failures"`
	MTTFHours           float64 `json:"mttf_hours"`
	MTBFHours           float64 `json:"mtbf_hours"`
	MTTRSeconds         float64 `json:"mttr_seconds"`
	AvailabilityPercent float64 `json:"availability_percent"`
}

// completion carries a finished recovery from its monitor goroutine to the
// single consumer that applies it to the metrics and the event log.
type completion struct {
	failure *event.Failure
	outcome RecoveryOutcome
}

// runState owns everything scoped to one Start/Stop cycle. Monitors hold a
// reference to their own run's state, so a monitor outliving Stop can only
// ever report into the run that spawned it; a restart never sees stale
// completions and never shares channels with the previous run.
type runState struct {
	opts    Options
	clock   *Clock
	model   *FailureModel
	metrics *MetricsEngine
	rand    *rand.Rand
	cancel  context.CancelFunc

	mu     sync.Mutex
	active map[string]*event.Failure

	monitors    sync.WaitGroup
	completions chan completion
	loopDone    chan struct{}
	allDone     chan struct{}
}

func (rs *runState) activeCount() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.active)
}

// Simulator owns the failure scheduling loop. No process-wide state: run
// state lives on a per-run value, everything else on the instance.
type Simulator struct {
	clusterID string
	cluster   cluster.Interface
	writer    EventWriter
	selector  *Selector

	mu      sync.Mutex
	running bool
	cur     *runState // most recent run; kept after Stop for Status/Drain
}

// NewSimulator wires the engine to a cluster and an event sink.
func NewSimulator(clusterID string, cl cluster.Interface, writer EventWriter) *Simulator {
	return &Simulator{
		clusterID: clusterID,
		cluster:   cl,
		writer:    writer,
		selector:  NewSelector(),
	}
}

// SetWriter replaces the event sink. Must be called before Start; the
// TUI writer needs the simulator for its status feed, so construction
// happens in two steps there.
func (s *Simulator) SetWriter(w EventWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// stopJoinTimeout bounds how long Stop waits for the scheduler loop.
const stopJoinTimeout = 10 * time.Second

// Start validates the options and launches the scheduler loop. It returns
// an error (and starts nothing) for configuration problems or when a run
// is already active.
func (s *Simulator) Start(ctx context.Context, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("simulation already running")
	}
	rs := &runState{
		opts:        opts,
		clock:       NewClock(opts.Acceleration),
		model:       NewFailureModel(opts.Distribution, opts.WeibullShape),
		metrics:     NewMetricsEngine(opts.BaseMTTFHours, opts.HorizonHours),
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
		active:      make(map[string]*event.Failure),
		completions: make(chan completion),
		loopDone:    make(chan struct{}),
		allDone:     make(chan struct{}),
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	rs.cancel = cancel
	s.cur = rs
	s.running = true
	s.mu.Unlock()

	s.logEvent(event.Row{
		Timestamp:  time.Now().UTC(),
		EventType:  event.SimulationStarted,
		Target:     s.clusterID,
		TargetType: event.KindCluster,
		FailureID:  "simulation_start",
		AdditionalInfo: fmt.Sprintf("acceleration=%vx distribution=%s base_mttf=%vh modes=%v",
			opts.Acceleration, opts.Distribution, opts.BaseMTTFHours, opts.Modes),
	})

	go s.run(runCtx, rs)

	if opts.DurationHours > 0 {
		go func() {
			select {
			case <-time.After(time.Duration(opts.DurationHours * float64(time.Hour))):
				s.stopRun(rs)
			case <-runCtx.Done():
			}
		}()
	}
	return nil
}

// Stop requests shutdown, wakes the scheduler's sleep immediately, and
// joins the loop with a bounded timeout. Recovery monitors for failures
// already in flight run to their own completion or timeout; use Drain to
// wait for them.
func (s *Simulator) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("simulation not running")
	}
	rs := s.cur
	s.running = false
	s.mu.Unlock()

	s.finishRun(rs)
	return nil
}

// stopRun stops rs only if it is still the active run. A manual Stop plus
// restart in the meantime must not take down the newer run.
func (s *Simulator) stopRun(rs *runState) {
	s.mu.Lock()
	if !s.running || s.cur != rs {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()
	s.finishRun(rs)
}

func (s *Simulator) finishRun(rs *runState) {
	rs.cancel()
	select {
	case <-rs.loopDone:
	case <-time.After(stopJoinTimeout):
	}

	simHours := rs.clock.SimulatedHours()
	snap := rs.metrics.Snapshot(simHours)
	s.logEvent(event.Row{
		Timestamp:       time.Now().UTC(),
		SimulationHours: simHours,
		RealSeconds:     rs.clock.RealSeconds(),
		EventType:       event.SimulationStopped,
		Target:          s.clusterID,
		TargetType:      event.KindCluster,
		FailureID:       "simulation_stop",
		MTTFHours:       snap.MTTFHours,
		MTBFHours:       snap.MTBFHours,
		MTTRSeconds:     snap.MTTRSeconds,
		AdditionalInfo: fmt.Sprintf("total_failures=%d availability=%.2f%%",
			snap.TotalFailures, snap.AvailabilityPercent),
	})
}

// Drain blocks until every in-flight recovery monitor of the current run
// has reported, or ctx expires.
func (s *Simulator) Drain(ctx context.Context) error {
	s.mu.Lock()
	rs := s.cur
	s.mu.Unlock()
	if rs == nil {
		return nil
	}
	select {
	case <-rs.allDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns a snapshot of the run state.
func (s *Simulator) Status() Status {
	s.mu.Lock()
	running := s.running
	rs := s.cur
	s.mu.Unlock()

	st := Status{IsRunning: running}
	if rs == nil {
		return st
	}
	st.ActiveFailures = rs.activeCount()
	simHours := rs.clock.SimulatedHours()
	st.SimulatedHours = simHours
	st.RealSeconds = rs.clock.RealSeconds()
	st.Acceleration = rs.clock.Acceleration()
	snap := rs.metrics.Snapshot(simHours)
	st.TotalFailures = snap.TotalFailures
	st.MTTFHours = snap.MTTFHours
	st.MTBFHours = snap.MTBFHours
	st.MTTRSeconds = snap.MTTRSeconds
	st.AvailabilityPercent = snap.AvailabilityPercent
	return st
}

// CurrentMetrics returns a read-only metrics snapshot of the current run.
func (s *Simulator) CurrentMetrics() event.Metrics {
	s.mu.Lock()
	rs := s.cur
	s.mu.Unlock()
	if rs == nil {
		return event.Metrics{}
	}
	return rs.metrics.Snapshot(rs.clock.SimulatedHours())
}

// ActiveFailures lists the failures currently awaiting recovery.
func (s *Simulator) ActiveFailures() []event.Failure {
	s.mu.Lock()
	rs := s.cur
	s.mu.Unlock()
	if rs == nil {
		return nil
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]event.Failure, 0, len(rs.active))
	for _, f := range rs.active {
		out = append(out, *f)
	}
	return out
}

// run hosts the scheduler loop and the completion consumer, then drains
// remaining monitors once the loop exits.
func (s *Simulator) run(ctx context.Context, rs *runState) {
	consumerDone := make(chan struct{})
	go func() {
		s.consume(ctx, rs)
		close(consumerDone)
	}()

	s.loop(ctx, rs)
	close(rs.loopDone)

	rs.monitors.Wait()
	close(rs.completions)
	<-consumerDone
	close(rs.allDone)
}

// loop is the failure scheduler: draw an interval, wait interruptibly,
// inject, hand off to a recovery monitor, repeat.
func (s *Simulator) loop(ctx context.Context, rs *runState) {
	log := logging.FromContext(ctx)
	log.Info("failure scheduler started",
		"acceleration", rs.opts.Acceleration, "distribution", rs.opts.Distribution)

	for {
		intervalHours := rs.model.NextInterval(rs.metrics.CurrentMTTF())
		wait := time.Duration(intervalHours / rs.opts.Acceleration * 3600 * float64(time.Second))
		log.Info("next failure scheduled",
			"simulated_hours", intervalHours, "real_wait", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("failure scheduler stopped")
			return
		case <-timer.C:
		}

		mode := rs.opts.Modes[rs.rand.Intn(len(rs.opts.Modes))]
		target, ok := s.selector.Select(mode, s.cluster.ListTargets(mode))
		if !ok {
			// Skip the cycle; nothing is counted and the loop reschedules.
			log.Warn("no eligible target, skipping cycle", "mode", mode)
			continue
		}

		s.injectAndMonitor(ctx, rs, mode, target)
	}
}

// injectAndMonitor performs one injection and spawns its recovery monitor.
// A failed or erroring injection is logged and the loop carries on.
func (s *Simulator) injectAndMonitor(ctx context.Context, rs *runState, mode event.FailureMode, target cluster.TargetRef) {
	log := logging.FromContext(ctx)
	now := time.Now().UTC()
	f := &event.Failure{
		ID:                failureID(mode, target.Name),
		Mode:              mode,
		Target:            target.Name,
		TargetKind:        target.Kind,
		InitiatedAt:       now,
		InitiatedSimHours: rs.clock.SimulatedHours(),
		HealthBefore:      s.cluster.HealthScore(),
	}

	row := s.newRow(rs, event.FailureInitiated, f,
		fmt.Sprintf("initiated %s on %s %s", mode, target.Kind, target.Name))
	row.HealthBefore = f.HealthBefore
	s.logEvent(row)

	success, err := s.cluster.ApplyFailure(target, mode)
	if err != nil {
		log.Error("injection error", "mode", mode, "target", target.Name, "err", err)
		success = false
	}
	f.InjectionSucceeded = success
	if !success {
		// Attempt is already on record via the initiated row; nothing to
		// monitor and nothing counted toward the failure statistics.
		log.Warn("injection failed", "mode", mode, "target", target.Name)
		return
	}

	s.logEvent(s.newRow(rs, event.FailureDetected, f, "failure detected and confirmed"))

	f.RecoveryStartedAt = time.Now().UTC()
	s.logEvent(s.newRow(rs, event.RecoveryStarted, f, "started monitoring recovery"))

	rs.mu.Lock()
	rs.active[f.ID] = f
	rs.mu.Unlock()

	timeout := rs.opts.PodTimeout
	if target.Kind == event.KindNode {
		timeout = rs.opts.NodeTimeout
	}
	rs.monitors.Add(1)
	go func() {
		defer rs.monitors.Done()
		// Detached from the scheduler's cancellation: the monitor honors
		// only its own timeout so the measurement survives Stop.
		outcome := AwaitRecovery(context.Background(), target, s.cluster, rs.opts.PollInterval, timeout)
		rs.completions <- completion{failure: f, outcome: outcome}
	}()
}

// consume serializes completed recoveries: metrics update, completion row,
// in-flight removal. Runs until the run's completions channel is closed.
func (s *Simulator) consume(ctx context.Context, rs *runState) {
	log := logging.FromContext(ctx)
	for c := range rs.completions {
		f, out := c.failure, c.outcome
		f.Recovered = out.Recovered
		f.RecoverySeconds = out.Duration
		f.RecoveryFinishedAt = time.Now().UTC()

		simHours := rs.clock.SimulatedHours()
		rs.metrics.Update(out.Duration, simHours)
		snap := rs.metrics.Snapshot(simHours)
		next := rs.model.NextInterval(rs.metrics.CurrentMTTF())

		status := "successful"
		if !out.Recovered {
			status = "timeout"
		}
		row := s.newRow(rs, event.RecoveryCompleted, f,
			fmt.Sprintf("recovery %s after %.1fs", status, out.Duration))
		row.EndTime = f.RecoveryFinishedAt.Format(time.RFC3339Nano)
		row.DurationSeconds = out.Duration
		row.DurationHours = out.Duration / 3600
		row.MTTFHours = snap.MTTFHours
		row.MTBFHours = snap.MTBFHours
		row.MTTRSeconds = snap.MTTRSeconds
		row.MTTRHours = snap.MTTRSeconds / 3600
		row.NextFailureInHours = next
		row.HealthBefore = f.HealthBefore
		row.HealthAfter = s.cluster.HealthScore()
		s.logEvent(row)

		rs.mu.Lock()
		delete(rs.active, f.ID)
		rs.mu.Unlock()

		log.Info("recovery completed", "failure_id", f.ID,
			"recovered", out.Recovered, "duration_s", out.Duration)
	}
}

// newRow stamps a row with the run's clock readings and failure identity.
func (s *Simulator) newRow(rs *runState, t event.Type, f *event.Failure, info string) event.Row {
	row := event.Row{
		Timestamp:       time.Now().UTC(),
		SimulationHours: rs.clock.SimulatedHours(),
		RealSeconds:     rs.clock.RealSeconds(),
		EventType:       t,
		AdditionalInfo:  info,
	}
	if f != nil {
		row.FailureMode = f.Mode
		row.Target = f.Target
		row.TargetType = f.TargetKind
		row.FailureID = f.ID
		row.StartTime = f.InitiatedAt.Format(time.RFC3339Nano)
	}
	return row
}

func (s *Simulator) logEvent(row event.Row) {
	if s.writer == nil {
		return
	}
	if err := s.writer.Write(row); err != nil {
		logging.FromContext(context.Background()).Error("event write failed",
			"event_type", row.EventType, "err", err)
	}
}

func failureID(mode event.FailureMode, target string) string {
	// Millisecond timestamps can collide under high acceleration; the
	// uuid suffix keeps IDs unique.
	return fmt.Sprintf("%s_%s_%d_%s", mode, target, time.Now().UnixMilli(), uuid.New().String()[:8])
}
