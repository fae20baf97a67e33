package benchmark

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/nvr-ai/tinybench/profiler"
	"github.com/nvr-ai/tinybench/stats"
)

// State is the phase of a Runner.
type State int32

const (
	// StateIdle means no run has started since creation or the last Reset.
	StateIdle State = iota
	// StateWarmingUp means units are being sampled to split the duration budget.
	StateWarmingUp
	// StateMeasuring means units are being measured one after another.
	StateMeasuring
	// StateDone means the run finished, successfully or not.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateWarmingUp:
		return "WarmingUp"
	case StateMeasuring:
		return "Measuring"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// preallocation bound for per-unit sample slices when no max is configured.
const maxPreallocatedSamples = 1 << 16

// Runner measures benchmark cases sequentially under the configured
// iteration and duration budget.
type Runner struct {
	cfg         Config
	clock       clock.PassiveClock
	probe       profiler.MemoryProbe
	settle      profiler.SettleFunc
	log         logrus.FieldLogger
	instruments *Instruments
	trackers    *profiler.Trackers
	state       atomic.Int32
}

// RunnerOption customises a Runner.
type RunnerOption func(*Runner)

// WithClock sets the time source used for every duration.
func WithClock(c clock.PassiveClock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

// WithMemoryProbe sets the allocation probe read around each sample when
// memory measurement is enabled.
func WithMemoryProbe(p profiler.MemoryProbe) RunnerOption {
	return func(r *Runner) { r.probe = p }
}

// WithLogger sets the structured logger.
func WithLogger(l logrus.FieldLogger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

// WithInstruments records engine progress on the given metrics.
func WithInstruments(i *Instruments) RunnerOption {
	return func(r *Runner) { r.instruments = i }
}

// NewRunner creates a new runner.
//
// Arguments:
//   - cfg: The run configuration. It is validated here so that an invalid
//     combination never reaches the measuring phase.
//   - opts: Optional clock, memory probe, logger and instruments.
//
// Returns:
//   - *Runner: The runner, in StateIdle.
//   - error: ErrConfiguration when cfg is invalid.
func NewRunner(cfg Config, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:      cfg,
		clock:    clock.RealClock{},
		probe:    profiler.TotalAllocated,
		settle:   cfg.Settle,
		log:      logrus.StandardLogger(),
		trackers: profiler.NewTrackers(),
	}
	if r.settle == nil {
		r.settle = profiler.Settle
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Config returns the configuration the runner measures with.
func (r *Runner) Config() Config { return r.cfg }

// State returns the current phase.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// Reset returns a finished runner to StateIdle so it can run again.
func (r *Runner) Reset() {
	r.trackers = profiler.NewTrackers()
	r.setState(StateIdle)
}

func (r *Runner) setState(s State) {
	r.state.Store(int32(s))
	r.instruments.setState(s)
}

// PlanIterations returns the sample count expected to fit budget when one
// sample takes estimate, clamped to minIterations first and then to
// maxIterations when it is set.
func PlanIterations(budget, estimate time.Duration, minIterations, maxIterations int) int {
	desired := minIterations
	if estimate > 0 {
		desired = int(budget / estimate)
	} else if maxIterations > 0 {
		desired = maxIterations
	}

	if desired < minIterations {
		desired = minIterations
	}
	if maxIterations > 0 && desired > maxIterations {
		desired = maxIterations
	}
	return desired
}

// unitPlan is the budget share of one case.
type unitPlan struct {
	budget   time.Duration
	estimate time.Duration
}

// Run measures every case in order and returns the collected results.
//
// With a duration budget, every case is first warmed up and the budget is
// split in proportion to the warm-up medians. The context is checked between
// units only; a unit that started measuring always runs to its stopping
// condition. A panicking case aborts the run with ErrExecution.
func (r *Runner) Run(ctx context.Context, cases []Case) (*RunResults, error) {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateWarmingUp)) {
		return nil, configErrorf("runner is %s; call Reset before running again", r.State())
	}
	defer r.setState(StateDone)
	r.instruments.setState(StateWarmingUp)

	if len(cases) == 0 {
		return nil, errors.Wrap(ErrNotFound, "no benchmark cases to run")
	}
	for _, c := range cases {
		if c.Thunk == nil {
			return nil, configErrorf("%s has no thunk", c.Unit)
		}
	}

	runID := uuid.New()
	log := r.log.WithField("run", runID.String())
	startedAt := r.clock.Now()
	memBefore := profiler.Snapshot()

	r.settle()

	plans, budgeted, err := r.warmUp(ctx, log, cases)
	if err != nil {
		return nil, err
	}

	r.setState(StateMeasuring)
	stopMeasuring := r.trackers.StartOperation("measure", r.clock.Now)

	results := make([]MethodExecutionResults, 0, len(cases))
	overtime := make(map[string]Overtime)
	for i, c := range cases {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "run cancelled before %s", c.Unit)
		}

		var plan unitPlan
		if budgeted {
			plan = plans[i]
		}
		res, elapsed, err := r.measure(log, c, plan, budgeted)
		if err != nil {
			return nil, err
		}
		results = append(results, res)

		if budgeted && elapsed > plan.budget {
			r.instruments.observeOvertime(c.Unit)
			worst, seen := overtime[c.Unit.Owner]
			if !seen || elapsed > worst.Elapsed {
				overtime[c.Unit.Owner] = Overtime{Unit: c.Unit, Elapsed: elapsed, Budget: plan.budget}
			}
		}
	}
	stopMeasuring()

	for owner, o := range overtime {
		log.WithFields(logrus.Fields{
			"owner":   owner,
			"unit":    o.Unit.String(),
			"elapsed": o.Elapsed,
			"budget":  o.Budget,
		}).Warn("unit ran past its duration budget")
		r.progress("%s ran %s against a budget of %s; raise the duration budget or lower the minimum iterations",
			o.Unit, profiler.FormatDuration(o.Elapsed), profiler.FormatDuration(o.Budget))
	}

	elapsed := r.clock.Since(startedAt)
	log.WithFields(logrus.Fields{
		"units":   len(results),
		"elapsed": elapsed,
	}).Info("benchmark run completed")

	return &RunResults{
		ID:        runID,
		Config:    r.cfg,
		StartedAt: startedAt,
		Elapsed:   elapsed,
		Results:   results,
		Overtime:  overtime,
		Timings:   r.trackers.Snapshot(),
		Memory:    profiler.Snapshot().Since(memBefore),
	}, nil
}

// warmUp samples every case and splits the duration budget. It reports false
// when no budget applies, either because none is configured or because the
// warm-up measured no time at all.
func (r *Runner) warmUp(ctx context.Context, log logrus.FieldLogger, cases []Case) ([]unitPlan, bool, error) {
	if !r.cfg.HasBudget() {
		return nil, false, nil
	}
	defer r.trackers.StartOperation("warm-up", r.clock.Now)()

	plans := make([]unitPlan, len(cases))
	var measuredTotal time.Duration
	for i, c := range cases {
		if err := ctx.Err(); err != nil {
			return nil, false, errors.Wrapf(err, "run cancelled before warming up %s", c.Unit)
		}

		samples := make([]MethodExecutionMetrics, 0, r.cfg.WarmUpIterations)
		for n := 0; n < r.cfg.WarmUpIterations; n++ {
			m, err := r.sample(c, r.cfg.MeasureMemory)
			if err != nil {
				return nil, false, err
			}
			samples = append(samples, m)
		}

		median, err := stats.MedianOf(samples, MeasureTimeOf)
		if err != nil {
			return nil, false, errors.Wrapf(err, "warm-up of %s", c.Unit)
		}
		plans[i].estimate = median
		measuredTotal += median
		r.instruments.observeWarmUp(c.Unit, median)
	}

	if measuredTotal <= 0 {
		log.Warn("warm-up measured no time; running without a duration budget")
		r.progress("Warm-up measured no time, the duration budget is ignored")
		return nil, false, nil
	}

	for i := range plans {
		share := float64(plans[i].estimate) / float64(measuredTotal)
		plans[i].budget = time.Duration(float64(r.cfg.DurationBudget) * share)
	}
	return plans, true, nil
}

// measure samples one case until the stopping rule holds: at least
// MinIterations samples and, with a budget, either the unit's share of the
// budget is spent or MaxIterations is reached.
func (r *Runner) measure(log logrus.FieldLogger, c Case, plan unitPlan, budgeted bool) (MethodExecutionResults, time.Duration, error) {
	expected := r.cfg.MinIterations
	if budgeted {
		expected = PlanIterations(plan.budget, plan.estimate, r.cfg.MinIterations, r.cfg.MaxIterations)
	}

	unitLog := log.WithFields(logrus.Fields{
		"owner":     c.Unit.Owner,
		"operation": c.Unit.Operation,
		"parameter": c.Unit.Parameter,
	})
	unitLog.WithFields(logrus.Fields{
		"expected": expected,
		"budget":   plan.budget,
	}).Debug("measuring unit")
	if budgeted {
		r.progress("%s: expecting %d samples within %s", c.Unit, expected, profiler.FormatDuration(plan.budget))
	} else {
		r.progress("%s: measuring %d samples", c.Unit, expected)
	}

	metrics := make([]MethodExecutionMetrics, 0, min(expected, maxPreallocatedSamples))
	start := r.clock.Now()
	var elapsed time.Duration
	for {
		m, err := r.sample(c, r.cfg.MeasureMemory)
		if err != nil {
			return MethodExecutionResults{}, 0, err
		}
		metrics = append(metrics, m)
		elapsed = r.clock.Since(start)

		n := len(metrics)
		if n < r.cfg.MinIterations {
			continue
		}
		if !budgeted || elapsed > plan.budget {
			break
		}
		if r.cfg.MaxIterations > 0 && n >= r.cfg.MaxIterations {
			break
		}
	}

	r.trackers.Record(c.Unit.Owner, elapsed)
	r.instruments.observeUnit(c.Unit, len(metrics), elapsed)
	unitLog.WithFields(logrus.Fields{
		"samples": len(metrics),
		"elapsed": elapsed,
	}).Info("unit measured")
	r.progress("%s: %d samples in %s", c.Unit, len(metrics), profiler.FormatDuration(elapsed))

	return MethodExecutionResults{Unit: c.Unit, Metrics: metrics}, elapsed, nil
}

// sample runs the thunk once. PureTime spans the call only; MeasureTime also
// covers the settle point and probe reads.
func (r *Runner) sample(c Case, measureMemory bool) (m MethodExecutionMetrics, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Wrapf(ErrExecution, "%s panicked: %v", c.Unit, p)
		}
	}()

	start := r.clock.Now()
	var before uint64
	if measureMemory {
		r.settle()
		before = r.probe()
	}

	callStart := r.clock.Now()
	c.Thunk()
	m.PureTime = r.clock.Since(callStart)

	if measureMemory {
		m.MemoryUsed = profiler.AllocationDelta(before, r.probe())
	}
	m.MeasureTime = r.clock.Since(start)

	return m, nil
}

func (r *Runner) progress(format string, args ...interface{}) {
	if r.cfg.Logger != nil {
		r.cfg.Logger(fmt.Sprintf(format, args...))
	}
}

// RunSuites discovers the owners in reg (all of them when none are given) and
// measures them with a fresh runner.
func RunSuites(ctx context.Context, cfg Config, reg *Registry, owners []string, opts ...RunnerOption) (*RunResults, error) {
	runner, err := NewRunner(cfg, opts...)
	if err != nil {
		return nil, err
	}

	cases, err := reg.Cases(cfg.BatchSize, owners...)
	if err != nil {
		return nil, err
	}

	return runner.Run(ctx, cases)
}
