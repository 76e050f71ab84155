// Package scheduler synthesises weekly timetables from availability, quotas and sharing rules.
// It is pure: no I/O, no clocks, no package-level state.
package scheduler

import (
	"sort"

	"go.uber.org/zap"
)

// Engine runs the greedy allocation. A single Engine is safe for concurrent use.
type Engine struct {
	policy PlacementPolicy
	logger *zap.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithPolicy replaces the default LargestGroupPolicy.
func WithPolicy(policy PlacementPolicy) Option {
	return func(e *Engine) {
		if policy != nil {
			e.policy = policy
		}
	}
}

// WithLogger enables debug tracing of placement decisions.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine constructs an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{policy: LargestGroupPolicy{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate validates req and produces its timetable. Malformed clock strings yield a
// *FormatError and structural problems wrap ErrInvalidRequest; unmet quotas never fail the
// call and are reported in Result.Conflicts instead.
func (e *Engine) Generate(req Request) (*Result, error) {
	p, err := buildPlan(req)
	if err != nil {
		return nil, err
	}

	a := newAllocationContext(p, e.policy, e.logger)
	a.seedDays()
	a.allocate()
	a.placeFlexible()
	a.audit()

	sort.SliceStable(a.blocks, func(i, j int) bool {
		di, dj := p.dayIndex[a.blocks[i].Day], p.dayIndex[a.blocks[j].Day]
		if di != dj {
			return di < dj
		}
		return a.blocks[i].Start < a.blocks[j].Start
	})

	res := a.result()
	e.logger.Debug("schedule generated",
		zap.Int("blocks", len(res.Blocks)),
		zap.Int("conflicts", len(res.Conflicts)),
		zap.Bool("success", res.Success),
	)
	return res, nil
}
