package cleaner

import (
	"fmt"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"KeplerLens/internal/model"
)

// Op names a cleaning operation.
type Op string

const (
	OpRemoveNaNs     Op = "remove_nans"
	OpNormalize      Op = "normalize"
	OpRemoveOutliers Op = "remove_outliers"
)

// Step is one operation of a Plan. Sigma only applies to OpRemoveOutliers.
type Step struct {
	Op    Op
	Sigma float64
}

func (s Step) String() string {
	if s.Op == OpRemoveOutliers {
		return fmt.Sprintf("%s(sigma=%g)", s.Op, s.Sigma)
	}
	return string(s.Op)
}

// Plan is an ordered, validated list of cleaning steps.
type Plan struct {
	steps []Step
}

// prerequisites returns the ordering constraints between operations: an edge
// a -> b means a must run before b whenever both are in a plan.
func prerequisites() (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for _, op := range []Op{OpRemoveNaNs, OpNormalize, OpRemoveOutliers} {
		if err := g.AddVertex(string(op)); err != nil {
			return nil, errors.Wrapf(err, "unable to add vertex %s", op)
		}
	}
	if err := g.AddEdge(string(OpRemoveNaNs), string(OpRemoveOutliers)); err != nil {
		return nil, errors.Wrap(err, "unable to add edge")
	}
	return g, nil
}

// NewPlan validates steps and returns a Plan. Unknown operations, a
// non-positive sigma, or an order that breaks a prerequisite (NaN removal
// after outlier removal) are rejected with model.ErrInvalidParameter.
func NewPlan(steps ...Step) (*Plan, error) {
	g, err := prerequisites()
	if err != nil {
		return nil, err
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get predecessor map")
	}

	first := make(map[Op]int, len(steps))
	for i, s := range steps {
		if _, ok := predecessors[string(s.Op)]; !ok {
			return nil, errors.Wrapf(model.ErrInvalidParameter, "unknown cleaning operation %q", s.Op)
		}
		if s.Op == OpRemoveOutliers && s.Sigma <= 0 {
			return nil, errors.Wrapf(model.ErrInvalidParameter, "remove_outliers needs a positive sigma, got %v", s.Sigma)
		}
		if _, ok := first[s.Op]; !ok {
			first[s.Op] = i
		}
	}

	for i, s := range steps {
		for before := range predecessors[string(s.Op)] {
			idx, ok := first[Op(before)]
			if ok && idx > i {
				return nil, errors.Wrapf(model.ErrInvalidParameter, "%s must run before %s", before, s.Op)
			}
		}
	}

	p := &Plan{steps: make([]Step, len(steps))}
	copy(p.steps, steps)
	return p, nil
}

// Steps returns a copy of the plan's steps.
func (p *Plan) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Len returns the number of steps.
func (p *Plan) Len() int { return len(p.steps) }

func (p *Plan) String() string {
	if len(p.steps) == 0 {
		return "none"
	}
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.String()
	}
	return strings.Join(names, " -> ")
}

// Apply runs every step in order. An empty result is returned as is; callers
// decide whether it is an error.
func (p *Plan) Apply(lc *model.LightCurve) (*model.LightCurve, error) {
	out := lc
	for _, s := range p.steps {
		var err error
		switch s.Op {
		case OpRemoveNaNs:
			out = RemoveNaNs(out)
		case OpNormalize:
			out, err = Normalize(out)
		case OpRemoveOutliers:
			out, err = RemoveOutliers(out, s.Sigma)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "cleaning step %s", s)
		}
	}
	return out, nil
}
