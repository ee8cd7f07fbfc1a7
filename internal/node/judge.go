package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/planweave/internal/ctxlog"
	"github.com/vk/planweave/internal/project"
)

// ErrNoCandidate reports a reduction over zero surviving candidates.
var ErrNoCandidate = errors.New("no candidate passed judgment")

// Judge reduces the candidate projects produced by a manager's branches
// to a single result.
type Judge interface {
	Name() string
	Reduce(ctx context.Context, candidates []*project.Project) (*project.Project, error)
}

// Criteria scores one candidate project.
type Criteria interface {
	Name() string
	Score(ctx context.Context, proj *project.Project) (float64, error)
}

// KeyedCriteria is a criteria that measures a single project key, which
// lets surveys write aggregate results back to that key.
type KeyedCriteria interface {
	Criteria
	Key() string
}

type keyCriteria struct {
	name string
	key  string
}

// NewKeyCriteria scores candidates by reading a numeric value stored under
// key in project contents. Missing or non-numeric values are an error.
func NewKeyCriteria(name, key string) KeyedCriteria {
	return &keyCriteria{name: name, key: key}
}

func (c *keyCriteria) Name() string { return c.name }
func (c *keyCriteria) Key() string  { return c.key }

func (c *keyCriteria) Score(_ context.Context, proj *project.Project) (float64, error) {
	value, ok := proj.Get(c.key)
	if !ok {
		return 0, fmt.Errorf("criteria %q: key %q not found in project %q", c.name, c.key, proj.Name)
	}
	score, ok := asFloat(value)
	if !ok {
		return 0, fmt.Errorf("criteria %q: key %q holds non-numeric %T", c.name, c.key, value)
	}
	return score, nil
}

// Contest keeps the single highest-scoring candidate. Ties go to the
// earliest candidate.
type Contest struct {
	name     string
	Criteria Criteria
}

// NewContest creates a highest-score-wins judge.
func NewContest(name string, criteria Criteria) *Contest {
	return &Contest{name: name, Criteria: criteria}
}

func (c *Contest) Name() string { return c.name }

func (c *Contest) Reduce(ctx context.Context, candidates []*project.Project) (*project.Project, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("contest %q: %w", c.name, ErrNoCandidate)
	}
	best := candidates[0]
	bestScore, err := c.Criteria.Score(ctx, best)
	if err != nil {
		return nil, fmt.Errorf("contest %q: %w", c.name, err)
	}
	for _, candidate := range candidates[1:] {
		score, err := c.Criteria.Score(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("contest %q: %w", c.name, err)
		}
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	ctxlog.FromContext(ctx).Debug("contest decided",
		"judge", c.name, "winner", best.Name, "score", bestScore)
	return best, nil
}

// Survey averages the criteria score across all candidates. When the
// criteria is keyed, the mean is written back to that key on the result.
type Survey struct {
	name     string
	Criteria Criteria
}

// NewSurvey creates an averaging judge.
func NewSurvey(name string, criteria Criteria) *Survey {
	return &Survey{name: name, Criteria: criteria}
}

func (s *Survey) Name() string { return s.name }

func (s *Survey) Reduce(ctx context.Context, candidates []*project.Project) (*project.Project, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("survey %q: %w", s.name, ErrNoCandidate)
	}
	var total float64
	for _, candidate := range candidates {
		score, err := s.Criteria.Score(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("survey %q: %w", s.name, err)
		}
		total += score
	}
	mean := total / float64(len(candidates))
	result := candidates[0].Clone()
	if keyed, ok := s.Criteria.(KeyedCriteria); ok {
		result.Set(keyed.Key(), mean)
	}
	ctxlog.FromContext(ctx).Debug("survey decided",
		"judge", s.name, "candidates", len(candidates), "mean", mean)
	return result, nil
}

// Validation keeps the first candidate whose score meets the threshold.
type Validation struct {
	name      string
	Criteria  Criteria
	Threshold float64
}

// NewValidation creates a threshold-filter judge.
func NewValidation(name string, criteria Criteria, threshold float64) *Validation {
	return &Validation{name: name, Criteria: criteria, Threshold: threshold}
}

func (v *Validation) Name() string { return v.name }

func (v *Validation) Reduce(ctx context.Context, candidates []*project.Project) (*project.Project, error) {
	for _, candidate := range candidates {
		score, err := v.Criteria.Score(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("validation %q: %w", v.name, err)
		}
		if score >= v.Threshold {
			ctxlog.FromContext(ctx).Debug("validation passed",
				"judge", v.name, "winner", candidate.Name, "score", score)
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("validation %q: %w", v.name, ErrNoCandidate)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
