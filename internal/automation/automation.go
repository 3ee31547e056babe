package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

var ErrEmptyStep = errors.New("automation: step has no action")

// Controller is the part of a scene a script drives.
type Controller interface {
	Promote(ctx context.Context, i int) error
	Randomize(ctx context.Context, i int) error
	Restore(ctx context.Context, state string) error
	Encode() string
	Root() int
	Len() int
}

// Script defines a scripted sequence of scene transitions
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Seed        int64  `yaml:"seed"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single step in a script. Exactly one action runs per step;
// SaveAs may accompany it or stand alone.
type Step struct {
	Promote   *int   `yaml:"promote,omitempty"`
	Randomize *int   `yaml:"randomize,omitempty"`
	Restore   string `yaml:"restore,omitempty"`
	Walk      int    `yaml:"walk,omitempty"`
	SaveAs    string `yaml:"save_as,omitempty"`
}

func (s Step) action() string {
	switch {
	case s.Promote != nil:
		return "promote"
	case s.Randomize != nil:
		return "randomize"
	case s.Restore != "":
		return "restore"
	case s.Walk > 0:
		return "walk"
	case s.SaveAs != "":
		return "save"
	default:
		return ""
	}
}

// StepResult is the scene state after a step.
type StepResult struct {
	Index  int
	Action string
	Root   int
	State  string
}

// Result holds every step's outcome and the states saved by name.
type Result struct {
	Steps []StepResult
	Saved map[string]string
}

// Final returns the state after the last step, or "" for an empty run.
func (r *Result) Final() string {
	if len(r.Steps) == 0 {
		return ""
	}
	return r.Steps[len(r.Steps)-1].State
}

// LoadScript loads a script from a YAML file
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("automation: %w", err)
	}
	for i, step := range script.Steps {
		if step.action() == "" {
			return nil, fmt.Errorf("step %d: %w", i+1, ErrEmptyStep)
		}
	}
	return &script, nil
}

// Promotions builds a script that promotes each index in turn.
func Promotions(indices []int) *Script {
	s := &Script{Name: "promotions"}
	for _, i := range indices {
		i := i
		s.Steps = append(s.Steps, Step{Promote: &i})
	}
	return s
}

// RunScript executes all steps in a script
func RunScript(ctx context.Context, script *Script, c Controller, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.Default()
	}
	rng := rand.New(rand.NewSource(script.Seed))
	if script.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	result := &Result{Saved: make(map[string]string)}
	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		action := step.action()
		logger.Debug("running step", "step", i+1, "of", len(script.Steps), "action", action)

		var err error
		switch action {
		case "promote":
			err = c.Promote(ctx, *step.Promote)
		case "randomize":
			err = c.Randomize(ctx, *step.Randomize)
		case "restore":
			err = c.Restore(ctx, step.Restore)
		case "walk":
			err = Walk(ctx, c, step.Walk, rng)
		case "save":
		default:
			err = ErrEmptyStep
		}
		if err != nil {
			return result, fmt.Errorf("step %d %s: %w", i+1, action, err)
		}

		state := c.Encode()
		if step.SaveAs != "" {
			result.Saved[step.SaveAs] = state
		}
		result.Steps = append(result.Steps, StepResult{
			Index:  i,
			Action: action,
			Root:   c.Root(),
			State:  state,
		})
	}

	return result, nil
}

// Walk promotes n uniformly chosen trees, one after another.
func Walk(ctx context.Context, c Controller, n int, rng *rand.Rand) error {
	for i := 0; i < n; i++ {
		if err := c.Promote(ctx, rng.Intn(c.Len())); err != nil {
			return err
		}
	}
	return nil
}
