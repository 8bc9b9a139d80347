package definitions

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/workflowd/internal/taskgraph"
)

var (
	// ErrNoPhases indicates a definition file without any phases.
	ErrNoPhases = errors.New("workflow has no phases")
)

// defaultDuration replaces missing or non-positive task estimates, in
// minutes.
const defaultDuration = 1.0

// Workflow is the top-level definition document.
type Workflow struct {
	// Name identifies the workflow in reports and events.
	Name string `koanf:"name" json:"name"`

	// Phases are executed conceptually in order; dependencies may still
	// cross phase boundaries.
	Phases []PhaseDef `koanf:"phases" json:"phases" validate:"required,min=1,dive"`
}

// PhaseDef declares one phase.
type PhaseDef struct {
	ID    string    `koanf:"id" json:"id" validate:"required"`
	Name  string    `koanf:"name" json:"name"`
	Tasks []TaskDef `koanf:"tasks" json:"tasks" validate:"dive"`
}

// TaskDef declares one task.
type TaskDef struct {
	ID                string   `koanf:"id" json:"id" validate:"required"`
	Description       string   `koanf:"description" json:"description"`
	EstimatedDuration float64  `koanf:"estimated_duration" json:"estimated_duration"`
	Dependencies      []string `koanf:"dependencies" json:"dependencies"`
	Optional          bool     `koanf:"optional" json:"optional"`
}

// Validate checks structural requirements and normalizes loosely-typed
// fields in place. Structural violations (no phases, tasks or phases
// without ids) are errors; recoverable oddities (duplicate ids, dangling
// dependency references, non-positive durations) are normalized or left
// for the graph layer and logged through logger.
func (w *Workflow) Validate(logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := validator.New().Struct(w); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if verrs[0].Field() == "Phases" && len(w.Phases) == 0 {
				return ErrNoPhases
			}
			return fmt.Errorf("invalid workflow definition: %w", err)
		}
		return fmt.Errorf("validating workflow definition: %w", err)
	}

	ids := make(map[string]bool)
	for pi := range w.Phases {
		phase := &w.Phases[pi]
		for ti := range phase.Tasks {
			task := &phase.Tasks[ti]

			if ids[task.ID] {
				logger.Warn("duplicate task id in definitions",
					zap.String("task", task.ID),
					zap.String("phase", phase.ID))
			}
			ids[task.ID] = true

			if task.Description == "" {
				task.Description = task.ID
			}
			if task.EstimatedDuration <= 0 {
				logger.Warn("normalizing non-positive task duration",
					zap.String("task", task.ID),
					zap.Float64("declared", task.EstimatedDuration),
					zap.Float64("normalized", defaultDuration))
				task.EstimatedDuration = defaultDuration
			}
		}
	}

	// Dangling references are tolerated downstream but worth surfacing.
	for _, phase := range w.Phases {
		for _, task := range phase.Tasks {
			for _, dep := range task.Dependencies {
				if !ids[dep] {
					logger.Warn("task depends on unknown id",
						zap.String("task", task.ID),
						zap.String("dependency", dep))
				}
			}
		}
	}

	return nil
}

// GraphPhases converts the definition into graph input.
func (w *Workflow) GraphPhases() []taskgraph.Phase {
	phases := make([]taskgraph.Phase, 0, len(w.Phases))
	for _, p := range w.Phases {
		tasks := make([]taskgraph.Task, 0, len(p.Tasks))
		for _, t := range p.Tasks {
			tasks = append(tasks, taskgraph.Task{
				ID:                t.ID,
				Description:       t.Description,
				EstimatedDuration: t.EstimatedDuration,
				Dependencies:      t.Dependencies,
				Optional:          t.Optional,
			})
		}
		phases = append(phases, taskgraph.Phase{
			ID:    p.ID,
			Name:  p.Name,
			Tasks: tasks,
		})
	}
	return phases
}
