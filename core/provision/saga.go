// Package provision implements admin-initiated account provisioning as a
// saga: the domain record, role record and login credential are created as
// named steps with a compensating action per step, so a partial failure
// rolls back what already ran instead of leaving orphaned state.
package provision

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
)

// Counter issues sequential ids atomically on the store side, replacing the
// racy client-side max-scan.
type Counter interface {
	NextID(ctx context.Context, name string) (int, error)
}

// Step is one named unit of a Saga. Compensate undoes a completed Run; it
// may be nil when the step has nothing to undo.
type Step struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga runs steps in order. On failure it compensates completed steps in
// reverse order and returns the failing step's error wrapped with its name.
type Saga struct {
	ID     string
	steps  []Step
	logger core.Logger
}

func NewSaga(logger core.Logger, steps ...Step) *Saga {
	return &Saga{ID: uuid.New().String(), steps: steps, logger: logger}
}

func (s *Saga) Execute(ctx context.Context) error {
	done := make([]Step, 0, len(s.steps))

	for _, step := range s.steps {
		if err := step.Run(ctx); err != nil {
			s.rollback(ctx, done)
			return errors.Wrapf(err, "saga %s: step %s", s.ID, step.Name)
		}
		done = append(done, step)
	}
	return nil
}

func (s *Saga) rollback(ctx context.Context, done []Step) {
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			// a failed compensation leaves orphaned state; all we can do
			// is make it loud
			s.logger.Error("saga rollback failed", errors.Wrapf(err, "saga %s: compensating step %s", s.ID, step.Name))
		}
	}
}
