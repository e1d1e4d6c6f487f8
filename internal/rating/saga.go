package rating

import (
	"context"

	"github.com/Clark-Hu/notflix/internal/metrics"
)

// step is one write of a multi-write operation. revert undoes a completed do
// and may be nil.
type step struct {
	name   string
	do     func(ctx context.Context) error
	revert func(ctx context.Context) error
}

// run executes steps in order. When a step fails, the completed steps are
// reverted newest first and the failing step's error is returned.
func (e *Engine) run(ctx context.Context, op string, steps []step) error {
	done := make([]step, 0, len(steps))
	for _, s := range steps {
		if err := s.do(ctx); err != nil {
			if len(done) > 0 {
				e.logger.Printf("rating: %s: %s failed: %v", op, s.name, err)
				e.compensate(context.WithoutCancel(ctx), op, done)
			}
			return err
		}
		done = append(done, s)
	}
	return nil
}

func (e *Engine) compensate(ctx context.Context, op string, done []step) {
	for i := len(done) - 1; i >= 0; i-- {
		s := done[i]
		if s.revert == nil {
			continue
		}
		if err := s.revert(ctx); err != nil {
			// The stored average stays stale until the next mutation of the movie.
			e.metrics.Compensation(metrics.CompensationFailed)
			e.logger.Printf("rating: %s: revert of %s failed, movie left inconsistent: %v", op, s.name, err)
			continue
		}
		e.metrics.Compensation(metrics.CompensationReverted)
		e.logger.Printf("rating: %s: reverted %s", op, s.name)
	}
}
