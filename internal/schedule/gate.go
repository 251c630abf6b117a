package schedule

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

const DefaultExpression = "0 */5 * * * *"

var ErrInvalidSchedule = errors.New("invalid schedule expression")

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Gate blocks callers until the next instant allowed by a cron expression.
// Every caller computes its own next tick; there is no coalescing between
// callers, so several callers may wake up on the same tick.
type Gate struct {
	expression string
	schedule   cron.Schedule
	clock      Clock
}

func New(expression string, clock Clock) (*Gate, error) {
	if expression == "" {
		expression = DefaultExpression
	}

	s, err := parser.Parse(expression)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSchedule, "%q: %v", expression, err)
	}

	if clock == nil {
		clock = RealClock()
	}

	if s.Next(clock.Now()).IsZero() {
		return nil, errors.Wrapf(ErrInvalidSchedule, "%q never fires", expression)
	}

	return &Gate{
		expression: expression,
		schedule:   s,
		clock:      clock,
	}, nil
}

func (g *Gate) String() string {
	return g.expression
}

// Next returns the next tick after the current time.
func (g *Gate) Next() time.Time {
	return g.schedule.Next(g.clock.Now())
}

// Wait suspends until the next tick. It returns ctx.Err() if the context
// is cancelled first.
func (g *Gate) Wait(ctx context.Context) error {
	now := g.clock.Now()
	next := g.schedule.Next(now)
	if next.IsZero() {
		return errors.Wrapf(ErrInvalidSchedule, "%q never fires", g.expression)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.clock.After(next.Sub(now)):
		return nil
	}
}
