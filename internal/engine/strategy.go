package engine

import (
	"errors"
	"fmt"
)

// ErrSessionDone is returned by Strategy.NextWager when the strategy has
// reached an internal goal and wants a clean exit. It is distinct from the
// externally configured stop limits and is never treated as a failure.
var ErrSessionDone = errors.New("strategy finished session")

// StrategyError marks a fatal strategy failure, such as a malformed
// configured parameter. The session ends with reason strategy_error.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %s: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// Strategy is a pluggable betting policy.
//
// NextWager decides the next bet from the session context plus the strategy's
// own private state; it must not mutate anything. It returns ErrSessionDone
// for a clean internal exit; any other error is fatal to the session.
//
// OnRoundResult is the only place a strategy updates its private state. The
// engine calls it right after the context itself has been updated from the
// result, so the strategy sees consistent state.
//
// OnSessionEnd may return a short summary fragment for the terminal report.
type Strategy interface {
	Name() string
	NextWager(ctx SessionContext) (Wager, error)
	OnRoundResult(ctx SessionContext, result RoundResult)
	OnSessionEnd(ctx SessionContext, reason StopReason) string
}
