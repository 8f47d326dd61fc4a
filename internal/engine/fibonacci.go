package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FibonacciStrategy sizes bets as unit multiples of the Fibonacci sequence:
// one step forward after a loss, two steps back after a win.
type FibonacciStrategy struct {
	unit      decimal.Decimal
	chance    decimal.Decimal
	direction Direction

	index int
	seq   []decimal.Decimal
}

// NewFibonacciStrategy builds a Fibonacci strategy from parameters:
// unit, chance, direction.
func NewFibonacciStrategy(params Params, pc PlatformConstraints) (Strategy, error) {
	s := &FibonacciStrategy{seq: []decimal.Decimal{one, one}}
	var err error
	if s.unit, err = params.Decimal("unit", pc.MinBet); err != nil {
		return nil, &StrategyError{Strategy: "fibonacci", Err: err}
	}
	if s.chance, err = params.Decimal("chance", defaultChance); err != nil {
		return nil, &StrategyError{Strategy: "fibonacci", Err: err}
	}
	if s.direction, err = params.Direction("direction", DirectionHigh); err != nil {
		return nil, &StrategyError{Strategy: "fibonacci", Err: err}
	}
	if !s.unit.IsPositive() {
		return nil, &StrategyError{Strategy: "fibonacci", Err: fmt.Errorf("unit must be positive, got %s", s.unit)}
	}
	return s, nil
}

func (s *FibonacciStrategy) Name() string { return "fibonacci" }

func (s *FibonacciStrategy) NextWager(ctx SessionContext) (Wager, error) {
	return Wager{
		Amount:    s.unit.Mul(s.seq[s.index]),
		WinChance: s.chance,
		Direction: s.direction,
	}, nil
}

func (s *FibonacciStrategy) OnRoundResult(ctx SessionContext, result RoundResult) {
	if result.Won {
		s.index -= 2
		if s.index < 0 {
			s.index = 0
		}
		return
	}
	s.index++
	for len(s.seq) <= s.index {
		n := len(s.seq)
		s.seq = append(s.seq, s.seq[n-1].Add(s.seq[n-2]))
	}
}

func (s *FibonacciStrategy) OnSessionEnd(ctx SessionContext, reason StopReason) string {
	return fmt.Sprintf("final fibonacci index %d", s.index)
}
