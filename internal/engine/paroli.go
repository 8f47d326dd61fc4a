package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParoliStrategy is a reverse martingale: it multiplies the bet after each
// win and drops back to base after a loss or after a full winning run.
type ParoliStrategy struct {
	base         decimal.Decimal
	multiplier   decimal.Decimal
	chance       decimal.Decimal
	direction    Direction
	streakTarget int

	progress int
	runsWon  int
}

// NewParoliStrategy builds a paroli strategy from parameters:
// base_amount, multiplier (default 2), streak_target (default 3),
// chance, direction.
func NewParoliStrategy(params Params, pc PlatformConstraints) (Strategy, error) {
	s := &ParoliStrategy{}
	var err error
	if s.base, err = params.Decimal("base_amount", pc.MinBet); err != nil {
		return nil, &StrategyError{Strategy: "paroli", Err: err}
	}
	if s.multiplier, err = params.Decimal("multiplier", decimal.New(2, 0)); err != nil {
		return nil, &StrategyError{Strategy: "paroli", Err: err}
	}
	if s.chance, err = params.Decimal("chance", defaultChance); err != nil {
		return nil, &StrategyError{Strategy: "paroli", Err: err}
	}
	if s.direction, err = params.Direction("direction", DirectionHigh); err != nil {
		return nil, &StrategyError{Strategy: "paroli", Err: err}
	}
	if s.streakTarget, err = params.Int("streak_target", 3); err != nil {
		return nil, &StrategyError{Strategy: "paroli", Err: err}
	}
	if s.streakTarget < 1 {
		return nil, &StrategyError{Strategy: "paroli", Err: fmt.Errorf("streak_target must be at least 1, got %d", s.streakTarget)}
	}
	if !s.base.IsPositive() {
		return nil, &StrategyError{Strategy: "paroli", Err: fmt.Errorf("base_amount must be positive, got %s", s.base)}
	}
	return s, nil
}

func (s *ParoliStrategy) Name() string { return "paroli" }

func (s *ParoliStrategy) NextWager(ctx SessionContext) (Wager, error) {
	amount := s.base
	for i := 0; i < s.progress; i++ {
		amount = amount.Mul(s.multiplier)
	}
	return Wager{Amount: amount, WinChance: s.chance, Direction: s.direction}, nil
}

func (s *ParoliStrategy) OnRoundResult(ctx SessionContext, result RoundResult) {
	if !result.Won {
		s.progress = 0
		return
	}
	s.progress++
	if s.progress >= s.streakTarget {
		s.progress = 0
		s.runsWon++
	}
}

func (s *ParoliStrategy) OnSessionEnd(ctx SessionContext, reason StopReason) string {
	return fmt.Sprintf("completed winning runs: %d", s.runsWon)
}
