package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DalembertStrategy raises the bet by one unit after a loss and lowers it by
// one unit after a win, never going below the base amount.
type DalembertStrategy struct {
	base      decimal.Decimal
	unit      decimal.Decimal
	chance    decimal.Decimal
	direction Direction

	level int
}

// NewDalembertStrategy builds a d'Alembert strategy from parameters:
// base_amount, unit (defaults to base_amount), chance, direction.
func NewDalembertStrategy(params Params, pc PlatformConstraints) (Strategy, error) {
	s := &DalembertStrategy{}
	var err error
	if s.base, err = params.Decimal("base_amount", pc.MinBet); err != nil {
		return nil, &StrategyError{Strategy: "dalembert", Err: err}
	}
	if s.unit, err = params.Decimal("unit", s.base); err != nil {
		return nil, &StrategyError{Strategy: "dalembert", Err: err}
	}
	if s.chance, err = params.Decimal("chance", defaultChance); err != nil {
		return nil, &StrategyError{Strategy: "dalembert", Err: err}
	}
	if s.direction, err = params.Direction("direction", DirectionHigh); err != nil {
		return nil, &StrategyError{Strategy: "dalembert", Err: err}
	}
	if !s.base.IsPositive() || !s.unit.IsPositive() {
		return nil, &StrategyError{Strategy: "dalembert", Err: fmt.Errorf("base_amount and unit must be positive")}
	}
	return s, nil
}

func (s *DalembertStrategy) Name() string { return "dalembert" }

func (s *DalembertStrategy) NextWager(ctx SessionContext) (Wager, error) {
	amount := s.base.Add(s.unit.Mul(decimal.NewFromInt(int64(s.level))))
	return Wager{Amount: amount, WinChance: s.chance, Direction: s.direction}, nil
}

func (s *DalembertStrategy) OnRoundResult(ctx SessionContext, result RoundResult) {
	if result.Won {
		if s.level > 0 {
			s.level--
		}
		return
	}
	s.level++
}

func (s *DalembertStrategy) OnSessionEnd(ctx SessionContext, reason StopReason) string {
	return fmt.Sprintf("final progression level %d", s.level)
}
