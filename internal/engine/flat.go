package engine

import (
	"github.com/shopspring/decimal"
)

var defaultChance = decimal.RequireFromString("49.5")

// FlatStrategy bets the same amount at the same chance every round.
type FlatStrategy struct {
	amount       decimal.Decimal
	chance       decimal.Decimal
	direction    Direction
	targetProfit *decimal.Decimal
}

// NewFlatStrategy builds a flat strategy from parameters:
// amount, chance, direction, target_profit (optional clean-exit goal).
func NewFlatStrategy(params Params, pc PlatformConstraints) (Strategy, error) {
	s := &FlatStrategy{}
	var err error
	if s.amount, err = params.Decimal("amount", pc.MinBet); err != nil {
		return nil, &StrategyError{Strategy: "flat", Err: err}
	}
	if s.chance, err = params.Decimal("chance", defaultChance); err != nil {
		return nil, &StrategyError{Strategy: "flat", Err: err}
	}
	if s.direction, err = params.Direction("direction", DirectionHigh); err != nil {
		return nil, &StrategyError{Strategy: "flat", Err: err}
	}
	if target, err := params.Decimal("target_profit", decimal.Zero); err != nil {
		return nil, &StrategyError{Strategy: "flat", Err: err}
	} else if target.IsPositive() {
		s.targetProfit = &target
	}
	return s, nil
}

func (s *FlatStrategy) Name() string { return "flat" }

func (s *FlatStrategy) NextWager(ctx SessionContext) (Wager, error) {
	if s.targetProfit != nil && ctx.Profit().GreaterThanOrEqual(*s.targetProfit) {
		return Wager{}, ErrSessionDone
	}
	return Wager{Amount: s.amount, WinChance: s.chance, Direction: s.direction}, nil
}

func (s *FlatStrategy) OnRoundResult(ctx SessionContext, result RoundResult) {}

func (s *FlatStrategy) OnSessionEnd(ctx SessionContext, reason StopReason) string {
	return ""
}
