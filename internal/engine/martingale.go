package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MartingaleStrategy bets a base amount and multiplies the previous wager
// after every loss, resetting to base after a win.
type MartingaleStrategy struct {
	base         decimal.Decimal
	multiplier   decimal.Decimal
	chance       decimal.Decimal
	direction    Direction
	targetProfit *decimal.Decimal
}

// NewMartingaleStrategy builds a martingale strategy from parameters:
// base_amount, multiplier (default 2), chance, direction, target_profit.
func NewMartingaleStrategy(params Params, pc PlatformConstraints) (Strategy, error) {
	s := &MartingaleStrategy{}
	var err error
	if s.base, err = params.Decimal("base_amount", pc.MinBet); err != nil {
		return nil, &StrategyError{Strategy: "martingale", Err: err}
	}
	if s.multiplier, err = params.Decimal("multiplier", decimal.New(2, 0)); err != nil {
		return nil, &StrategyError{Strategy: "martingale", Err: err}
	}
	if s.chance, err = params.Decimal("chance", defaultChance); err != nil {
		return nil, &StrategyError{Strategy: "martingale", Err: err}
	}
	if s.direction, err = params.Direction("direction", DirectionHigh); err != nil {
		return nil, &StrategyError{Strategy: "martingale", Err: err}
	}
	if target, err := params.Decimal("target_profit", decimal.Zero); err != nil {
		return nil, &StrategyError{Strategy: "martingale", Err: err}
	} else if target.IsPositive() {
		s.targetProfit = &target
	}

	if !s.base.IsPositive() {
		return nil, &StrategyError{Strategy: "martingale", Err: fmt.Errorf("base_amount must be positive, got %s", s.base)}
	}
	if s.multiplier.LessThanOrEqual(one) {
		return nil, &StrategyError{Strategy: "martingale", Err: fmt.Errorf("multiplier must be greater than 1, got %s", s.multiplier)}
	}
	return s, nil
}

func (s *MartingaleStrategy) Name() string { return "martingale" }

func (s *MartingaleStrategy) NextWager(ctx SessionContext) (Wager, error) {
	if s.targetProfit != nil && ctx.Profit().GreaterThanOrEqual(*s.targetProfit) {
		return Wager{}, ErrSessionDone
	}

	amount := s.base
	if ctx.CurrentLossStreak > 0 {
		// Progress from the last submitted amount, not our own last proposal:
		// validation may have adjusted what actually went out.
		amount = ctx.LastWagerAmount.Mul(s.multiplier)
	}
	return Wager{Amount: amount, WinChance: s.chance, Direction: s.direction}, nil
}

func (s *MartingaleStrategy) OnRoundResult(ctx SessionContext, result RoundResult) {
	// The full progression state lives in the session context.
}

func (s *MartingaleStrategy) OnSessionEnd(ctx SessionContext, reason StopReason) string {
	return fmt.Sprintf("longest loss streak %d", ctx.LongestLossStreak)
}
