package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.New(100, 0)

// KellyStrategy bets a Kelly-criterion fraction of the current balance,
// capped by max_fraction. The raw house odds make the Kelly fraction
// negative, so the player supplies assumed_edge — their believed advantage
// over the quoted win chance. When the adjusted fraction is not positive the
// strategy exits cleanly rather than betting against its own numbers.
type KellyStrategy struct {
	chance      decimal.Decimal
	direction   Direction
	assumedEdge decimal.Decimal
	maxFraction decimal.Decimal
	pc          PlatformConstraints

	lastFraction decimal.Decimal
}

// NewKellyStrategy builds a Kelly strategy from parameters:
// chance, direction, assumed_edge (default 0.02), max_fraction (default 0.01).
func NewKellyStrategy(params Params, pc PlatformConstraints) (Strategy, error) {
	s := &KellyStrategy{pc: pc}
	var err error
	if s.chance, err = params.Decimal("chance", defaultChance); err != nil {
		return nil, &StrategyError{Strategy: "kelly", Err: err}
	}
	if s.direction, err = params.Direction("direction", DirectionHigh); err != nil {
		return nil, &StrategyError{Strategy: "kelly", Err: err}
	}
	if s.assumedEdge, err = params.Decimal("assumed_edge", decimal.RequireFromString("0.02")); err != nil {
		return nil, &StrategyError{Strategy: "kelly", Err: err}
	}
	if s.maxFraction, err = params.Decimal("max_fraction", decimal.RequireFromString("0.01")); err != nil {
		return nil, &StrategyError{Strategy: "kelly", Err: err}
	}
	if !s.maxFraction.IsPositive() || s.maxFraction.GreaterThan(one) {
		return nil, &StrategyError{Strategy: "kelly", Err: fmt.Errorf("max_fraction must be in (0, 1], got %s", s.maxFraction)}
	}
	return s, nil
}

func (s *KellyStrategy) Name() string { return "kelly" }

// fraction computes f = (p(b+1) - 1) / b with p shifted by the assumed edge,
// where b is the net payout per unit staked.
func (s *KellyStrategy) fraction() decimal.Decimal {
	p := s.chance.Div(hundred).Add(s.assumedEdge)
	b := s.pc.PayoutMultiplier(s.chance).Sub(one)
	return p.Mul(b.Add(one)).Sub(one).Div(b)
}

func (s *KellyStrategy) NextWager(ctx SessionContext) (Wager, error) {
	f := s.fraction()
	if !f.IsPositive() {
		return Wager{}, ErrSessionDone
	}
	if f.GreaterThan(s.maxFraction) {
		f = s.maxFraction
	}
	amount := ctx.CurrentBalance.Mul(f)
	return Wager{Amount: amount, WinChance: s.chance, Direction: s.direction}, nil
}

func (s *KellyStrategy) OnRoundResult(ctx SessionContext, result RoundResult) {
	s.lastFraction = s.fraction()
}

func (s *KellyStrategy) OnSessionEnd(ctx SessionContext, reason StopReason) string {
	return fmt.Sprintf("kelly fraction %s (cap %s)", s.lastFraction.StringFixed(4), s.maxFraction)
}
