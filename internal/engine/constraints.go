package engine

import (
	"fmt"

	"duckdice-bet-bot/internal/config"
	"github.com/shopspring/decimal"
)

// PlatformConstraints are the site's betting rules, fixed for a session.
// PayoutBase carries the house-edge constant: the payout multiplier for a
// given win chance is PayoutBase / chance (99 on DuckDice). It is part of the
// constraints rather than a package constant so other payout tables work too.
type PlatformConstraints struct {
	MinBet     decimal.Decimal
	MinChance  decimal.Decimal
	MaxChance  decimal.Decimal
	PayoutBase decimal.Decimal
}

// PayoutMultiplier returns the payout multiplier for a win chance.
func (pc PlatformConstraints) PayoutMultiplier(chance decimal.Decimal) decimal.Decimal {
	return pc.PayoutBase.Div(chance)
}

// ProfitIfWon returns a wager's potential winnings under these constraints.
func (pc PlatformConstraints) ProfitIfWon(w Wager) decimal.Decimal {
	return w.Amount.Mul(pc.PayoutMultiplier(w.WinChance).Sub(one))
}

// ConstraintsFromConfig parses the platform section of the config.
func ConstraintsFromConfig(cfg config.Platform) (PlatformConstraints, error) {
	minBet, err := decimal.NewFromString(cfg.MinBet)
	if err != nil {
		return PlatformConstraints{}, fmt.Errorf("invalid min_bet %q: %w", cfg.MinBet, err)
	}
	minChance, err := decimal.NewFromString(cfg.MinChance)
	if err != nil {
		return PlatformConstraints{}, fmt.Errorf("invalid min_chance %q: %w", cfg.MinChance, err)
	}
	maxChance, err := decimal.NewFromString(cfg.MaxChance)
	if err != nil {
		return PlatformConstraints{}, fmt.Errorf("invalid max_chance %q: %w", cfg.MaxChance, err)
	}
	payoutBase, err := decimal.NewFromString(cfg.PayoutBase)
	if err != nil {
		return PlatformConstraints{}, fmt.Errorf("invalid payout_base %q: %w", cfg.PayoutBase, err)
	}
	if !payoutBase.IsPositive() {
		return PlatformConstraints{}, fmt.Errorf("payout_base must be positive, got %s", cfg.PayoutBase)
	}
	if !minChance.IsPositive() || maxChance.GreaterThanOrEqual(decimal.New(100, 0)) {
		return PlatformConstraints{}, fmt.Errorf("chance bounds [%s, %s] outside (0, 100)", cfg.MinChance, cfg.MaxChance)
	}
	// A chance at or above the payout base returns the stake or less on a
	// win, so no wager at that chance can clear the minimum-profit rule.
	if maxChance.GreaterThanOrEqual(payoutBase) {
		return PlatformConstraints{}, fmt.Errorf("max_chance %s must be below payout_base %s", cfg.MaxChance, cfg.PayoutBase)
	}

	return PlatformConstraints{
		MinBet:     minBet,
		MinChance:  minChance,
		MaxChance:  maxChance,
		PayoutBase: payoutBase,
	}, nil
}
