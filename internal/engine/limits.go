package engine

import (
	"fmt"
	"time"

	"duckdice-bet-bot/internal/config"
	"github.com/shopspring/decimal"
)

// StopReason is the enumerable cause of a session's terminal state.
type StopReason string

const (
	StopStrategyExit           StopReason = "strategy_exit"
	StopStrategyError          StopReason = "strategy_error"
	StopInsufficientBalance    StopReason = "insufficient_balance"
	StopCannotSatisfyMinProfit StopReason = "cannot_satisfy_min_profit"
	StopMaxDuration            StopReason = "max_duration"
	StopMaxBets                StopReason = "max_bets"
	StopMaxConsecutiveLosses   StopReason = "max_consecutive_losses"
	StopLoss                   StopReason = "stop_loss"
	StopTakeProfit             StopReason = "take_profit"
	StopAPIUnreachable         StopReason = "api_unreachable"
	StopAPIError               StopReason = "api_error"
	StopUserCancelled          StopReason = "user_cancelled"
)

// StopLimits are the externally configured session bounds.
// A nil field means unbounded on that axis.
type StopLimits struct {
	StopLossRatio        *decimal.Decimal
	TakeProfitRatio      *decimal.Decimal
	MaxBets              *int
	MaxConsecutiveLosses *int
	MaxDuration          *time.Duration
}

// CheckLimits evaluates the configured limits against the session state.
// The evaluation order is fixed and the first breached limit wins:
// duration, bet count, consecutive losses, stop-loss, take-profit.
func CheckLimits(ctx SessionContext, limits StopLimits, now time.Time) (StopReason, bool) {
	if limits.MaxDuration != nil && now.Sub(ctx.SessionStart) >= *limits.MaxDuration {
		return StopMaxDuration, true
	}
	if limits.MaxBets != nil && ctx.BetsPlaced >= *limits.MaxBets {
		return StopMaxBets, true
	}
	if limits.MaxConsecutiveLosses != nil && ctx.CurrentLossStreak >= *limits.MaxConsecutiveLosses {
		return StopMaxConsecutiveLosses, true
	}
	if limits.StopLossRatio != nil && ctx.ProfitRatio().LessThanOrEqual(*limits.StopLossRatio) {
		return StopLoss, true
	}
	if limits.TakeProfitRatio != nil && ctx.ProfitRatio().GreaterThanOrEqual(*limits.TakeProfitRatio) {
		return StopTakeProfit, true
	}
	return "", false
}

// LimitsFromConfig parses the limits section of the config. Empty ratio
// strings and zero counts leave the corresponding axis unbounded (the config
// format cannot distinguish absent from zero; an explicit zero bet budget is
// still expressible through StopLimits directly).
func LimitsFromConfig(cfg config.Limits) (StopLimits, error) {
	var limits StopLimits

	if cfg.StopLossRatio != "" {
		ratio, err := decimal.NewFromString(cfg.StopLossRatio)
		if err != nil {
			return StopLimits{}, fmt.Errorf("invalid stop_loss_ratio %q: %w", cfg.StopLossRatio, err)
		}
		if !ratio.IsNegative() {
			return StopLimits{}, fmt.Errorf("stop_loss_ratio must be negative, got %s", cfg.StopLossRatio)
		}
		limits.StopLossRatio = &ratio
	}
	if cfg.TakeProfitRatio != "" {
		ratio, err := decimal.NewFromString(cfg.TakeProfitRatio)
		if err != nil {
			return StopLimits{}, fmt.Errorf("invalid take_profit_ratio %q: %w", cfg.TakeProfitRatio, err)
		}
		if !ratio.IsPositive() {
			return StopLimits{}, fmt.Errorf("take_profit_ratio must be positive, got %s", cfg.TakeProfitRatio)
		}
		limits.TakeProfitRatio = &ratio
	}
	if cfg.MaxBets > 0 {
		maxBets := cfg.MaxBets
		limits.MaxBets = &maxBets
	}
	if cfg.MaxConsecutiveLosses > 0 {
		maxLosses := cfg.MaxConsecutiveLosses
		limits.MaxConsecutiveLosses = &maxLosses
	}
	if cfg.MaxDurationSeconds > 0 {
		duration := time.Duration(cfg.MaxDurationSeconds) * time.Second
		limits.MaxDuration = &duration
	}

	return limits, nil
}
