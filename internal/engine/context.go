package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionContext is the running state of one betting session. The engine is
// its only writer; strategies and the validator receive it by value and so
// can never mutate the engine's copy.
type SessionContext struct {
	SessionID         string
	Currency          string
	StartingBalance   decimal.Decimal
	CurrentBalance    decimal.Decimal
	BetsPlaced        int
	Wins              int
	Losses            int
	CurrentLossStreak int
	CurrentWinStreak  int
	LongestLossStreak int
	TotalWagered      decimal.Decimal
	// LastWagerAmount is the last submitted (post-validation) amount.
	// Progression strategies must base their next step on this, not on
	// their own last proposal, since validation may have altered it.
	LastWagerAmount decimal.Decimal
	SessionStart    time.Time
}

// Profit returns the signed session profit so far.
func (c SessionContext) Profit() decimal.Decimal {
	return c.CurrentBalance.Sub(c.StartingBalance)
}

// ProfitRatio returns profit relative to the starting balance.
func (c SessionContext) ProfitRatio() decimal.Decimal {
	if c.StartingBalance.IsZero() {
		return decimal.Zero
	}
	return c.Profit().Div(c.StartingBalance)
}

// applyResult folds a settled round into the context. The balance is taken
// verbatim from the server, never recomputed locally.
func (c *SessionContext) applyResult(w Wager, r RoundResult) {
	c.CurrentBalance = r.BalanceAfter
	c.BetsPlaced++
	c.LastWagerAmount = w.Amount
	c.TotalWagered = c.TotalWagered.Add(w.Amount)

	if r.Won {
		c.Wins++
		c.CurrentWinStreak++
		c.CurrentLossStreak = 0
	} else {
		c.Losses++
		c.CurrentLossStreak++
		c.CurrentWinStreak = 0
		if c.CurrentLossStreak > c.LongestLossStreak {
			c.LongestLossStreak = c.CurrentLossStreak
		}
	}
}
