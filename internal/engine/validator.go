package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rejection is the validator's definitive "cannot bet" outcome. It ends the
// session normally with the given reason; it is not an error condition.
type Rejection struct {
	Reason StopReason
	Detail string
}

var one = decimal.New(1, 0)

// Validate checks a proposed wager against the platform constraints and the
// current balance, returning an adjusted copy or a Rejection. It is pure and
// deterministic; notes describe adjustments for the caller to log.
//
// The check order is fixed: chance clamp, minimum-bet floor, balance cap,
// then the minimum-profit rule last, since it works off the already capped
// amount.
func Validate(proposed Wager, ctx SessionContext, pc PlatformConstraints) (Wager, []string, *Rejection) {
	w := proposed
	var notes []string

	// 1. Chance clamp.
	if w.WinChance.GreaterThan(pc.MaxChance) {
		notes = append(notes, fmt.Sprintf("win chance %s clamped to max %s", w.WinChance, pc.MaxChance))
		w.WinChance = pc.MaxChance
	} else if w.WinChance.LessThan(pc.MinChance) {
		notes = append(notes, fmt.Sprintf("win chance %s clamped to min %s", w.WinChance, pc.MinChance))
		w.WinChance = pc.MinChance
	}

	// 2. Minimum-bet floor.
	if w.Amount.LessThan(pc.MinBet) {
		notes = append(notes, fmt.Sprintf("amount %s raised to minimum bet %s", w.Amount, pc.MinBet))
		w.Amount = pc.MinBet
	}

	// 3. Balance cap.
	if w.Amount.GreaterThan(ctx.CurrentBalance) {
		if ctx.CurrentBalance.LessThan(pc.MinBet) {
			return Wager{}, notes, &Rejection{
				Reason: StopInsufficientBalance,
				Detail: fmt.Sprintf("balance %s is below minimum bet %s", ctx.CurrentBalance, pc.MinBet),
			}
		}
		notes = append(notes, fmt.Sprintf("amount %s capped to balance %s", w.Amount, ctx.CurrentBalance))
		w.Amount = ctx.CurrentBalance
	}

	// 4. Minimum-profit rule: potential winnings must clear the minimum bet.
	multiplierLessOne := pc.PayoutMultiplier(w.WinChance).Sub(one)
	if w.Amount.Mul(multiplierLessOne).LessThan(pc.MinBet) {
		// 4a. Raise the amount if the balance allows it. A chance at or
		// above the payout base pays nothing per unit staked, so no amount
		// can help there and raising is skipped entirely.
		if multiplierLessOne.IsPositive() {
			needed := pc.MinBet.Div(multiplierLessOne)
			if needed.LessThanOrEqual(ctx.CurrentBalance) {
				notes = append(notes, fmt.Sprintf("amount %s raised to %s to satisfy minimum profit", w.Amount, needed))
				w.Amount = needed
				return w, notes, nil
			}
		}

		// 4b. Otherwise lower the win chance (raising the payout) just far
		// enough at the current amount: chance <= base*amount/(amount+minBet).
		newChance := pc.PayoutBase.Mul(w.Amount).Div(w.Amount.Add(pc.MinBet)).RoundDown(2)
		if newChance.GreaterThanOrEqual(pc.MinChance) {
			notes = append(notes, fmt.Sprintf("win chance %s lowered to %s to satisfy minimum profit", w.WinChance, newChance))
			w.WinChance = newChance
			return w, notes, nil
		}

		// 4c. No valid wager exists.
		return Wager{}, notes, &Rejection{
			Reason: StopCannotSatisfyMinProfit,
			Detail: fmt.Sprintf("cannot reach minimum profit %s with balance %s", pc.MinBet, ctx.CurrentBalance),
		}
	}

	return w, notes, nil
}
