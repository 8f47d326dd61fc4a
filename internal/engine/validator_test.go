package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testConstraints() PlatformConstraints {
	return PlatformConstraints{
		MinBet:     dec("0.0000005"),
		MinChance:  dec("1"),
		MaxChance:  dec("98"),
		PayoutBase: dec("99"),
	}
}

func ctxWithBalance(balance string) SessionContext {
	return SessionContext{
		StartingBalance: dec(balance),
		CurrentBalance:  dec(balance),
	}
}

func TestValidate_PassThrough(t *testing.T) {
	w := Wager{Amount: dec("1"), WinChance: dec("49.5"), Direction: DirectionHigh}

	validated, notes, rejection := Validate(w, ctxWithBalance("100"), testConstraints())

	require.Nil(t, rejection)
	assert.Empty(t, notes)
	assert.True(t, validated.Amount.Equal(dec("1")))
	assert.True(t, validated.WinChance.Equal(dec("49.5")))
	assert.Equal(t, DirectionHigh, validated.Direction)
}

func TestValidate_Deterministic(t *testing.T) {
	w := Wager{Amount: dec("0.0000002"), WinChance: dec("99.5"), Direction: DirectionLow}
	ctx := ctxWithBalance("100")
	pc := testConstraints()

	first, firstNotes, firstRej := Validate(w, ctx, pc)
	second, secondNotes, secondRej := Validate(w, ctx, pc)

	assert.Equal(t, first, second)
	assert.Equal(t, firstNotes, secondNotes)
	assert.Equal(t, firstRej, secondRej)
}

func TestValidate_ChanceClamp(t *testing.T) {
	t.Run("AboveMax", func(t *testing.T) {
		w := Wager{Amount: dec("1"), WinChance: dec("99.9"), Direction: DirectionHigh}

		validated, notes, rejection := Validate(w, ctxWithBalance("100"), testConstraints())

		require.Nil(t, rejection)
		assert.True(t, validated.WinChance.Equal(dec("98")))
		assert.NotEmpty(t, notes)
	})

	t.Run("BelowMin", func(t *testing.T) {
		w := Wager{Amount: dec("1"), WinChance: dec("0.5"), Direction: DirectionHigh}

		validated, notes, rejection := Validate(w, ctxWithBalance("100"), testConstraints())

		require.Nil(t, rejection)
		assert.True(t, validated.WinChance.Equal(dec("1")))
		assert.NotEmpty(t, notes)
	})
}

func TestValidate_MinimumBetFloor(t *testing.T) {
	w := Wager{Amount: dec("0.0000001"), WinChance: dec("49.5"), Direction: DirectionHigh}

	validated, _, rejection := Validate(w, ctxWithBalance("100"), testConstraints())

	require.Nil(t, rejection)
	assert.True(t, validated.Amount.Equal(dec("0.0000005")))
}

func TestValidate_BalanceCap(t *testing.T) {
	w := Wager{Amount: dec("5"), WinChance: dec("49.5"), Direction: DirectionHigh}

	validated, _, rejection := Validate(w, ctxWithBalance("2"), testConstraints())

	require.Nil(t, rejection)
	assert.True(t, validated.Amount.Equal(dec("2")), "bet everything available")
}

func TestValidate_InsufficientBalance(t *testing.T) {
	w := Wager{Amount: dec("1"), WinChance: dec("49.5"), Direction: DirectionHigh}
	ctx := ctxWithBalance("0.0000001") // below min bet

	_, _, rejection := Validate(w, ctx, testConstraints())

	require.NotNil(t, rejection)
	assert.Equal(t, StopInsufficientBalance, rejection.Reason)
}

func TestValidate_MinProfitRaisesAmount(t *testing.T) {
	// 0.0000002 at 95% pays 99/95, leaving potential profit below the
	// minimum bet; the amount is raised since the balance allows it.
	w := Wager{Amount: dec("0.0000002"), WinChance: dec("95"), Direction: DirectionHigh}
	pc := testConstraints()

	validated, _, rejection := Validate(w, ctxWithBalance("100"), pc)

	require.Nil(t, rejection)
	expected := pc.MinBet.Div(pc.PayoutMultiplier(dec("95")).Sub(one))
	assert.True(t, validated.Amount.Equal(expected),
		"want %s, got %s", expected, validated.Amount)
	assert.True(t, validated.WinChance.Equal(dec("95")), "chance untouched when raising fits")
	// The division is carried out at finite precision, so the recomputed
	// profit may sit a hair below the floor.
	shortfall := pc.MinBet.Sub(pc.ProfitIfWon(validated))
	assert.True(t, shortfall.LessThanOrEqual(dec("0.000000000000001")),
		"profit short of the floor by %s", shortfall)
}

func TestValidate_MinProfitLowersChance(t *testing.T) {
	// The whole balance is on the table and cannot be raised, so the win
	// chance is lowered just far enough instead.
	pc := PlatformConstraints{
		MinBet:     dec("0.001"),
		MinChance:  dec("1"),
		MaxChance:  dec("98"),
		PayoutBase: dec("99"),
	}
	w := Wager{Amount: dec("0.01"), WinChance: dec("98"), Direction: DirectionHigh}

	validated, _, rejection := Validate(w, ctxWithBalance("0.01"), pc)

	require.Nil(t, rejection)
	assert.True(t, validated.Amount.Equal(dec("0.01")))
	// 99 * 0.01 / (0.01 + 0.001) = 90 exactly
	assert.True(t, validated.WinChance.Equal(dec("90")),
		"want 90, got %s", validated.WinChance)
	assert.True(t, pc.ProfitIfWon(validated).GreaterThanOrEqual(pc.MinBet))
}

func TestValidate_MinProfitUnsatisfiable(t *testing.T) {
	// Tiny balance, high min bet: neither raising the amount nor lowering
	// the chance to its floor can clear the profit requirement.
	pc := PlatformConstraints{
		MinBet:     dec("1"),
		MinChance:  dec("50"),
		MaxChance:  dec("98"),
		PayoutBase: dec("99"),
	}
	w := Wager{Amount: dec("1"), WinChance: dec("98"), Direction: DirectionHigh}

	_, _, rejection := Validate(w, ctxWithBalance("1"), pc)

	require.NotNil(t, rejection)
	assert.Equal(t, StopCannotSatisfyMinProfit, rejection.Reason)
}

func TestValidate_ChanceAtOrAbovePayoutBase(t *testing.T) {
	// At or above the payout base a win returns the stake or less, so no
	// amount can satisfy the minimum-profit rule; the validator must lower
	// the chance instead of working off a zero or negative payout margin.
	pc := PlatformConstraints{
		MinBet:     dec("0.0000005"),
		MinChance:  dec("1"),
		MaxChance:  dec("99.5"),
		PayoutBase: dec("99"),
	}

	t.Run("AtBase", func(t *testing.T) {
		w := Wager{Amount: dec("1"), WinChance: dec("99"), Direction: DirectionHigh}

		validated, _, rejection := Validate(w, ctxWithBalance("100"), pc)

		require.Nil(t, rejection)
		assert.True(t, validated.Amount.Equal(dec("1")))
		assert.True(t, validated.WinChance.LessThan(pc.PayoutBase))
		assert.True(t, pc.ProfitIfWon(validated).GreaterThanOrEqual(pc.MinBet))
	})

	t.Run("AboveBase", func(t *testing.T) {
		w := Wager{Amount: dec("0.0000995"), WinChance: dec("99.5"), Direction: DirectionLow}

		validated, _, rejection := Validate(w, ctxWithBalance("100"), pc)

		require.Nil(t, rejection)
		assert.True(t, validated.Amount.IsPositive())
		// 99 * 0.0000995 / 0.0001 = 98.505, rounded down to 98.50
		assert.True(t, validated.WinChance.Equal(dec("98.50")),
			"want 98.50, got %s", validated.WinChance)
		assert.True(t, pc.ProfitIfWon(validated).GreaterThanOrEqual(pc.MinBet))
	})
}

func TestValidate_NeverMutatesInput(t *testing.T) {
	w := Wager{Amount: dec("0.0000001"), WinChance: dec("99.9"), Direction: DirectionHigh}

	_, _, _ = Validate(w, ctxWithBalance("100"), testConstraints())

	assert.True(t, w.Amount.Equal(dec("0.0000001")))
	assert.True(t, w.WinChance.Equal(dec("99.9")))
}
