package engine

import "github.com/shopspring/decimal"

// Direction selects which side of the roll threshold a wager bets on.
type Direction string

const (
	DirectionHigh Direction = "high"
	DirectionLow  Direction = "low"
)

// Wager is one proposed bet for one round. The validator produces a new
// adjusted Wager when needed; a submitted Wager is never mutated.
type Wager struct {
	Amount    decimal.Decimal
	WinChance decimal.Decimal
	Direction Direction
}

// RoundResult is the settled outcome of one round as reported by the server.
// BalanceAfter is the authoritative post-settlement balance.
type RoundResult struct {
	Won              bool
	Roll             decimal.Decimal
	PayoutMultiplier decimal.Decimal
	Profit           decimal.Decimal
	BalanceAfter     decimal.Decimal
}
