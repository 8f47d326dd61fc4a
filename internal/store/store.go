package store

import (
	"duckdice-bet-bot/internal/engine"
	"duckdice-bet-bot/internal/models"
	"time"

	"gorm.io/gorm"
)

// Store persists bet history to the database. It implements engine.BetSink.
type Store struct {
	db *gorm.DB
}

var _ engine.BetSink = (*Store)(nil)

// NewStore creates a new bet-history store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AppendBetRecord writes one settled round.
func (s *Store) AppendBetRecord(sessionID string, roundIndex int, wager engine.Wager, result engine.RoundResult, ctx engine.SessionContext) error {
	record := models.BetRecord{
		SessionID:    sessionID,
		RoundIndex:   roundIndex,
		Currency:     ctx.Currency,
		Amount:       wager.Amount.String(),
		WinChance:    wager.WinChance.String(),
		Direction:    string(wager.Direction),
		Won:          result.Won,
		Roll:         result.Roll.String(),
		Payout:       result.PayoutMultiplier.String(),
		Profit:       result.Profit.String(),
		BalanceAfter: result.BalanceAfter.String(),
		LossStreak:   ctx.CurrentLossStreak,
		WinStreak:    ctx.CurrentWinStreak,
	}
	return s.db.Create(&record).Error
}

// FinalizeSession writes the terminal session record.
func (s *Store) FinalizeSession(sessionID string, summary engine.Summary) error {
	ctx := summary.Context
	record := models.SessionRecord{
		SessionID:       sessionID,
		Strategy:        summary.Strategy,
		Currency:        ctx.Currency,
		StartingBalance: ctx.StartingBalance.String(),
		FinalBalance:    ctx.CurrentBalance.String(),
		BetsPlaced:      ctx.BetsPlaced,
		Wins:            ctx.Wins,
		Losses:          ctx.Losses,
		TotalWagered:    ctx.TotalWagered.String(),
		NetProfit:       ctx.Profit().String(),
		StopReason:      string(summary.Reason),
		StartedAt:       ctx.SessionStart.Unix(),
		EndedAt:         time.Now().Unix(),
	}
	return s.db.Create(&record).Error
}
