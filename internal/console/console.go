package console

import (
	"duckdice-bet-bot/internal/engine"
	"go.uber.org/zap"
)

// Emitter renders session events as structured log lines. It implements
// engine.EventEmitter and carries no state of its own.
type Emitter struct {
	logger *zap.Logger
}

var _ engine.EventEmitter = (*Emitter)(nil)

// NewEmitter creates a new console emitter.
func NewEmitter(logger *zap.Logger) *Emitter {
	return &Emitter{logger: logger}
}

func (e *Emitter) SessionStarted(ctx engine.SessionContext, strategy string) {
	e.logger.Info("session started",
		zap.String("session_id", ctx.SessionID),
		zap.String("strategy", strategy),
		zap.String("currency", ctx.Currency),
		zap.String("balance", ctx.StartingBalance.String()),
	)
}

func (e *Emitter) RoundCompleted(ctx engine.SessionContext, wager engine.Wager, result engine.RoundResult) {
	outcome := "LOSS"
	if result.Won {
		outcome = "WIN"
	}
	e.logger.Info("round completed",
		zap.Int("round", ctx.BetsPlaced),
		zap.String("outcome", outcome),
		zap.String("amount", wager.Amount.String()),
		zap.String("chance", wager.WinChance.String()),
		zap.String("direction", string(wager.Direction)),
		zap.String("roll", result.Roll.String()),
		zap.String("profit", result.Profit.String()),
		zap.String("balance", result.BalanceAfter.String()),
		zap.Int("loss_streak", ctx.CurrentLossStreak),
	)
}

func (e *Emitter) LimitHit(ctx engine.SessionContext, reason engine.StopReason) {
	e.logger.Warn("stop limit hit",
		zap.String("session_id", ctx.SessionID),
		zap.String("reason", string(reason)),
		zap.Int("bets_placed", ctx.BetsPlaced),
		zap.String("profit", ctx.Profit().String()),
	)
}

func (e *Emitter) SessionEnded(summary engine.Summary) {
	ctx := summary.Context
	fields := []zap.Field{
		zap.String("session_id", summary.SessionID),
		zap.String("reason", string(summary.Reason)),
		zap.Int("bets_placed", ctx.BetsPlaced),
		zap.Int("wins", ctx.Wins),
		zap.Int("losses", ctx.Losses),
		zap.String("total_wagered", ctx.TotalWagered.String()),
		zap.String("net_profit", ctx.Profit().String()),
		zap.String("final_balance", ctx.CurrentBalance.String()),
	}
	if summary.StrategyNote != "" {
		fields = append(fields, zap.String("strategy_note", summary.StrategyNote))
	}
	if summary.Err != nil {
		fields = append(fields, zap.Error(summary.Err))
	}
	e.logger.Info("session ended", fields...)
}
