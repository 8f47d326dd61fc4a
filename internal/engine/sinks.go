package engine

// BetSink receives bet-history writes. Calls are fire-and-forget from the
// loop's point of view: the engine logs returned errors and keeps betting.
type BetSink interface {
	AppendBetRecord(sessionID string, roundIndex int, wager Wager, result RoundResult, ctx SessionContext) error
	FinalizeSession(sessionID string, summary Summary) error
}

// EventEmitter receives one structured event per session milestone. Like the
// sink it must never be able to abort the loop.
type EventEmitter interface {
	SessionStarted(ctx SessionContext, strategy string)
	RoundCompleted(ctx SessionContext, wager Wager, result RoundResult)
	LimitHit(ctx SessionContext, reason StopReason)
	SessionEnded(summary Summary)
}

// Summary is the terminal report of a session run.
type Summary struct {
	SessionID    string
	Strategy     string
	Reason       StopReason
	Context      SessionContext
	StrategyNote string
	// Err carries the underlying failure for strategy_error, api_error and
	// api_unreachable terminations; nil otherwise.
	Err error
}
